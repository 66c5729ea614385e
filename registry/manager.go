// Package registry groups Models into named namespaces.
//
// A Manager owns the Models of one namespace. A Registry is a directory of
// Managers with cross-namespace access, sharing and inspection. Both are safe
// for concurrent use. The Models they hand out keep a single writer, but the
// read paths used here (Metadata, Snapshot, ToJSON) may run alongside it, so
// Statistics, Inspect, Export and DumpState can be called from any goroutine.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"go.uber.org/multierr"

	jsonmodel "github.com/reoring/jsonmodel"
)

var (
	ErrNamespaceNotFound = errors.New("registry: namespace not found")
	ErrModelNotFound     = errors.New("registry: model not found")
)

// Security selects how strictly models of a namespace are created.
type Security string

const (
	SecurityBasic      Security = "basic"
	SecurityStandard   Security = "standard"
	SecurityEnterprise Security = "enterprise"
)

// AuditConfig toggles audit logging for a namespace.
type AuditConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Config configures a Manager. The zero Security behaves as SecurityBasic.
type Config struct {
	Namespace string      `yaml:"namespace" json:"namespace"`
	Security  Security    `yaml:"security" json:"security"`
	Audit     AuditConfig `yaml:"audit" json:"audit"`
	// Logger receives audit lines; slog.Default() when nil.
	Logger *slog.Logger `yaml:"-" json:"-"`
}

// ManagerStatistics summarizes one namespace.
type ManagerStatistics struct {
	Namespace  string   `yaml:"namespace" json:"namespace"`
	ModelCount int      `yaml:"modelCount" json:"modelCount"`
	ModelNames []string `yaml:"modelNames" json:"modelNames"`
	// TotalSize is the sum of the models' Metadata().Size.
	TotalSize int `yaml:"totalSize" json:"totalSize"`
}

// Manager owns the named Models of one namespace.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	models map[string]*jsonmodel.Model
	log    *slog.Logger
}

// NewManager returns an empty Manager for cfg.Namespace.
func NewManager(cfg Config) *Manager {
	if cfg.Security == "" {
		cfg.Security = SecurityBasic
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{cfg: cfg, models: map[string]*jsonmodel.Model{}, log: log}
	m.audit("registry: manager created", "security", string(cfg.Security))
	return m
}

// Create builds a Model from data and stores it under name, replacing any
// previous model of that name. Logging defaults to the audit setting and
// validation is on unless security is basic; opts run afterwards and may
// override both.
func (m *Manager) Create(name string, data map[string]any, opts ...func(*jsonmodel.Options)) *jsonmodel.Model {
	o := jsonmodel.Options{
		EnableLogging:    m.cfg.Audit.Enabled,
		EnableValidation: m.cfg.Security != SecurityBasic,
		Logger:           m.cfg.Logger,
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	model := jsonmodel.New(data, o)

	m.mu.Lock()
	_, replaced := m.models[name]
	m.models[name] = model
	m.mu.Unlock()

	if replaced {
		m.log.Warn("registry: model replaced", "namespace", m.cfg.Namespace, "model", name)
	}
	m.audit("registry: model created", "model", name)
	return model
}

// CreateShared is Create with logging and validation forced on, for models
// meant to be read from other namespaces.
func (m *Manager) CreateShared(name string, data map[string]any, opts ...func(*jsonmodel.Options)) *jsonmodel.Model {
	force := func(o *jsonmodel.Options) {
		o.EnableLogging = true
		o.EnableValidation = true
	}
	return m.Create(name, data, append(append([]func(*jsonmodel.Options){}, opts...), force)...)
}

// CreateGlobal is CreateShared under the name used for application-wide
// models.
func (m *Manager) CreateGlobal(name string, data map[string]any, opts ...func(*jsonmodel.Options)) *jsonmodel.Model {
	return m.CreateShared(name, data, opts...)
}

// Model returns the model stored under name.
func (m *Manager) Model(name string) (*jsonmodel.Model, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	model, ok := m.models[name]
	return model, ok
}

// Has reports whether name is stored.
func (m *Manager) Has(name string) bool {
	_, ok := m.Model(name)
	return ok
}

// Remove destroys and forgets the model stored under name.
func (m *Manager) Remove(name string) bool {
	m.mu.Lock()
	model, ok := m.models[name]
	delete(m.models, name)
	m.mu.Unlock()
	if !ok {
		return false
	}
	model.Destroy()
	m.audit("registry: model removed", "model", name)
	return true
}

// Clear destroys and forgets every model.
func (m *Manager) Clear() {
	m.mu.Lock()
	models := m.models
	m.models = map[string]*jsonmodel.Model{}
	m.mu.Unlock()
	for _, model := range models {
		model.Destroy()
	}
	m.audit("registry: models cleared", "count", len(models))
}

// Models returns a snapshot of the name to model map.
func (m *Manager) Models() map[string]*jsonmodel.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*jsonmodel.Model, len(m.models))
	for k, v := range m.models {
		out[k] = v
	}
	return out
}

// Names returns the stored model names, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.models))
	for k := range m.models {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Namespace returns the namespace the Manager was created for.
func (m *Manager) Namespace() string { return m.cfg.Namespace }

// Config returns a copy of the configuration.
func (m *Manager) Config() Config { return m.cfg }

// Export renders every model as JSON keyed by name.
func (m *Manager) Export() (map[string]string, error) {
	out := map[string]string{}
	var errs error
	for name, model := range m.Models() {
		b, err := model.ToJSON()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("export %s: %w", name, err))
			continue
		}
		out[name] = string(b)
	}
	return out, errs
}

// Import merges each JSON payload into the model of the same name. Names
// without a model are reported as ErrModelNotFound and skipped; failures do
// not stop the remaining imports.
func (m *Manager) Import(payloads map[string]string) error {
	names := make([]string, 0, len(payloads))
	for k := range payloads {
		names = append(names, k)
	}
	sort.Strings(names)

	var errs error
	for _, name := range names {
		model, ok := m.Model(name)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("import %s: %w", name, ErrModelNotFound))
			continue
		}
		if err := model.FromJSON([]byte(payloads[name])); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("import %s: %w", name, err))
		}
	}
	return errs
}

// Statistics summarizes the namespace.
func (m *Manager) Statistics() ManagerStatistics {
	models := m.Models()
	st := ManagerStatistics{Namespace: m.cfg.Namespace, ModelCount: len(models), ModelNames: m.Names()}
	for _, model := range models {
		st.TotalSize += model.Metadata().Size
	}
	return st
}

func (m *Manager) audit(msg string, args ...any) {
	if m.cfg.Audit.Enabled {
		m.log.Info(msg, append([]any{"namespace", m.cfg.Namespace}, args...)...)
	}
}
