package registry

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	jsonmodel "github.com/reoring/jsonmodel"
)

// maxAccessLog bounds the audit log; older entries are dropped first.
const maxAccessLog = 1000

// AccessEntry records one cross-namespace read.
type AccessEntry struct {
	Source     string    `yaml:"source" json:"source"`
	Target     string    `yaml:"target" json:"target"`
	Model      string    `yaml:"model" json:"model"`
	AccessType string    `yaml:"accessType" json:"accessType"`
	Timestamp  time.Time `yaml:"timestamp" json:"timestamp"`
}

// Statistics summarizes a Registry.
type Statistics struct {
	ManagerCount int       `yaml:"managerCount" json:"managerCount"`
	ModelCount   int       `yaml:"modelCount" json:"modelCount"`
	Namespaces   []string  `yaml:"namespaces" json:"namespaces"`
	LastActivity time.Time `yaml:"lastActivity" json:"lastActivity"`
}

// ModelInfo is the per-model part of an Inspection.
type ModelInfo struct {
	Metadata jsonmodel.Metadata `yaml:"metadata" json:"metadata"`
	Data     map[string]any     `yaml:"data" json:"data"`
}

// Inspection is a read-only view of one namespace.
type Inspection struct {
	Namespace  string               `yaml:"namespace" json:"namespace"`
	Config     Config               `yaml:"config" json:"config"`
	Statistics ManagerStatistics    `yaml:"statistics" json:"statistics"`
	Models     map[string]ModelInfo `yaml:"models" json:"models"`
}

// Registry is a process-wide directory of Managers keyed by namespace.
// Create one per application and pass it to whoever needs it.
type Registry struct {
	mu       sync.RWMutex
	managers map[string]*Manager
	auditing bool
	access   []AccessEntry
	log      *slog.Logger
}

// New returns an empty Registry with auditing disabled.
func New() *Registry {
	return &Registry{managers: map[string]*Manager{}, log: slog.Default()}
}

// SetLogger replaces the logger; nil restores slog.Default().
func (r *Registry) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	r.mu.Lock()
	r.log = l
	r.mu.Unlock()
}

// Register stores m under ns. An existing Manager is replaced with a warning.
func (r *Registry) Register(ns string, m *Manager) {
	r.mu.Lock()
	_, exists := r.managers[ns]
	r.managers[ns] = m
	log, auditing := r.log, r.auditing
	r.mu.Unlock()
	if exists {
		log.Warn("registry: manager replaced", "namespace", ns)
	}
	if auditing {
		log.Info("registry: manager registered", "namespace", ns)
	}
}

// CreateManager builds a Manager for ns from cfg and registers it.
func (r *Registry) CreateManager(ns string, cfg Config) *Manager {
	cfg.Namespace = ns
	m := NewManager(cfg)
	r.Register(ns, m)
	return m
}

// Get returns the Manager registered under ns.
func (r *Registry) Get(ns string) (*Manager, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.managers[ns]
	return m, ok
}

// Unregister clears the Manager of ns and removes it.
func (r *Registry) Unregister(ns string) bool {
	r.mu.Lock()
	m, ok := r.managers[ns]
	delete(r.managers, ns)
	r.mu.Unlock()
	if !ok {
		return false
	}
	m.Clear()
	r.auditf("registry: manager unregistered", "namespace", ns)
	return true
}

// HasModel reports whether ns holds a model called name.
func (r *Registry) HasModel(ns, name string) bool {
	m, ok := r.Get(ns)
	return ok && m.Has(name)
}

// RemoveModel destroys and removes name from ns.
func (r *Registry) RemoveModel(ns, name string) bool {
	m, ok := r.Get(ns)
	return ok && m.Remove(name)
}

// Namespaces returns the registered namespaces, sorted.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.managers))
	for k := range r.managers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clear clears and removes every Manager and empties the access log.
func (r *Registry) Clear() {
	r.mu.Lock()
	managers := r.managers
	r.managers = map[string]*Manager{}
	r.access = nil
	r.mu.Unlock()
	for _, m := range managers {
		m.Clear()
	}
	r.auditf("registry: cleared", "managers", len(managers))
}

// EnableAuditing turns recording of cross-namespace reads on or off.
func (r *Registry) EnableAuditing(enabled bool) {
	r.mu.Lock()
	r.auditing = enabled
	log := r.log
	r.mu.Unlock()
	log.Info("registry: auditing", "enabled", enabled)
}

// ModelFromNamespace returns model name of the target namespace on behalf of
// source. With auditing enabled every successful read is recorded.
func (r *Registry) ModelFromNamespace(source, target, name string) (*jsonmodel.Model, bool) {
	m, ok := r.Get(target)
	if !ok {
		r.logger().Warn("registry: target namespace not found", "namespace", target)
		return nil, false
	}
	model, ok := m.Model(name)
	if !ok {
		return nil, false
	}
	r.mu.Lock()
	if r.auditing {
		r.access = append(r.access, AccessEntry{
			Source: source, Target: target, Model: name,
			AccessType: "read", Timestamp: time.Now(),
		})
		if n := len(r.access); n > maxAccessLog {
			r.access = append([]AccessEntry(nil), r.access[n-maxAccessLog:]...)
		}
	}
	r.mu.Unlock()
	return model, true
}

// AccessLog returns a copy of the recorded cross-namespace reads, oldest first.
func (r *Registry) AccessLog() []AccessEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]AccessEntry(nil), r.access...)
}

// ShareModel copies model name of source into target as newName (name when
// empty). The copy is independent: later writes to either side are not seen
// by the other.
func (r *Registry) ShareModel(source, target, name, newName string) error {
	src, ok := r.Get(source)
	if !ok {
		return fmt.Errorf("share %s: %w: %s", name, ErrNamespaceNotFound, source)
	}
	dst, ok := r.Get(target)
	if !ok {
		return fmt.Errorf("share %s: %w: %s", name, ErrNamespaceNotFound, target)
	}
	model, ok := src.Model(name)
	if !ok {
		return fmt.Errorf("share %s: %w in %s", name, ErrModelNotFound, source)
	}
	doc, err := model.Snapshot()
	if err != nil {
		return fmt.Errorf("share %s: %w", name, err)
	}
	if newName == "" {
		newName = name
	}
	dst.Create(newName, doc)
	r.auditf("registry: model shared", "model", name, "from", source, "to", target, "as", newName)
	return nil
}

// Broadcast checks that target exists and logs the event when auditing.
// Delivery to models is left to the caller.
func (r *Registry) Broadcast(target, event string, data any) bool {
	if _, ok := r.Get(target); !ok {
		r.logger().Warn("registry: broadcast target not found", "namespace", target, "event", event)
		return false
	}
	r.auditf("registry: broadcast", "namespace", target, "event", event, "data", data)
	return true
}

// Inspect returns config, statistics, metadata and a detached copy of the
// data of every model in ns.
func (r *Registry) Inspect(ns string) (Inspection, error) {
	m, ok := r.Get(ns)
	if !ok {
		return Inspection{}, fmt.Errorf("inspect: %w: %s", ErrNamespaceNotFound, ns)
	}
	in := Inspection{
		Namespace:  ns,
		Config:     m.Config(),
		Statistics: m.Statistics(),
		Models:     map[string]ModelInfo{},
	}
	for name, model := range m.Models() {
		doc, err := model.Snapshot()
		if err != nil {
			return Inspection{}, fmt.Errorf("inspect %s/%s: %w", ns, name, err)
		}
		in.Models[name] = ModelInfo{Metadata: model.Metadata(), Data: doc}
	}
	return in, nil
}

// Statistics summarizes the Registry.
func (r *Registry) Statistics() Statistics {
	r.mu.RLock()
	managers := make([]*Manager, 0, len(r.managers))
	for _, m := range r.managers {
		managers = append(managers, m)
	}
	r.mu.RUnlock()
	st := Statistics{ManagerCount: len(managers), Namespaces: r.Namespaces(), LastActivity: time.Now()}
	for _, m := range managers {
		st.ModelCount += len(m.Names())
	}
	return st
}

// ManagerStatistics returns per-namespace statistics for the given
// namespaces, or for all of them when none are given. Unknown namespaces are
// omitted.
func (r *Registry) ManagerStatistics(namespaces ...string) map[string]ManagerStatistics {
	if len(namespaces) == 0 {
		namespaces = r.Namespaces()
	}
	out := map[string]ManagerStatistics{}
	for _, ns := range namespaces {
		if m, ok := r.Get(ns); ok {
			out[ns] = m.Statistics()
		}
	}
	return out
}

type dump struct {
	Statistics        Statistics                   `yaml:"statistics"`
	ManagerStatistics map[string]ManagerStatistics `yaml:"managerStatistics"`
	Namespaces        map[string]Inspection        `yaml:"namespaces"`
	RecentAccess      []AccessEntry                `yaml:"recentAccess,omitempty"`
}

// DumpState writes the statistics, every namespace inspection and the last
// ten access log entries to w as YAML.
func (r *Registry) DumpState(w io.Writer) error {
	d := dump{
		Statistics:        r.Statistics(),
		ManagerStatistics: r.ManagerStatistics(),
		Namespaces:        map[string]Inspection{},
	}
	for _, ns := range d.Statistics.Namespaces {
		in, err := r.Inspect(ns)
		if err != nil {
			continue
		}
		d.Namespaces[ns] = in
	}
	if log := r.AccessLog(); len(log) > 10 {
		d.RecentAccess = log[len(log)-10:]
	} else {
		d.RecentAccess = log
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("dump state: %w", err)
	}
	return enc.Close()
}

func (r *Registry) logger() *slog.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.log
}

func (r *Registry) auditf(msg string, args ...any) {
	r.mu.RLock()
	log, auditing := r.log, r.auditing
	r.mu.RUnlock()
	if auditing {
		log.Info(msg, args...)
	}
}
