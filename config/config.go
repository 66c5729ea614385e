// Package config loads namespaces, models and validators from YAML and
// applies them onto a registry.Registry.
//
//	auditing: true
//	namespaces:
//	  - name: app
//	    security: standard
//	    audit: true
//	    models:
//	      - name: user
//	        version: 1.2.0
//	        data: {name: John, age: 30}
//	        defaults: {name: ""}
//	        validators:
//	          - {path: /age, rule: range, args: {min: 0, max: 150}}
//	          - {path: /email, rule: email, message: bad email}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/blang/semver/v4"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	jsonmodel "github.com/reoring/jsonmodel"
	"github.com/reoring/jsonmodel/internal/engine"
	"github.com/reoring/jsonmodel/registry"
	"github.com/reoring/jsonmodel/rules"
)

// ErrInvalid marks configuration documents that fail structural checks.
var ErrInvalid = errors.New("config: invalid")

// Config is the root of a configuration document.
type Config struct {
	Auditing   bool        `yaml:"auditing"`
	Namespaces []Namespace `yaml:"namespaces"`
}

// Namespace configures one registry.Manager.
type Namespace struct {
	Name     string  `yaml:"name"`
	Security string  `yaml:"security"`
	Audit    bool    `yaml:"audit"`
	Models   []Model `yaml:"models"`
}

// Model configures one model. Nil Validation and Logging keep the
// namespace defaults.
type Model struct {
	Name       string         `yaml:"name"`
	Version    string         `yaml:"version"`
	Validation *bool          `yaml:"validation"`
	Logging    *bool          `yaml:"logging"`
	Immutable  bool           `yaml:"immutable"`
	Data       map[string]any `yaml:"data"`
	Defaults   map[string]any `yaml:"defaults"`
	Validators []Validator    `yaml:"validators"`
}

// Validator attaches a named rule from the rules package to a path.
type Validator struct {
	Path    string         `yaml:"path"`
	Rule    string         `yaml:"rule"`
	Args    map[string]any `yaml:"args"`
	Message string         `yaml:"message"`
}

// Load decodes and checks a configuration document. Unknown fields are
// rejected.
func Load(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c Config
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	for i := range c.Namespaces {
		for j := range c.Namespaces[i].Models {
			m := &c.Namespaces[i].Models[j]
			m.Data = normalize(m.Data)
			m.Defaults = normalize(m.Defaults)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile is Load for a file path.
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Load(bytes.NewReader(b))
}

// Validate reports every structural problem of the document at once.
func (c *Config) Validate() error {
	var errs error
	seenNS := map[string]bool{}
	for i, ns := range c.Namespaces {
		if ns.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: namespaces[%d]: name is required", ErrInvalid, i))
		} else if seenNS[ns.Name] {
			errs = multierr.Append(errs, fmt.Errorf("%w: namespace %q declared twice", ErrInvalid, ns.Name))
		}
		seenNS[ns.Name] = true
		switch registry.Security(ns.Security) {
		case "", registry.SecurityBasic, registry.SecurityStandard, registry.SecurityEnterprise:
		default:
			errs = multierr.Append(errs, fmt.Errorf("%w: namespace %q: unknown security %q", ErrInvalid, ns.Name, ns.Security))
		}
		seenModel := map[string]bool{}
		for j, m := range ns.Models {
			if m.Name == "" {
				errs = multierr.Append(errs, fmt.Errorf("%w: %s.models[%d]: name is required", ErrInvalid, ns.Name, j))
			} else if seenModel[m.Name] {
				errs = multierr.Append(errs, fmt.Errorf("%w: %s: model %q declared twice", ErrInvalid, ns.Name, m.Name))
			}
			seenModel[m.Name] = true
			if m.Version != "" {
				if _, err := semver.Parse(m.Version); err != nil {
					errs = multierr.Append(errs, fmt.Errorf("%w: %s/%s: version: %w", ErrInvalid, ns.Name, m.Name, err))
				}
			}
			for k, v := range m.Validators {
				if v.Path == "" {
					errs = multierr.Append(errs, fmt.Errorf("%w: %s/%s: validators[%d]: path is required", ErrInvalid, ns.Name, m.Name, k))
				}
				if _, err := rules.Build(v.Rule, v.Args); err != nil {
					errs = multierr.Append(errs, fmt.Errorf("%w: %s/%s: validators[%d]: %w", ErrInvalid, ns.Name, m.Name, k, err))
				}
			}
		}
	}
	return errs
}

// Apply creates a Manager per namespace and a model per entry on r,
// replacing same-named namespaces. Failures are combined; namespaces after a
// failing one are still applied.
func (c *Config) Apply(r *registry.Registry) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.EnableAuditing(c.Auditing)
	var errs error
	for _, ns := range c.Namespaces {
		mgr := r.CreateManager(ns.Name, registry.Config{
			Security: registry.Security(ns.Security),
			Audit:    registry.AuditConfig{Enabled: ns.Audit},
		})
		for _, m := range ns.Models {
			errs = multierr.Append(errs, applyModel(mgr, m))
		}
	}
	return errs
}

func applyModel(mgr *registry.Manager, m Model) error {
	opts := func(o *jsonmodel.Options) {
		if m.Validation != nil {
			o.EnableValidation = *m.Validation
		}
		if m.Logging != nil {
			o.EnableLogging = *m.Logging
		}
		o.Immutable = m.Immutable
		o.Defaults = m.Defaults
		if m.Version != "" {
			o.Version = semver.MustParse(m.Version)
		}
	}
	data := engine.DeepCopy(m.Data)
	doc, _ := data.(map[string]any)
	model := mgr.Create(m.Name, doc, opts)

	var errs error
	for _, v := range m.Validators {
		rule, err := rules.Build(v.Rule, v.Args)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s/%s: %w", mgr.Namespace(), m.Name, err))
			continue
		}
		if v.Message != "" {
			rule.Message = v.Message
			inner := rule.Check
			rule.Check = func(x any) (bool, string) {
				ok, _ := inner(x)
				return ok, ""
			}
		}
		errs = multierr.Append(errs, model.AddValidator(v.Path, rule))
	}
	return errs
}

func normalize(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out, _ := engine.NormalizeYAML(m).(map[string]any)
	return out
}
