// Package binding resolves models by name across the namespaces of a
// Registry and exposes typed accessors over single paths, for UI layers and
// other consumers that should not hold Model references themselves.
//
// WithNamespace pins a binding to one namespace; a model missing there is
// missing. Otherwise a model name resolves through:
//
//  1. a search of the Context namespace and then every namespace in sorted
//     order, unless WithoutFallback is given
//  2. the Context's own Manager (the Context namespace, or the first
//     namespace when FallbackSearch is on)
package binding

import (
	"fmt"

	j "github.com/goccy/go-json"

	jsonmodel "github.com/reoring/jsonmodel"
	"github.com/reoring/jsonmodel/registry"
)

// Context carries the registry and namespace a consumer operates in.
type Context struct {
	Registry *registry.Registry
	// Namespace is the consumer's own namespace; may be empty.
	Namespace string
	// FallbackSearch lets lookups fall back to other namespaces.
	FallbackSearch bool
}

// NewContext returns a Context for ns with fallback search enabled.
func NewContext(r *registry.Registry, ns string) Context {
	return Context{Registry: r, Namespace: ns, FallbackSearch: true}
}

// Manager resolves ns, else the Context namespace, else the first
// namespace when FallbackSearch is on.
func (c Context) Manager(ns string) (*registry.Manager, bool) {
	if c.Registry == nil {
		return nil, false
	}
	if ns != "" {
		return c.Registry.Get(ns)
	}
	if c.Namespace != "" {
		return c.Registry.Get(c.Namespace)
	}
	if c.FallbackSearch {
		if all := c.Registry.Namespaces(); len(all) > 0 {
			return c.Registry.Get(all[0])
		}
	}
	return nil, false
}

// Find looks name up in preferred, then the Context namespace, then, with
// FallbackSearch, every namespace. It returns the model and the namespace it
// was found in.
func (c Context) Find(name, preferred string) (*jsonmodel.Model, string, bool) {
	if c.Registry == nil {
		return nil, "", false
	}
	try := func(ns string) (*jsonmodel.Model, bool) {
		if ns == "" {
			return nil, false
		}
		m, ok := c.Registry.Get(ns)
		if !ok {
			return nil, false
		}
		return m.Model(name)
	}
	if m, ok := try(preferred); ok {
		return m, preferred, true
	}
	if m, ok := try(c.Namespace); ok {
		return m, c.Namespace, true
	}
	if c.FallbackSearch {
		for _, ns := range c.Registry.Namespaces() {
			if m, ok := try(ns); ok {
				return m, ns, true
			}
		}
	}
	return nil, "", false
}

// Option tunes Bind and Doc.
type Option func(*options)

type options struct {
	namespace  string
	def        any
	noFallback bool
}

// WithNamespace pins lookups to ns first.
func WithNamespace(ns string) Option { return func(o *options) { o.namespace = ns } }

// WithDefault sets the value Get returns when the path is absent.
func WithDefault(v any) Option { return func(o *options) { o.def = v } }

// WithoutFallback disables the cross-namespace search.
func WithoutFallback() Option { return func(o *options) { o.noFallback = true } }

func buildOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// resolve finds the model a binding addresses. A pinned namespace is
// authoritative: when it lacks the model, no other namespace is consulted.
func resolve(ctx Context, name string, o options) (*jsonmodel.Model, bool) {
	if o.namespace != "" {
		if ctx.Registry == nil {
			return nil, false
		}
		mgr, ok := ctx.Registry.Get(o.namespace)
		if !ok {
			return nil, false
		}
		return mgr.Model(name)
	}
	if !o.noFallback {
		if m, _, ok := ctx.Find(name, ""); ok {
			return m, true
		}
	}
	if mgr, ok := ctx.Manager(""); ok {
		return mgr.Model(name)
	}
	return nil, false
}

// Value is a typed view of one path of a named model. The model is resolved
// on every call, so a Value stays valid across model replacement.
type Value[T any] struct {
	ctx   Context
	model string
	path  string
	opts  options
}

// Bind returns a Value for path of the model called model.
func Bind[T any](ctx Context, model, path string, opts ...Option) *Value[T] {
	return &Value[T]{ctx: ctx, model: model, path: path, opts: buildOptions(opts)}
}

// Path returns the bound path.
func (v *Value[T]) Path() string { return v.path }

// Get returns the value at the path converted to T, or the default when the
// model or path is missing or the value does not convert.
func (v *Value[T]) Get() T {
	out, ok := v.Lookup()
	if !ok {
		return v.fallback()
	}
	return out
}

// Lookup is Get reporting whether a stored value was found and converted.
func (v *Value[T]) Lookup() (T, bool) {
	var zero T
	m, ok := resolve(v.ctx, v.model, v.opts)
	if !ok {
		return zero, false
	}
	raw, ok := m.Get(v.path)
	if !ok || raw == nil {
		return zero, false
	}
	out, err := convert[T](raw)
	if err != nil {
		return zero, false
	}
	return out, true
}

// Set stores val at the path. Go values are converted to JSON types first.
func (v *Value[T]) Set(val T) error {
	m, ok := resolve(v.ctx, v.model, v.opts)
	if !ok {
		return fmt.Errorf("binding: set %s on %q: %w", v.path, v.model, registry.ErrModelNotFound)
	}
	doc, err := toJSONValue(val)
	if err != nil {
		return fmt.Errorf("binding: set %s: %w", v.path, err)
	}
	return m.Set(v.path, doc)
}

func (v *Value[T]) fallback() T {
	var zero T
	if v.opts.def == nil {
		return zero
	}
	if d, ok := v.opts.def.(T); ok {
		return d
	}
	d, err := convert[T](v.opts.def)
	if err != nil {
		return zero
	}
	return d
}

// convert returns raw as T, converting through JSON when the dynamic type
// differs (float64 to int, map to struct).
func convert[T any](raw any) (T, error) {
	if t, ok := raw.(T); ok {
		return t, nil
	}
	var out T
	b, err := j.Marshal(raw)
	if err != nil {
		return out, err
	}
	err = j.Unmarshal(b, &out)
	return out, err
}

// toJSONValue turns arbitrary Go values into the map/slice/float64 shapes
// a document holds.
func toJSONValue(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, float64, map[string]any, []any:
		return v, nil
	}
	b, err := j.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := j.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
