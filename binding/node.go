package binding

import (
	"fmt"

	jsonmodel "github.com/reoring/jsonmodel"
	"github.com/reoring/jsonmodel/registry"
)

// Node addresses one location inside a named model and navigates to
// children without holding references into the document.
//
//	n := binding.Doc(ctx, "user").Field("profile").Field("name")
//	_ = n.Set("Jane")
type Node struct {
	ctx   Context
	model string
	opts  options
	ref   jsonmodel.PathRef
}

// Doc returns the root Node of the model called model.
func Doc(ctx Context, model string, opts ...Option) Node {
	return Node{ctx: ctx, model: model, opts: buildOptions(opts), ref: jsonmodel.Root()}
}

// Field descends into an object key. Keys are escaped as needed.
func (n Node) Field(key string) Node {
	n.ref = n.ref.Field(key)
	return n
}

// Index descends into an array element.
func (n Node) Index(i int) Node {
	n.ref = n.ref.Index(i)
	return n
}

// Path returns the escaped path of the Node.
func (n Node) Path() string { return n.ref.Pointer() }

// Get returns the value at the Node. The root Node returns the whole document.
func (n Node) Get() (any, bool) {
	m, ok := resolve(n.ctx, n.model, n.opts)
	if !ok {
		return nil, false
	}
	return m.Get(n.Path())
}

// Set writes v at the Node.
func (n Node) Set(v any) error {
	m, ok := resolve(n.ctx, n.model, n.opts)
	if !ok {
		return fmt.Errorf("binding: set %s on %q: %w", n.Path(), n.model, registry.ErrModelNotFound)
	}
	doc, err := toJSONValue(v)
	if err != nil {
		return fmt.Errorf("binding: set %s: %w", n.Path(), err)
	}
	return m.Set(n.Path(), doc)
}

// Has reports whether the Node resolves.
func (n Node) Has() bool {
	_, ok := n.Get()
	return ok
}

// Keys returns the sorted keys when the Node is an object.
func (n Node) Keys() []string {
	m, ok := resolve(n.ctx, n.model, n.opts)
	if !ok {
		return nil
	}
	return m.Keys(n.Path())
}

// Len returns the element count of an array or the key count of an object,
// and 0 otherwise.
func (n Node) Len() int {
	v, _ := n.Get()
	switch t := v.(type) {
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	default:
		return 0
	}
}
