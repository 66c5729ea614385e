package jsonmodel

import (
	"strconv"

	"github.com/reoring/jsonmodel/internal/engine"
)

// PathRef builds escaped paths in a chain-safe way. Keys containing '/' or
// '~' are escaped per RFC6901 so they stay addressable.
//
//	p := jsonmodel.At("/users").Index(0).Field("a/b").Pointer() // "/users/0/a~1b"
type PathRef struct {
	parts []string
}

// Root returns a PathRef addressing the document root.
func Root() PathRef { return PathRef{} }

// At starts a PathRef from an already escaped path.
func At(path string) PathRef { return PathRef{parts: engine.Split(path)} }

// Field appends an object key. An empty name leaves the ref unchanged.
func (p PathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	return PathRef{parts: append(append([]string{}, p.parts...), name)}
}

// Index appends an array index.
func (p PathRef) Index(i int) PathRef {
	return PathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

// Pointer renders the escaped path. The root renders as "/".
func (p PathRef) Pointer() string { return engine.Join(p.parts...) }

// String implements fmt.Stringer.
func (p PathRef) String() string { return p.Pointer() }

// Segments returns the unescaped segments.
func (p PathRef) Segments() []string { return append([]string(nil), p.parts...) }

// Issue creates an Issue at this path; kv are alternating param keys and values.
func (p PathRef) Issue(code, msg string, kv ...any) Issue {
	m := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			m[k] = kv[i+1]
		}
	}
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: m}
}
