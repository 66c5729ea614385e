package engine

// Status reports how a path operation resolved against a document.
type Status int

const (
	Found        Status = iota // The path resolved (read) or the write/delete was applied.
	NotFound                   // A segment is missing.
	TypeMismatch               // A segment walked into a scalar, or an array was addressed with a non-index.
	OutOfRange                 // An array index is outside [0, len).
	RootPath                   // Writes and deletes cannot replace the root.
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case TypeMismatch:
		return "type mismatch"
	case OutOfRange:
		return "out of range"
	case RootPath:
		return "root path"
	default:
		return "unknown"
	}
}

// Get walks doc along path. It never panics; absence is reported through
// Status rather than an error.
func Get(doc any, path string) (any, Status) {
	return walk(doc, Split(path))
}

// Set assigns value at path. Every segment but the last must resolve to an
// indexable value; map parents create or replace the key, array parents need
// an in-range index.
func Set(doc any, path string, value any) Status {
	segs := Split(path)
	if len(segs) == 0 {
		return RootPath
	}
	parent, st := walk(doc, segs[:len(segs)-1])
	if st != Found {
		return st
	}
	last := segs[len(segs)-1]
	switch p := parent.(type) {
	case map[string]any:
		p[last] = value
		return Found
	case []any:
		i, ok := index(last)
		if !ok {
			return TypeMismatch
		}
		if i >= len(p) {
			return OutOfRange
		}
		p[i] = value
		return Found
	default:
		return TypeMismatch
	}
}

// Delete removes the key at path from its parent object. Array elements are
// not deletable through paths; use the array operations instead.
func Delete(doc any, path string) Status {
	segs := Split(path)
	if len(segs) == 0 {
		return RootPath
	}
	parent, st := walk(doc, segs[:len(segs)-1])
	if st != Found {
		return st
	}
	p, ok := parent.(map[string]any)
	if !ok {
		return TypeMismatch
	}
	last := segs[len(segs)-1]
	if _, ok := p[last]; !ok {
		return NotFound
	}
	delete(p, last)
	return Found
}

func walk(cur any, segs []string) (any, Status) {
	for _, seg := range segs {
		switch t := cur.(type) {
		case map[string]any:
			v, ok := t[seg]
			if !ok {
				return nil, NotFound
			}
			cur = v
		case []any:
			i, ok := index(seg)
			if !ok {
				return nil, NotFound
			}
			if i >= len(t) {
				return nil, NotFound
			}
			cur = t[i]
		default:
			// nil and scalars are not indexable
			return nil, TypeMismatch
		}
	}
	return cur, Found
}
