package engine

import (
	"fmt"
	"sort"
)

// Paths walks doc and returns the escaped path of every object key. Nested
// objects are descended; arrays are listed as a single path and their
// elements are not enumerated. Keys are visited in sorted order.
func Paths(doc any) []string {
	var out []string
	collectPaths(doc, "", &out)
	return out
}

func collectPaths(v any, cur string, out *[]string) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	for _, k := range SortedKeys(m) {
		p := cur + "/" + Escape(k)
		*out = append(*out, p)
		if _, isObj := m[k].(map[string]any); isObj {
			collectPaths(m[k], p, out)
		}
	}
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DeepCopy copies maps and slices recursively. Other values are returned as
// they are.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = DeepCopy(vv)
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i := range t {
			out[i] = DeepCopy(t[i])
		}
		return out
	default:
		return v
	}
}

// NormalizeYAML converts values decoded by yaml.v3 into the JSON-like shape
// used by documents: map[any]any becomes map[string]any and integers become
// float64. Non-string map keys are stringified.
func NormalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = NormalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			out[ks] = NormalizeYAML(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = NormalizeYAML(t[i])
		}
		return arr
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
