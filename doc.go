// Package jsonmodel provides a path-addressable JSON document store:
//
// - Reads and writes through slash-delimited paths (/user/name, /items/0/id)
// - Array operations (add/remove/update-by-predicate) with change events
// - Per-path validation rules with a stable error model via Issues
// - Lazily recomputed metadata (change counter, key paths, byte size)
// - JSON/YAML import and export, deep clones
//
// Design policy:
// - Keep only public APIs in the root package; put path resolution and decoding under internal/.
// - Namespaces of models live in registry/, UI-facing accessors in binding/, ready-made rules in rules/.
// - Failures are explicit: writes return Issues or *PathError instead of being dropped silently.
//
// Typical usage:
//
//	m := jsonmodel.New(map[string]any{"user": map[string]any{"name": "John"}},
//	    jsonmodel.Options{EnableValidation: true})
//	_ = m.AddValidator("/user/email", rules.Email())
//	m.On(jsonmodel.EventPropertyChanged, func(ev jsonmodel.Event) { ... })
//	if err := m.Set("/user/email", "bad"); err != nil {
//	    iss, _ := jsonmodel.AsIssues(err)
//	}
//
// Paths escape '/' and '~' inside keys per RFC6901 ("~1" and "~0"); use At/Field/Index to build them.
package jsonmodel
