package jsonmodel

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reoring/jsonmodel/internal/engine"
)

// ToJSON renders the document as JSON indented with two spaces. The metadata
// is not part of the payload.
func (m *Model) ToJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return getJSONDriver().MarshalIndent(m.data, "", "  ")
}

// FromJSON parses data and merges its top-level keys over the document.
// Nested structures are replaced wholesale, not merged. Input that is not a
// JSON object fails with Issues wrapping ErrMalformedDocument and leaves the
// document unchanged.
func (m *Model) FromJSON(data []byte) error {
	if m.destroyed {
		return ErrDestroyed
	}
	v, err := engine.Decode(data, engine.Limits{
		MaxDepth:            m.opts.Limits.MaxDepth,
		MaxBytes:            m.opts.Limits.MaxBytes,
		RejectDuplicateKeys: m.opts.Limits.RejectDuplicateKeys,
	})
	if err != nil {
		return malformed(err)
	}
	return m.merge(v, "json")
}

// ToYAML renders the document as YAML.
func (m *Model) ToYAML() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return yaml.Marshal(m.data)
}

// FromYAML is FromJSON for YAML input.
func (m *Model) FromYAML(data []byte) error {
	if m.destroyed {
		return ErrDestroyed
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return malformed(err)
	}
	return m.merge(engine.NormalizeYAML(v), "yaml")
}

func (m *Model) merge(v any, format string) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return malformed(fmt.Errorf("%s root is %T, want object", format, v))
	}
	m.commit(func() bool {
		for k, val := range obj {
			m.data[k] = val
		}
		return true
	})
	m.emit(Event{Kind: EventModelReset})
	m.logf("jsonmodel: imported", "format", format, "keys", len(obj))
	m.notifyWatchers()
	return nil
}

// Clone deep-copies the document through a JSON round trip into a new Model
// with the same options. Listeners, watchers and validators are not copied.
func (m *Model) Clone() (*Model, error) {
	doc, err := m.Snapshot()
	if err != nil {
		return nil, err
	}
	return New(doc, m.opts), nil
}

// Snapshot returns a detached deep copy of the document. Unlike Data it is
// safe to call while another goroutine mutates the Model.
func (m *Model) Snapshot() (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CopyDocument(m.data)
}

// CopyDocument deep-copies doc by serializing and re-parsing it, so the copy
// only holds JSON types.
func CopyDocument(doc map[string]any) (map[string]any, error) {
	b, err := encodeCompact(doc)
	if err != nil {
		return nil, err
	}
	v, err := engine.Decode(b, engine.Limits{})
	if err != nil {
		return nil, malformed(err)
	}
	out, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return out, nil
}

func encodeCompact(v any) ([]byte, error) { return getJSONDriver().Marshal(v) }

func malformed(err error) Issues {
	iss := Issue{
		Path:    "/",
		Code:    CodeParseError,
		Message: err.Error(),
		Cause:   fmt.Errorf("%w: %w", ErrMalformedDocument, err),
	}
	var de *engine.DecodeError
	if errors.As(err, &de) {
		iss.Code = de.Code
		iss.Path = de.Path
		iss.Message = de.Message
	}
	return AppendIssues(nil, iss)
}
