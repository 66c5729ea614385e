package jsonmodel

import (
	"time"

	"github.com/blang/semver/v4"

	"github.com/reoring/jsonmodel/internal/engine"
)

// Metadata describes the document at the time it was read.
type Metadata struct {
	Version      semver.Version
	Created      time.Time
	LastModified time.Time
	// ChangeCount grows by one per successful mutating call.
	ChangeCount int
	// Paths lists every object key path; array elements are not enumerated.
	Paths []string
	// Size is the byte length of the compact JSON encoding.
	Size int
}

// Metadata returns a copy of the current metadata. Paths and Size are
// recomputed lazily on the first read after a mutation. Metadata may be
// called from any goroutine.
func (m *Model) Metadata() Metadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dirty {
		m.meta.Paths = engine.Paths(m.data)
		if b, err := encodeCompact(m.data); err == nil {
			m.meta.Size = len(b)
		} else {
			m.log.Warn("jsonmodel: size estimate failed", "err", err)
		}
		m.dirty = false
	}
	out := m.meta
	out.Paths = append([]string(nil), m.meta.Paths...)
	return out
}
