package jsonmodel

import (
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/reoring/jsonmodel/internal/engine"
)

// Model owns one JSON-like document and exposes path-addressed reads,
// writes, array mutations, validation and change events over it.
//
// A Model has a single writer: mutations and Get must come from one
// goroutine at a time. Metadata, Snapshot, ToJSON and ToYAML may also be
// called from other goroutines, such as a metrics scrape. Listeners and
// watchers run synchronously inside the mutating call that triggered them.
type Model struct {
	// mu guards writes to data and all of meta. It is never held while
	// rules, listeners or watchers run.
	mu   sync.Mutex
	data map[string]any
	opts Options
	log  *slog.Logger

	validators map[string][]Rule
	ruleOrder  []string

	listeners map[EventKind][]listenerEntry
	watchers  []*watcher
	nextID    uint64

	meta      Metadata
	dirty     bool
	destroyed bool
}

// Update is one entry of a batch write.
type Update struct {
	Path  string
	Value any
}

// Lookup is the explicit outcome of a path read.
type Lookup struct {
	Value  any
	Status engine.Status
}

// Found reports whether the path resolved.
func (l Lookup) Found() bool { return l.Status == engine.Found }

// Status values re-exported for callers inspecting Lookup.
const (
	StatusFound        = engine.Found
	StatusNotFound     = engine.NotFound
	StatusTypeMismatch = engine.TypeMismatch
	StatusOutOfRange   = engine.OutOfRange
	StatusRootPath     = engine.RootPath
)

// New wraps data in a Model. data is adopted, not copied; a nil map starts an
// empty document. When several Options are given the last one wins.
func New(data map[string]any, opts ...Options) *Model {
	if data == nil {
		data = map[string]any{}
	}
	opt := normalizeOptions(opts)
	now := time.Now()
	m := &Model{
		data:       data,
		opts:       opt,
		log:        opt.Logger,
		validators: map[string][]Rule{},
		meta: Metadata{
			Version:      opt.Version,
			Created:      now,
			LastModified: now,
		},
		dirty: true,
	}
	m.logf("jsonmodel: created", "validation", opt.EnableValidation, "immutable", opt.Immutable)
	return m
}

// Options returns the options the Model was built with.
func (m *Model) Options() Options { return m.opts }

// Data returns the live document. Mutating it directly bypasses metadata,
// validation and events; use it for reading the whole tree.
func (m *Model) Data() map[string]any { return m.data }

// Get returns the value at path and whether it resolved. Objects and arrays
// are returned by reference.
func (m *Model) Get(path string) (any, bool) {
	v, st := engine.Get(m.data, path)
	return v, st == engine.Found
}

// Lookup is Get with the reason a path did not resolve.
func (m *Model) Lookup(path string) Lookup {
	v, st := engine.Get(m.data, path)
	return Lookup{Value: v, Status: st}
}

// Has reports whether path resolves. A key explicitly holding nil is present.
func (m *Model) Has(path string) bool {
	_, ok := m.Get(path)
	return ok
}

// Keys returns the sorted keys of the object at path, or nil when path does
// not address an object.
func (m *Model) Keys(path string) []string {
	v, _ := m.Get(path)
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return engine.SortedKeys(obj)
}

// Set writes value at path. With validation enabled, failing rules for path
// abort the write, emit validation-error and return the Issues. A path whose
// parent does not resolve returns a *PathError and emits nothing.
func (m *Model) Set(path string, value any) error {
	if m.destroyed {
		return ErrDestroyed
	}
	return m.setFrom(path, value, SourceUser)
}

// ResetProperty writes def at path with the same rules as Set.
func (m *Model) ResetProperty(path string, def any) error {
	if m.destroyed {
		return ErrDestroyed
	}
	return m.setFrom(path, def, SourceSystem)
}

func (m *Model) setFrom(path string, value any, src ChangeSource) error {
	old, err := m.apply(path, value)
	if err != nil {
		return err
	}
	m.emit(Event{Kind: EventPropertyChanged, Path: path, OldValue: old, NewValue: value, Source: src})
	m.logf("jsonmodel: property changed", "path", path)
	m.notifyWatchers()
	return nil
}

// apply validates and commits the write without emitting property-changed.
// It returns the previous value.
func (m *Model) apply(path string, value any) (any, error) {
	old, _ := m.Get(path)
	if m.opts.EnableValidation {
		if iss := m.check(path, value); len(iss) > 0 {
			m.emit(Event{Kind: EventValidationError, Path: path, Errors: iss.Messages(), Issues: iss})
			m.logf("jsonmodel: write rejected", "path", path, "issues", iss.Error())
			return nil, iss
		}
	}
	if m.opts.Immutable {
		value = engine.DeepCopy(value)
	}
	st := engine.Found
	m.commit(func() bool {
		st = engine.Set(m.data, path, value)
		return st == engine.Found
	})
	if st != engine.Found {
		return nil, &PathError{Op: "set", Path: path, Err: statusErr(st)}
	}
	return old, nil
}

// UpdateProperties applies each update in order as an independent Set. A
// failing entry does not roll back or block the others; all failures are
// combined into the returned error.
func (m *Model) UpdateProperties(updates ...Update) error {
	if m.destroyed {
		return ErrDestroyed
	}
	var errs error
	for _, u := range updates {
		errs = multierr.Append(errs, m.Set(u.Path, u.Value))
	}
	return errs
}

// Reset restores defaults. With paths, each path takes the value found at the
// same path inside Options.Defaults, or is removed when the defaults have
// none. Without paths the defaults are merged over the top-level keys.
// Defaults are not validated. A Reset that applied anything counts as a
// single change and emits model-reset; one where every path failed changes
// nothing and emits nothing.
func (m *Model) Reset(paths ...string) error {
	if m.destroyed {
		return ErrDestroyed
	}
	var errs error
	var changed []Event
	m.commit(func() bool {
		if len(paths) == 0 {
			for k, v := range m.opts.Defaults {
				m.data[k] = engine.DeepCopy(v)
			}
			return true
		}
		for _, p := range paths {
			old, _ := engine.Get(m.data, p)
			def, st := engine.Get(m.opts.Defaults, p)
			if m.opts.Defaults != nil && st == engine.Found {
				if st := engine.Set(m.data, p, engine.DeepCopy(def)); st != engine.Found {
					errs = multierr.Append(errs, &PathError{Op: "reset", Path: p, Err: statusErr(st)})
					continue
				}
			} else if st := engine.Delete(m.data, p); st != engine.Found && st != engine.NotFound {
				errs = multierr.Append(errs, &PathError{Op: "reset", Path: p, Err: statusErr(st)})
				continue
			}
			nv, _ := engine.Get(m.data, p)
			changed = append(changed, Event{Kind: EventPropertyChanged, Path: p, OldValue: old, NewValue: nv, Source: SourceSystem})
		}
		return len(changed) > 0
	})
	if len(paths) > 0 && len(changed) == 0 {
		return errs
	}
	for _, ev := range changed {
		m.emit(ev)
	}
	m.emit(Event{Kind: EventModelReset})
	m.logf("jsonmodel: reset", "paths", paths)
	m.notifyWatchers()
	return errs
}

// Destroy clears validators, listeners and watchers. The document is kept
// for reads; every later mutation fails with ErrDestroyed.
func (m *Model) Destroy() {
	if m.destroyed {
		return
	}
	m.validators = map[string][]Rule{}
	m.ruleOrder = nil
	m.listeners = nil
	m.watchers = nil
	m.destroyed = true
	m.logf("jsonmodel: destroyed")
}

// Destroyed reports whether Destroy was called.
func (m *Model) Destroyed() bool { return m.destroyed }

// commit runs write under mu. When it reports success the change counter
// moves and metadata is marked for recomputation.
func (m *Model) commit(write func() bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !write() {
		return false
	}
	m.meta.ChangeCount++
	m.meta.LastModified = time.Now()
	m.dirty = true
	return true
}

func (m *Model) logf(msg string, args ...any) {
	if m.opts.EnableLogging {
		m.log.Debug(msg, args...)
	}
}

func statusErr(st engine.Status) error {
	switch st {
	case engine.NotFound:
		return ErrUnresolved
	case engine.TypeMismatch:
		return ErrTypeMismatch
	case engine.OutOfRange:
		return ErrOutOfRange
	case engine.RootPath:
		return ErrRootPath
	default:
		return ErrUnresolved
	}
}
