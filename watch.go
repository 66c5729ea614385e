package jsonmodel

import (
	"reflect"

	"github.com/reoring/jsonmodel/internal/engine"
)

type watcher struct {
	id   uint64
	path string
	fn   func(newValue, oldValue any)
	last any
}

// Watch calls fn whenever a successful mutation leaves a different value at
// path than the one last observed. Values are compared deeply, so in-place
// array changes are seen. fn receives snapshots, not live references. The
// returned stop function unregisters the watcher.
func (m *Model) Watch(path string, fn func(newValue, oldValue any), opts ...WatchOptions) (stop func()) {
	if m.destroyed || fn == nil {
		return func() {}
	}
	var opt WatchOptions
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	m.nextID++
	w := &watcher{id: m.nextID, path: path, fn: fn, last: m.snapshot(path)}
	m.watchers = append(m.watchers, w)
	if opt.Immediate {
		fn(w.last, nil)
	}
	return func() {
		for i, cur := range m.watchers {
			if cur.id == w.id {
				m.watchers = append(m.watchers[:i:i], m.watchers[i+1:]...)
				return
			}
		}
	}
}

func (m *Model) snapshot(path string) any {
	v, _ := m.Get(path)
	return engine.DeepCopy(v)
}

func (m *Model) notifyWatchers() {
	if len(m.watchers) == 0 {
		return
	}
	ws := append([]*watcher(nil), m.watchers...)
	for _, w := range ws {
		cur := m.snapshot(w.path)
		if reflect.DeepEqual(cur, w.last) {
			continue
		}
		old := w.last
		w.last = cur
		w.fn(cur, old)
	}
}
