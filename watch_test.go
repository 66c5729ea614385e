package jsonmodel_test

import (
	"reflect"
	"testing"

	jsonmodel "github.com/reoring/jsonmodel"
)

type watchCall struct{ newV, oldV any }

func TestWatch_FiresOnChange(t *testing.T) {
	m := jsonmodel.New(userDoc())
	var calls []watchCall
	stop := m.Watch("/user/name", func(n, o any) { calls = append(calls, watchCall{n, o}) })

	_ = m.Set("/user/age", 31.0)
	if len(calls) != 0 {
		t.Fatalf("unrelated writes must not fire: %v", calls)
	}
	_ = m.Set("/user/name", "Jane")
	_ = m.Set("/user/name", "Jane")
	if len(calls) != 1 || calls[0].newV != "Jane" || calls[0].oldV != "John" {
		t.Fatalf("calls: %v", calls)
	}

	// parent replacement is seen by child watchers
	_ = m.Set("/user", map[string]any{"name": "Ann"})
	if len(calls) != 2 || calls[1].newV != "Ann" {
		t.Fatalf("calls: %v", calls)
	}

	stop()
	stop()
	_ = m.Set("/user/name", "Bob")
	if len(calls) != 2 {
		t.Fatalf("stopped watchers must not fire")
	}
}

func TestWatch_Immediate(t *testing.T) {
	m := jsonmodel.New(userDoc())
	var calls []watchCall
	m.Watch("/user/name", func(n, o any) { calls = append(calls, watchCall{n, o}) }, jsonmodel.WatchOptions{Immediate: true})
	if len(calls) != 1 || calls[0].newV != "John" || calls[0].oldV != nil {
		t.Fatalf("immediate: %v", calls)
	}
}

func TestWatch_ArraysAndSnapshots(t *testing.T) {
	m := jsonmodel.New(map[string]any{"xs": []any{"a"}})
	var got []any
	m.Watch("/xs", func(n, _ any) { got = append(got, n) })

	_ = m.AddToArray("/xs", "b")
	_ = m.RemoveFromArray("/xs", 0)
	if len(got) != 2 {
		t.Fatalf("array changes should fire, got %v", got)
	}
	if !reflect.DeepEqual(got[0], []any{"a", "b"}) || !reflect.DeepEqual(got[1], []any{"b"}) {
		t.Fatalf("callbacks receive snapshots: %v", got)
	}
}

func TestWatch_MissingPath(t *testing.T) {
	m := jsonmodel.New(nil)
	var calls []watchCall
	m.Watch("/later", func(n, o any) { calls = append(calls, watchCall{n, o}) })
	_ = m.Set("/later", "now")
	if len(calls) != 1 || calls[0].newV != "now" || calls[0].oldV != nil {
		t.Fatalf("calls: %v", calls)
	}
	_ = m.Reset("/later")
	if len(calls) != 2 || calls[1].newV != nil {
		t.Fatalf("removal is a change: %v", calls)
	}
}
