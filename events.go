package jsonmodel

import "time"

// EventKind names one of the fixed event families a Model emits.
type EventKind string

const (
	EventPropertyChanged EventKind = "property-changed"
	EventValidationError EventKind = "validation-error"
	EventModelReset      EventKind = "model-reset"
	EventArrayChanged    EventKind = "array-changed"
)

// EventKinds lists every kind in a stable order.
var EventKinds = []EventKind{EventPropertyChanged, EventValidationError, EventModelReset, EventArrayChanged}

// ArrayAction describes an array-changed event.
type ArrayAction string

const (
	ActionAdd    ArrayAction = "add"
	ActionRemove ArrayAction = "remove"
	ActionUpdate ArrayAction = "update"
)

// ChangeSource tags who caused a property change.
type ChangeSource string

const (
	SourceUser   ChangeSource = "user"
	SourceSystem ChangeSource = "system"
	SourceAPI    ChangeSource = "api"
)

// Event is the payload delivered to listeners. Which fields are set depends
// on Kind:
//
//   - property-changed: Path, OldValue, NewValue, Source
//   - validation-error: Path, Errors, Issues
//   - array-changed:    Path, Action, Index, Item
//   - model-reset:      only Timestamp
type Event struct {
	Kind      EventKind
	Path      string
	OldValue  any
	NewValue  any
	Source    ChangeSource
	Action    ArrayAction
	Index     int
	Item      any
	Errors    []string
	Issues    Issues
	Timestamp time.Time
}

// Listener receives events synchronously inside the mutating call.
type Listener func(Event)

// Subscription identifies one listener registration.
type Subscription struct {
	kind EventKind
	id   uint64
}

// Kind returns the event kind the subscription listens to.
func (s Subscription) Kind() EventKind { return s.kind }

// Active reports whether the registration was accepted. Registrations on a
// destroyed Model are inert.
func (s Subscription) Active() bool { return s.id != 0 }

type listenerEntry struct {
	id uint64
	fn Listener
}

// On registers fn for kind. The same function may be registered several
// times and then fires once per registration, in registration order.
func (m *Model) On(kind EventKind, fn Listener) Subscription {
	if m.destroyed || fn == nil {
		return Subscription{kind: kind}
	}
	m.nextID++
	if m.listeners == nil {
		m.listeners = make(map[EventKind][]listenerEntry)
	}
	m.listeners[kind] = append(m.listeners[kind], listenerEntry{id: m.nextID, fn: fn})
	return Subscription{kind: kind, id: m.nextID}
}

// Off removes a registration. Unknown or inert subscriptions are ignored.
func (m *Model) Off(sub Subscription) {
	ls := m.listeners[sub.kind]
	for i, l := range ls {
		if l.id == sub.id {
			m.listeners[sub.kind] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// ListenerCount reports how many listeners are registered for kind.
func (m *Model) ListenerCount(kind EventKind) int { return len(m.listeners[kind]) }

func (m *Model) emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	ls := m.listeners[ev.Kind]
	if len(ls) == 0 {
		return
	}
	// listeners may unsubscribe while we dispatch
	snapshot := append([]listenerEntry(nil), ls...)
	for _, l := range snapshot {
		l.fn(ev)
	}
}
