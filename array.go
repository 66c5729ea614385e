package jsonmodel

import "github.com/reoring/jsonmodel/internal/engine"

// AddToArray appends item to the array at path and emits array-changed with
// the new element's index.
func (m *Model) AddToArray(path string, item any) error {
	if m.destroyed {
		return ErrDestroyed
	}
	arr, err := m.arrayAt("add", path)
	if err != nil {
		return err
	}
	if m.opts.Immutable {
		item = engine.DeepCopy(item)
	}
	st := engine.Found
	m.commit(func() bool {
		arr = append(arr, item)
		st = engine.Set(m.data, path, arr)
		return st == engine.Found
	})
	if st != engine.Found {
		return &PathError{Op: "add", Path: path, Err: statusErr(st)}
	}
	m.emit(Event{Kind: EventArrayChanged, Path: path, Action: ActionAdd, Index: len(arr) - 1, Item: item})
	m.logf("jsonmodel: array add", "path", path, "index", len(arr)-1)
	m.notifyWatchers()
	return nil
}

// RemoveFromArray removes the element at index and emits array-changed
// carrying the removed item. Indices outside [0, len) return ErrOutOfRange
// and leave the array untouched.
func (m *Model) RemoveFromArray(path string, index int) error {
	if m.destroyed {
		return ErrDestroyed
	}
	arr, err := m.arrayAt("remove", path)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(arr) {
		return &PathError{Op: "remove", Path: path, Err: ErrOutOfRange}
	}
	item := arr[index]
	st := engine.Found
	m.commit(func() bool {
		copy(arr[index:], arr[index+1:])
		arr[len(arr)-1] = nil
		arr = arr[:len(arr)-1]
		st = engine.Set(m.data, path, arr)
		return st == engine.Found
	})
	if st != engine.Found {
		return &PathError{Op: "remove", Path: path, Err: statusErr(st)}
	}
	m.emit(Event{Kind: EventArrayChanged, Path: path, Action: ActionRemove, Index: index, Item: item})
	m.logf("jsonmodel: array remove", "path", path, "index", index)
	m.notifyWatchers()
	return nil
}

// UpdateArrayItem merges patch into the first object element for which
// pred returns true. It returns false, without emitting, when nothing
// matches, when the match is not an object or when path is not an array.
func (m *Model) UpdateArrayItem(path string, pred func(item any, index int) bool, patch map[string]any) bool {
	if m.destroyed || pred == nil {
		return false
	}
	arr, err := m.arrayAt("update", path)
	if err != nil {
		return false
	}
	for i, it := range arr {
		if !pred(it, i) {
			continue
		}
		obj, ok := it.(map[string]any)
		if !ok {
			return false
		}
		m.commit(func() bool {
			for k, v := range patch {
				if m.opts.Immutable {
					v = engine.DeepCopy(v)
				}
				obj[k] = v
			}
			return true
		})
		m.emit(Event{Kind: EventArrayChanged, Path: path, Action: ActionUpdate, Index: i, Item: obj})
		m.logf("jsonmodel: array update", "path", path, "index", i)
		m.notifyWatchers()
		return true
	}
	return false
}

// ArrayLen returns the length of the array at path, or 0 when path does not
// address an array.
func (m *Model) ArrayLen(path string) int {
	v, _ := m.Get(path)
	arr, _ := v.([]any)
	return len(arr)
}

func (m *Model) arrayAt(op, path string) ([]any, error) {
	v, st := engine.Get(m.data, path)
	if st != engine.Found {
		return nil, &PathError{Op: op, Path: path, Err: statusErr(st)}
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, &PathError{Op: op, Path: path, Err: ErrNotArray}
	}
	return arr, nil
}
