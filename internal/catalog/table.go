package catalog

import "fmt"

// Table is an ordered, read-only lookup table keyed by id.
type Table[T any] struct {
	byID  map[string]int
	items []T
}

// NewTable indexes items by the key returned from id. Empty or duplicate ids are rejected.
func NewTable[T any](items []T, id func(T) string) (*Table[T], error) {
	t := &Table[T]{byID: make(map[string]int, len(items)), items: append([]T(nil), items...)}
	for i, item := range t.items {
		key := id(item)
		if key == "" {
			return nil, fmt.Errorf("item %d has an empty id", i)
		}
		if _, dup := t.byID[key]; dup {
			return nil, fmt.Errorf("duplicate id %q", key)
		}
		t.byID[key] = i
	}
	return t, nil
}

// Lookup returns the item with the given id.
func (t *Table[T]) Lookup(id string) (T, bool) {
	i, ok := t.byID[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.items[i], true
}

// List returns a copy of all items in declaration order.
func (t *Table[T]) List() []T {
	return append([]T(nil), t.items...)
}

// Len returns the number of items.
func (t *Table[T]) Len() int {
	return len(t.items)
}
