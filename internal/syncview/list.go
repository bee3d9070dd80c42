// Package syncview holds the client-collection merge primitives: every list a
// live viewer keeps in sync with broadcast events goes through the same
// idempotent insert-if-absent / remove-if-present logic instead of re-scanning
// per screen. Delivery is at-least-once, so a duplicate event must be a no-op.
package syncview

import "sync"

// Identifiable is any entity with a stable string identifier.
type Identifiable interface {
	ItemID() string
}

// List is an ordered collection merged by identifier. Safe for concurrent use.
type List[T Identifiable] struct {
	mu    sync.RWMutex
	items []T
	index map[string]struct{}
}

func NewList[T Identifiable]() *List[T] {
	return &List[T]{index: make(map[string]struct{})}
}

// Add appends item unless an element with the same id is already present.
// Returns whether the item was inserted; a duplicate is silently dropped.
func (l *List[T]) Add(item T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[item.ItemID()]; ok {
		return false
	}
	l.index[item.ItemID()] = struct{}{}
	l.items = append(l.items, item)
	return true
}

// Prepend inserts item at the front unless its id is already present. Review
// feeds use this so the newest entry leads.
func (l *List[T]) Prepend(item T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[item.ItemID()]; ok {
		return false
	}
	l.index[item.ItemID()] = struct{}{}
	l.items = append([]T{item}, l.items...)
	return true
}

// Remove deletes the element with the given id. Absence is not an error;
// it returns whether anything was removed.
func (l *List[T]) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[id]; !ok {
		return false
	}
	delete(l.index, id)
	for i, item := range l.items {
		if item.ItemID() == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			break
		}
	}
	return true
}

// Items returns a copy of the collection in order.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
