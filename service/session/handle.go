package session

import "sync"

// Handle is a pinned, locked reference to a stored session
type Handle[T Instance] struct {
	store   *Store[T]
	entry   *entry[T]
	access  Access
	created bool
	once    sync.Once
}

// Key returns the session key; for NewSessionID lookups it carries the
// allocated identity.
func (h *Handle[T]) Key() Key {
	return h.entry.key
}

// Instance returns the session instance
func (h *Handle[T]) Instance() T {
	return h.entry.instance
}

// Created reports whether this acquire instantiated the session
func (h *Handle[T]) Created() bool {
	return h.created
}

// Release unlocks and unpins the entry; subsequent calls are no-ops
func (h *Handle[T]) Release() {
	h.once.Do(func() {
		h.store.release(h)
	})
}
