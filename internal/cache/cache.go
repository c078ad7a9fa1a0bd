// Package cache holds computed results until an explicit full clear.
package cache

// Store maps keys to previously computed values. Entries never expire;
// presence means valid until the next ClearAll. There is no per-key
// delete.
//
// A Store is not safe for concurrent use.
type Store[K comparable, V any] struct {
	entries map[K]V
}

// New creates an empty store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{entries: make(map[K]V)}
}

// Get returns the value stored under key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Put inserts or overwrites the value for key.
func (s *Store[K, V]) Put(key K, value V) {
	s.entries[key] = value
}

// ClearAll removes every entry.
func (s *Store[K, V]) ClearAll() {
	clear(s.entries)
}

// Len returns the number of entries.
func (s *Store[K, V]) Len() int {
	return len(s.entries)
}

// Keys returns all keys in unspecified order.
func (s *Store[K, V]) Keys() []K {
	keys := make([]K, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}
