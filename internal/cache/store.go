package cache

import (
	"fmt"
	"sync"

	"github.com/desertthunder/gridx/internal/shared"
)

// Updater rewrites a cached value in place. It receives the current value,
// or nil on a miss, and returns the replacement.
type Updater func(current []byte) ([]byte, error)

// Store is the cache layer consumed by the transfer engine.
// Keys are produced exclusively by the keyspace functions.
type Store interface {
	// Read returns the cached value for key, or [shared.ErrCacheMiss].
	Read(key Key) ([]byte, error)

	// Patch applies an updater to the entry, writing its result back.
	Patch(key Key, update Updater) error

	// Invalidate removes the entry; absent keys are not an error.
	Invalidate(key Key) error
}

// MemoryStore is an in-process [Store] scoped to one grid session.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key][]byte)}
}

func (s *MemoryStore) Read(key Key) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrCacheMiss, key)
	}
	return append([]byte(nil), value...), nil
}

func (s *MemoryStore) Patch(key Key, update Updater) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current []byte
	if value, ok := s.entries[key]; ok {
		current = append([]byte(nil), value...)
	}

	next, err := update(current)
	if err != nil {
		return fmt.Errorf("failed to patch %s: %w", key, err)
	}

	s.entries[key] = next
	return nil
}

func (s *MemoryStore) Invalidate(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
