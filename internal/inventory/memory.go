package inventory

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store guarded by a mutex. Keys without a
// seeded record are treated as unlimited.
type MemoryStore struct {
	mu        sync.Mutex
	remaining map[string]int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{remaining: make(map[string]int64)}
}

// Set seeds or replaces the remaining capacity for a key. Unlimited removes
// the cap.
func (s *MemoryStore) Set(key Key, remaining int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if remaining == Unlimited {
		delete(s.remaining, key.String())
		return
	}
	if remaining < 0 {
		remaining = 0
	}
	s.remaining[key.String()] = remaining
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key Key) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining, ok := s.remaining[key.String()]
	if !ok {
		return Unlimited, nil
	}
	return remaining, nil
}

// Commit implements Store.
func (s *MemoryStore) Commit(_ context.Context, key Key, delta int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining, ok := s.remaining[key.String()]
	if !ok {
		return true, nil
	}
	if remaining < delta {
		return false, nil
	}
	s.remaining[key.String()] = remaining - delta
	return true, nil
}

// Rollback implements Store.
func (s *MemoryStore) Rollback(_ context.Context, key Key, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining, ok := s.remaining[key.String()]
	if !ok {
		return nil
	}
	s.remaining[key.String()] = remaining + delta
	return nil
}
