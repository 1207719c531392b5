package booking

import (
	"context"
	"strings"
	"sync"
)

// Store abstracts booking persistence. The core only needs save and lookup
// by confirmation code; everything else is the embedding application's
// concern.
type Store interface {
	Save(ctx context.Context, b *Booking) error
	Get(ctx context.Context, confirmationCode string) (*Booking, error)
}

// MemoryStore keeps bookings in process memory, keyed by confirmation code.
// The returned aggregate is the live instance; the Service serialises
// mutations per confirmation code before handing it out.
type MemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: make(map[string]*Booking)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, b *Booking) error {
	if b == nil || strings.TrimSpace(b.ConfirmationCode) == "" {
		return ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ConfirmationCode] = b
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, confirmationCode string) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[strings.TrimSpace(confirmationCode)]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}
