package discount

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/backend-tour/internal/money"
)

// Store abstracts discount code persistence.
type Store interface {
	// Lookup returns the code or ErrNotFound.
	Lookup(ctx context.Context, code string) (Code, error)
	// IncrementUsage records one redemption of the code.
	IncrementUsage(ctx context.Context, code string) error
}

// Service evaluates and redeems discount codes.
type Service struct {
	Store Store
	Now   func() time.Time
}

// Validate looks the code up and evaluates it against the subtotal. It
// never mutates usage counters; call Redeem once the booking is committed.
func (s *Service) Validate(ctx context.Context, code string, subtotalCents money.Cents) (Application, error) {
	if s == nil || s.Store == nil {
		return Application{}, errors.New("discount service not configured")
	}
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return Application{}, ErrNotFound
	}
	rule, err := s.Store.Lookup(ctx, trimmed)
	if err != nil {
		return Application{}, err
	}
	if err := rule.Validate(s.now(), subtotalCents); err != nil {
		return Application{}, err
	}
	return Application{
		Code:          rule.Code,
		DiscountCents: rule.Amount(subtotalCents),
		IsAccessCode:  rule.IsAccessCode,
	}, nil
}

// Redeem increments the code's usage counter. Invoked exactly once per
// completed booking, not per validation call.
func (s *Service) Redeem(ctx context.Context, code string) error {
	if s == nil || s.Store == nil {
		return errors.New("discount service not configured")
	}
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil
	}
	return s.Store.IncrementUsage(ctx, trimmed)
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// MemoryStore is an in-process Store keyed by code, case-insensitive.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]Code
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[string]Code)}
}

// Put seeds or replaces a code.
func (s *MemoryStore) Put(code Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[strings.ToUpper(code.Code)] = code
}

// Lookup implements Store.
func (s *MemoryStore) Lookup(_ context.Context, code string) (Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found, ok := s.codes[strings.ToUpper(code)]
	if !ok {
		return Code{}, ErrNotFound
	}
	return found, nil
}

// IncrementUsage implements Store.
func (s *MemoryStore) IncrementUsage(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found, ok := s.codes[strings.ToUpper(code)]
	if !ok {
		return ErrNotFound
	}
	found.UsedCount++
	s.codes[strings.ToUpper(code)] = found
	return nil
}
