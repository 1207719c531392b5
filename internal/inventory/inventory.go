package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Unlimited is the remaining-capacity sentinel for records without a cap.
const Unlimited int64 = -1

var (
	// ErrCapacityExceeded is returned when a reservation would oversell a pool.
	ErrCapacityExceeded = errors.New("inventory: capacity exceeded")
	// ErrInvalidQuantity is returned for non-positive reservation deltas.
	ErrInvalidQuantity = errors.New("inventory: quantity must be positive")
)

type keyKind string

const (
	kindTicket      keyKind = "ticket"
	kindMerchandise keyKind = "merch"
)

// Key identifies one capacity pool. Ticket capacity is scoped per
// (trip, boat) pair because a trip may run on multiple boats with
// independent capacities; merchandise capacity is scoped per variant.
type Key struct {
	kind keyKind
	a    string
	b    string
	c    string
}

// TicketKey builds the pool key for a ticket type on a specific trip+boat.
func TicketKey(tripID, boatID, ticketType string) Key {
	return Key{kind: kindTicket, a: tripID, b: boatID, c: ticketType}
}

// MerchandiseKey builds the pool key for one merchandise variant.
func MerchandiseKey(merchandiseID, variant string) Key {
	return Key{kind: kindMerchandise, a: merchandiseID, b: variant}
}

// IsZero reports whether the key was never initialised.
func (k Key) IsZero() bool { return k.kind == "" }

func (k Key) String() string {
	parts := []string{string(k.kind), k.a, k.b}
	if k.kind == kindTicket {
		parts = append(parts, k.c)
	}
	return strings.Join(parts, ":")
}

// Store is the capacity source of truth consumed by the Ledger. Commit must
// be atomic per key: a concurrent commit racing for the last unit must have
// exactly one caller observe ok=true.
type Store interface {
	// Get returns the free capacity for the key, or Unlimited.
	Get(ctx context.Context, key Key) (int64, error)
	// Commit atomically checks and decrements capacity. ok=false means the
	// delta would exceed the remaining capacity; no state changes.
	Commit(ctx context.Context, key Key, delta int64) (bool, error)
	// Rollback restores previously committed capacity.
	Rollback(ctx context.Context, key Key, delta int64) error
}

// Reservation pairs a pool key with a requested quantity.
type Reservation struct {
	Key Key
	Qty int64
}

// Ledger validates and applies capacity reservations on top of a Store.
// Checks during interactive selection are advisory; Reserve is the
// authoritative commit.
type Ledger struct {
	store Store
}

// NewLedger wraps a Store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Remaining reports current free capacity for a key.
func (l *Ledger) Remaining(ctx context.Context, key Key) (int64, error) {
	return l.store.Get(ctx, key)
}

// Reserve atomically commits delta units against the key's capacity. It
// fails without side effects when the pool cannot absorb the delta.
func (l *Ledger) Reserve(ctx context.Context, key Key, delta int64) error {
	if delta <= 0 {
		return fmt.Errorf("%w: got %d for %s", ErrInvalidQuantity, delta, key)
	}
	ok, err := l.store.Commit(ctx, key, delta)
	if err != nil {
		return fmt.Errorf("inventory: commit %s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrCapacityExceeded, key)
	}
	return nil
}

// Release restores capacity, used on refund or cancellation of the
// corresponding items. Releasing into an unlimited pool is a no-op.
func (l *Ledger) Release(ctx context.Context, key Key, delta int64) error {
	if delta <= 0 {
		return nil
	}
	return l.store.Rollback(ctx, key, delta)
}

// ReserveAll commits every reservation or none: on the first failure all
// reservations already made in the same call are rolled back before the
// error is returned.
func (l *Ledger) ReserveAll(ctx context.Context, reservations []Reservation) error {
	committed := make([]Reservation, 0, len(reservations))
	for _, r := range reservations {
		if err := l.Reserve(ctx, r.Key, r.Qty); err != nil {
			for _, done := range committed {
				_ = l.store.Rollback(ctx, done.Key, done.Qty)
			}
			return err
		}
		committed = append(committed, r)
	}
	return nil
}

// ReleaseAll is the inverse of ReserveAll, best effort across keys.
func (l *Ledger) ReleaseAll(ctx context.Context, reservations []Reservation) error {
	var joined error
	for _, r := range reservations {
		if err := l.Release(ctx, r.Key, r.Qty); err != nil {
			joined = errors.Join(joined, err)
		}
	}
	return joined
}
