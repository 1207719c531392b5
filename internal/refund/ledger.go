package refund

import (
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/backend-tour/internal/money"
)

var (
	// ErrAmountExceedsRemaining is returned when a refund would push the
	// refunded total past the booking total.
	ErrAmountExceedsRemaining = errors.New("refund amount exceeds remaining balance")
	// ErrInvalidAmount is returned for non-positive refund amounts.
	ErrInvalidAmount = errors.New("refund amount must be positive")
)

// Entry is one immutable refund record. Entries are append-only; the
// refunded total is always the sum of all entries and never decremented.
type Entry struct {
	AmountCents money.Cents `json:"amountCents"`
	Reason      string      `json:"reason"`
	Notes       string      `json:"notes,omitempty"`
	At          time.Time   `json:"at"`
}

// Ledger accumulates partial refunds against a single booking and enforces
// the non-exceedance invariant.
type Ledger struct {
	entries []Entry
}

// Apply appends a refund entry after validating it against the booking
// total. It fails without side effects when the amount would exceed the
// remaining balance.
func (l *Ledger) Apply(totalCents, amountCents money.Cents, reason, notes string, at time.Time) (Entry, error) {
	if amountCents <= 0 {
		return Entry{}, fmt.Errorf("%w: got %d", ErrInvalidAmount, amountCents)
	}
	remaining := l.Remaining(totalCents)
	if amountCents > remaining {
		return Entry{}, fmt.Errorf("%w: requested %d, remaining %d", ErrAmountExceedsRemaining, amountCents, remaining)
	}
	entry := Entry{AmountCents: amountCents, Reason: reason, Notes: notes, At: at}
	l.entries = append(l.entries, entry)
	return entry, nil
}

// Refunded returns the sum of all applied entries.
func (l *Ledger) Refunded() money.Cents {
	var total money.Cents
	for _, e := range l.entries {
		total += e.AmountCents
	}
	return total
}

// Remaining returns the refundable balance against the booking total.
func (l *Ledger) Remaining(totalCents money.Cents) money.Cents {
	return money.NonNegative(totalCents - l.Refunded())
}

// Entries returns a copy of the applied entries, oldest first. This is the
// audit trail for display; the booking-level reason/notes fields only carry
// the latest call.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
