package refund

import (
	"errors"
	"testing"
	"time"
)

var at = time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

func TestPartialThenFullRefund(t *testing.T) {
	var ledger Ledger
	const total = 10_000

	if _, err := ledger.Apply(total, 4_000, "weather", "", at); err != nil {
		t.Fatalf("first refund: %v", err)
	}
	if got := ledger.Remaining(total); got != 6_000 {
		t.Fatalf("remaining = %d, want 6000", got)
	}

	if _, err := ledger.Apply(total, 6_000, "weather", "second leg", at.Add(time.Hour)); err != nil {
		t.Fatalf("second refund: %v", err)
	}
	if got := ledger.Refunded(); got != total {
		t.Fatalf("refunded = %d, want %d", got, total)
	}

	_, err := ledger.Apply(total, 1, "oops", "", at.Add(2*time.Hour))
	if !errors.Is(err, ErrAmountExceedsRemaining) {
		t.Fatalf("expected ErrAmountExceedsRemaining, got %v", err)
	}
	if got := len(ledger.Entries()); got != 2 {
		t.Fatalf("failed apply must not append, entries = %d", got)
	}
}

func TestApplyRejectsNonPositive(t *testing.T) {
	var ledger Ledger
	for _, amount := range []int64{0, -500} {
		if _, err := ledger.Apply(10_000, amount, "r", "", at); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestEntriesAreCopies(t *testing.T) {
	var ledger Ledger
	if _, err := ledger.Apply(1_000, 500, "first", "", at); err != nil {
		t.Fatalf("apply: %v", err)
	}
	entries := ledger.Entries()
	entries[0].AmountCents = 999_999
	if got := ledger.Refunded(); got != 500 {
		t.Fatalf("ledger mutated through Entries copy, refunded = %d", got)
	}
}

func TestNeverExceedsTotalAcrossSequences(t *testing.T) {
	var ledger Ledger
	const total = 7_500
	amounts := []int64{2_000, 2_000, 2_000, 2_000, 2_000}
	for _, amount := range amounts {
		_, _ = ledger.Apply(total, amount, "seq", "", at)
	}
	if ledger.Refunded() > total {
		t.Fatalf("refunded %d exceeds total %d", ledger.Refunded(), total)
	}
}
