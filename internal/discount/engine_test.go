package discount

import (
	"errors"
	"testing"
	"time"

	"github.com/noah-isme/backend-tour/internal/money"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func activeCode() Code {
	from := testNow.Add(-time.Hour)
	until := testNow.Add(time.Hour)
	return Code{
		Code:       "SUMMER10",
		Kind:       KindPercentage,
		Percent:    money.MustRate("0.1"),
		IsActive:   true,
		ValidFrom:  &from,
		ValidUntil: &until,
	}
}

func TestValidateWindows(t *testing.T) {
	code := activeCode()
	if err := code.Validate(testNow, 10_000); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := code.Validate(testNow.Add(-2*time.Hour), 10_000); !errors.Is(err, ErrNotYetValid) {
		t.Fatalf("expected ErrNotYetValid, got %v", err)
	}
	if err := code.Validate(testNow.Add(2*time.Hour), 10_000); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestValidateInactive(t *testing.T) {
	code := activeCode()
	code.IsActive = false
	if err := code.Validate(testNow, 10_000); !errors.Is(err, ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}
}

func TestValidateBelowMinimum(t *testing.T) {
	code := activeCode()
	code.MinOrderCents = 5_000
	if err := code.Validate(testNow, 4_999); !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}
	if err := code.Validate(testNow, 5_000); err != nil {
		t.Fatalf("subtotal at minimum should pass, got %v", err)
	}
}

func TestValidateUsesExhausted(t *testing.T) {
	code := activeCode()
	limit := int32(3)
	code.MaxUses = &limit
	code.UsedCount = 3
	if err := code.Validate(testNow, 10_000); !errors.Is(err, ErrUsesExhausted) {
		t.Fatalf("expected ErrUsesExhausted, got %v", err)
	}
}

func TestPercentageClampedToMax(t *testing.T) {
	code := activeCode()
	maxDiscount := money.Cents(500)
	code.MaxDiscountCents = &maxDiscount
	if got := code.Amount(10_000); got != 500 {
		t.Fatalf("discount = %d, want 500 (clamped from 1000)", got)
	}
}

func TestFixedAmountNeverExceedsSubtotal(t *testing.T) {
	code := Code{Code: "FLAT", Kind: KindFixedAmount, AmountCents: 2_000, IsActive: true}
	if got := code.Amount(1_500); got != 1_500 {
		t.Fatalf("discount = %d, want 1500", got)
	}
	if got := code.Amount(5_000); got != 2_000 {
		t.Fatalf("discount = %d, want 2000", got)
	}
}

func TestAccessCodeWithZeroValue(t *testing.T) {
	code := Code{Code: "VIP", Kind: KindPercentage, IsAccessCode: true, IsActive: true}
	if err := code.Validate(testNow, 10_000); err != nil {
		t.Fatalf("access code must not be rejected, got %v", err)
	}
	if got := code.Amount(10_000); got != 0 {
		t.Fatalf("access code discount = %d, want 0", got)
	}
}
