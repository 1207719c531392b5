package discount

import (
	"errors"
	"time"

	"github.com/noah-isme/backend-tour/internal/money"
)

var (
	// ErrNotFound is returned when the code is unknown.
	ErrNotFound = errors.New("discount code not found")
	// ErrInactive is returned when the code has been deactivated.
	ErrInactive = errors.New("discount code not active")
	// ErrNotYetValid is returned before the code's validity window opens.
	ErrNotYetValid = errors.New("discount code not yet valid")
	// ErrExpired is returned after the code's validity window closes.
	ErrExpired = errors.New("discount code expired")
	// ErrBelowMinimum indicates the subtotal did not meet the code requirement.
	ErrBelowMinimum = errors.New("discount code minimum order amount not met")
	// ErrUsesExhausted indicates the code has exhausted its usage quota.
	ErrUsesExhausted = errors.New("discount code usage limit reached")
)

// Kind discriminates how a code's value is interpreted.
type Kind string

const (
	KindPercentage  Kind = "percentage"
	KindFixedAmount Kind = "fixed_amount"
)

// Code captures the runtime constraints of a discount or access code.
type Code struct {
	Code             string
	Kind             Kind
	Percent          money.Rate  // percentage codes, 0-1 fraction
	AmountCents      money.Cents // fixed-amount codes
	MaxDiscountCents *money.Cents
	MinOrderCents    money.Cents
	IsAccessCode     bool
	IsActive         bool
	ValidFrom        *time.Time
	ValidUntil       *time.Time
	MaxUses          *int32
	UsedCount        int32
}

// Validate ensures the code can be applied at the provided instant and
// subtotal. It is pure and side-effect-free; redemption is committed
// separately at booking creation.
func (c Code) Validate(now time.Time, subtotalCents money.Cents) error {
	if !c.IsActive {
		return ErrInactive
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return ErrNotYetValid
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return ErrExpired
	}
	if subtotalCents < c.MinOrderCents {
		return ErrBelowMinimum
	}
	if c.MaxUses != nil && *c.MaxUses >= 0 && c.UsedCount >= *c.MaxUses {
		return ErrUsesExhausted
	}
	return nil
}

// Amount computes the discount in cents for the given subtotal. Access
// codes may legitimately yield zero. The result never exceeds the subtotal.
func (c Code) Amount(subtotalCents money.Cents) money.Cents {
	if subtotalCents <= 0 {
		return 0
	}
	var discount money.Cents
	switch c.Kind {
	case KindPercentage:
		discount = c.Percent.Apply(subtotalCents)
		if c.MaxDiscountCents != nil && discount > *c.MaxDiscountCents {
			discount = *c.MaxDiscountCents
		}
	case KindFixedAmount:
		discount = c.AmountCents
	default:
		return 0
	}
	return money.Clamp(discount, 0, subtotalCents)
}

// Application is the successful outcome of validating a code against a
// subtotal.
type Application struct {
	Code          string
	DiscountCents money.Cents
	IsAccessCode  bool
}
