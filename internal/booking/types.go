package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/backend-tour/internal/inventory"
	"github.com/noah-isme/backend-tour/internal/money"
	"github.com/noah-isme/backend-tour/internal/payment"
	"github.com/noah-isme/backend-tour/internal/pricing"
	"github.com/noah-isme/backend-tour/internal/refund"
)

var (
	// ErrInvalidTransition is returned when a state machine guard rejects
	// the requested transition.
	ErrInvalidTransition = errors.New("booking: invalid state transition")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("booking: validation failed")
	// ErrNotFound is returned when no booking matches the confirmation code.
	ErrNotFound = errors.New("booking not found")
	// ErrPaymentAmountMismatch is returned when the gateway confirmation does
	// not match the booking total.
	ErrPaymentAmountMismatch = errors.New("booking: payment amount mismatch")
)

// Status is the booking lifecycle axis. It is independent of PaymentStatus.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusCheckedIn Status = "checked_in"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// statusTransitions defines the booking_status state machine. Refunds never
// mutate booking_status; only the payment axis and the refund ledger change.
var statusTransitions = map[Status][]Status{
	StatusDraft:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCompleted, StatusCancelled},
	StatusCheckedIn: {StatusConfirmed, StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// IsValid reports whether the status is a recognised booking status.
func (s Status) IsValid() bool {
	_, exists := statusTransitions[s]
	return exists
}

// CanTransitionTo reports whether the transition to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// refundEligible reports whether a refund may be applied in this status.
func (s Status) refundEligible() bool {
	switch s {
	case StatusConfirmed, StatusCheckedIn, StatusCompleted:
		return true
	}
	return false
}

// PaymentStatus is the payment axis, independent of the booking lifecycle.
type PaymentStatus string

const (
	PaymentPendingPayment    PaymentStatus = "pending_payment"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFree              PaymentStatus = "free"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// derivePaymentStatus applies the refund invariants: refunded when the
// ledger covers the full total, partially_refunded when it covers part.
func derivePaymentStatus(current PaymentStatus, totalCents, refundedCents money.Cents) PaymentStatus {
	if totalCents > 0 && refundedCents >= totalCents {
		return PaymentRefunded
	}
	if refundedCents > 0 && refundedCents < totalCents {
		return PaymentPartiallyRefunded
	}
	return current
}

// ItemKind discriminates the two LineItem variants. A ticket item and a
// merchandise item are mutually exclusive shapes of the same entity.
type ItemKind string

const (
	ItemKindTicket      ItemKind = "ticket"
	ItemKindMerchandise ItemKind = "merchandise"
)

// ItemStatus tracks one line item within the booking.
type ItemStatus string

const (
	ItemActive    ItemStatus = "active"
	ItemRefunded  ItemStatus = "refunded"
	ItemFulfilled ItemStatus = "fulfilled"
)

// LineItem is one reservable unit within a booking.
type LineItem struct {
	TripID            string      `json:"tripId" validate:"required"`
	BoatID            string      `json:"boatId" validate:"required"`
	Kind              ItemKind    `json:"kind" validate:"required,oneof=ticket merchandise"`
	ItemType          string      `json:"itemType" validate:"required"`
	Quantity          int         `json:"quantity" validate:"gte=0"`
	PricePerUnitCents money.Cents `json:"pricePerUnitCents" validate:"gte=0"`
	MerchandiseID     string      `json:"merchandiseId,omitempty"`
	VariantOption     string      `json:"variantOption,omitempty"`
	Status            ItemStatus  `json:"status"`
}

// InventoryKey maps the item to its capacity pool.
func (li LineItem) InventoryKey() inventory.Key {
	if li.Kind == ItemKindMerchandise {
		return inventory.MerchandiseKey(li.MerchandiseID, li.VariantOption)
	}
	return inventory.TicketKey(li.TripID, li.BoatID, li.ItemType)
}

// Validate enforces the tagged-union shape of the item.
func (li LineItem) Validate() error {
	if li.Quantity < 0 {
		return fmt.Errorf("%w: negative quantity", ErrValidation)
	}
	if li.PricePerUnitCents < 0 {
		return fmt.Errorf("%w: negative unit price", ErrValidation)
	}
	switch li.Kind {
	case ItemKindTicket:
		if li.MerchandiseID != "" || li.VariantOption != "" {
			return fmt.Errorf("%w: ticket item carries merchandise fields", ErrValidation)
		}
		if li.TripID == "" || li.BoatID == "" || li.ItemType == "" {
			return fmt.Errorf("%w: ticket item missing trip, boat or ticket type", ErrValidation)
		}
	case ItemKindMerchandise:
		if li.MerchandiseID == "" {
			return fmt.Errorf("%w: merchandise item missing merchandise id", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown item kind %q", ErrValidation, li.Kind)
	}
	return nil
}

// Customer identifies who the booking is for.
type Customer struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty"`
}

// Booking is the aggregate root. ConfirmationCode is the human-shareable
// identifier, distinct from the internal ID.
type Booking struct {
	ID                  string                `json:"id"`
	ConfirmationCode    string                `json:"confirmationCode"`
	Customer            Customer              `json:"customer"`
	Items               []LineItem            `json:"items"`
	Pricing             pricing.Breakdown     `json:"pricing"`
	TaxRate             money.Rate            `json:"-"`
	DiscountCode        string                `json:"discountCode,omitempty"`
	Status              Status                `json:"bookingStatus"`
	PaymentStatus       PaymentStatus         `json:"paymentStatus"`
	RefundedAmountCents money.Cents           `json:"refundedAmountCents"`
	RefundReason        string                `json:"refundReason,omitempty"`
	RefundNotes         string                `json:"refundNotes,omitempty"`
	Refunds             refund.Ledger         `json:"-"`
	Payment             *payment.Confirmation `json:"-"`
	CreatedAt           time.Time             `json:"createdAt"`
	UpdatedAt           time.Time             `json:"updatedAt"`
}

// activeReservations aggregates reservation quantities per pool across the
// booking's active items.
func activeReservations(items []LineItem) []inventory.Reservation {
	index := make(map[inventory.Key]int)
	var out []inventory.Reservation
	for _, item := range items {
		if item.Status != ItemActive || item.Quantity <= 0 {
			continue
		}
		key := item.InventoryKey()
		if pos, ok := index[key]; ok {
			out[pos].Qty += int64(item.Quantity)
			continue
		}
		index[key] = len(out)
		out = append(out, inventory.Reservation{Key: key, Qty: int64(item.Quantity)})
	}
	return out
}

// pricingItems maps active line items into the pricing calculator's shape.
func pricingItems(items []LineItem) []pricing.Item {
	out := make([]pricing.Item, 0, len(items))
	for _, item := range items {
		if item.Status != ItemActive {
			continue
		}
		out = append(out, pricing.Item{Qty: item.Quantity, UnitPrice: item.PricePerUnitCents})
	}
	return out
}
