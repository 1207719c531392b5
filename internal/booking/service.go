package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-tour/internal/confirmation"
	"github.com/noah-isme/backend-tour/internal/discount"
	"github.com/noah-isme/backend-tour/internal/events"
	"github.com/noah-isme/backend-tour/internal/inventory"
	"github.com/noah-isme/backend-tour/internal/money"
	"github.com/noah-isme/backend-tour/internal/obs"
	"github.com/noah-isme/backend-tour/internal/payment"
	"github.com/noah-isme/backend-tour/internal/pricing"
	"github.com/noah-isme/backend-tour/internal/refund"
)

// Service drives bookings through their lifecycle. The inventory ledger is
// the only shared mutable resource it touches; every other collaborator is
// injected as a synchronous interface so the core stays testable without
// I/O.
type Service struct {
	Ledger    *inventory.Ledger
	Discounts *discount.Service
	Codes     confirmation.Issuer
	Gateway   payment.Gateway
	Store     Store
	Events    *events.Bus
	TaxRate   money.Rate
	Now       func() time.Time

	// locks serialises load-mutate-save cycles per confirmation code so
	// concurrent requests against the same booking cannot interleave.
	locks sync.Map
}

func (s *Service) lockBooking(confirmationCode string) func() {
	v, _ := s.locks.LoadOrStore(confirmationCode, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) configured() error {
	if s == nil || s.Ledger == nil || s.Store == nil {
		return errors.New("booking service not configured")
	}
	return nil
}

// ComputePricing recomputes the authoritative breakdown for a selection.
// Client-submitted totals are never trusted; the UI calls this for live
// preview and the server calls it again at creation time.
func (s *Service) ComputePricing(ctx context.Context, items []LineItem, discountCode string, tipCents money.Cents) (pricing.Breakdown, error) {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return pricing.Breakdown{}, err
		}
	}
	normalized := normalizeItems(items)
	subtotal := pricing.Compute(pricingItems(normalized), 0, money.ZeroRate, 0).Subtotal
	var discountCents money.Cents
	if strings.TrimSpace(discountCode) != "" {
		app, err := s.Discounts.Validate(ctx, discountCode, subtotal)
		if err != nil {
			return pricing.Breakdown{}, err
		}
		discountCents = app.DiscountCents
	}
	return pricing.Compute(pricingItems(normalized), discountCents, s.TaxRate, tipCents), nil
}

// ValidateDiscount evaluates a discount or access code against a subtotal
// without side effects.
func (s *Service) ValidateDiscount(ctx context.Context, code string, subtotalCents money.Cents) (discount.Application, error) {
	return s.Discounts.Validate(ctx, code, subtotalCents)
}

// Create reserves inventory for every item, prices the booking and persists
// it in draft. Reservation is all-or-nothing: a partial failure releases
// everything committed in the same call before the error is returned.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer("booking.Service").Start(ctx, "BookingService.Create")
	defer span.End()

	result := "error"
	defer func() {
		span.SetAttributes(attribute.String("booking.create.result", result))
		if obs.BookingsTotal != nil {
			obs.BookingsTotal.WithLabelValues(result).Inc()
		}
	}()

	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	items := normalizeItems(req.Items)
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}

	subtotal := pricing.Compute(pricingItems(items), 0, money.ZeroRate, 0).Subtotal
	var app discount.Application
	if strings.TrimSpace(req.DiscountCode) != "" {
		var err error
		app, err = s.Discounts.Validate(ctx, req.DiscountCode, subtotal)
		if err != nil {
			return nil, err
		}
	}

	reservations := activeReservations(items)
	if err := s.Ledger.ReserveAll(ctx, reservations); err != nil {
		if errors.Is(err, inventory.ErrCapacityExceeded) {
			result = "capacity_exceeded"
			if obs.CapacityRejectionsTotal != nil {
				obs.CapacityRejectionsTotal.Inc()
			}
		}
		span.RecordError(err)
		return nil, err
	}

	code, err := s.Codes.Issue(ctx)
	if err != nil {
		_ = s.Ledger.ReleaseAll(ctx, reservations)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("booking.confirmation_code", code))

	breakdown := pricing.Compute(pricingItems(items), app.DiscountCents, s.TaxRate, req.TipCents)
	now := s.now()
	b := &Booking{
		ID:               uuid.NewString(),
		ConfirmationCode: code,
		Customer:         req.Customer,
		Items:            items,
		Pricing:          breakdown,
		TaxRate:          s.TaxRate,
		DiscountCode:     app.Code,
		Status:           StatusDraft,
		PaymentStatus:    PaymentPendingPayment,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Store.Save(ctx, b); err != nil {
		_ = s.Ledger.ReleaseAll(ctx, reservations)
		span.RecordError(err)
		return nil, err
	}

	// Redemption commits exactly once per created booking; validation above
	// stayed side-effect-free.
	if app.Code != "" {
		if err := s.Discounts.Redeem(ctx, app.Code); err == nil {
			if obs.DiscountRedemptionsTotal != nil {
				obs.DiscountRedemptionsTotal.Inc()
			}
		}
	}

	s.emit(ctx, events.TopicBookingCreated, code, map[string]any{
		"totalCents": breakdown.Total,
		"itemCount":  len(items),
		"discount":   app.Code,
	})
	result = "success"
	return b, nil
}

// MarkPaid moves a draft booking to confirmed, capturing payment through
// the gateway collaborator. Zero-total bookings become free instead of
// paid.
func (s *Service) MarkPaid(ctx context.Context, confirmationCode string) (*Booking, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	defer s.lockBooking(confirmationCode)()
	b, err := s.Store.Get(ctx, confirmationCode)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusDraft {
		return nil, fmt.Errorf("%w: mark paid from %s", ErrInvalidTransition, b.Status)
	}
	if b.Pricing.Total > 0 {
		if s.Gateway == nil {
			return nil, errors.New("booking: payment gateway not configured")
		}
		conf, err := s.Gateway.Capture(ctx, b.ConfirmationCode, b.Pricing.Total)
		if err != nil {
			b.PaymentStatus = PaymentFailed
			_ = s.Store.Save(ctx, b)
			return nil, fmt.Errorf("booking: capture payment: %w", err)
		}
		if conf.AmountCents != b.Pricing.Total {
			return nil, fmt.Errorf("%w: captured %d, expected %d", ErrPaymentAmountMismatch, conf.AmountCents, b.Pricing.Total)
		}
		b.Payment = &conf
		b.PaymentStatus = PaymentPaid
	} else {
		b.PaymentStatus = PaymentFree
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, b); err != nil {
		return nil, err
	}
	s.emit(ctx, events.TopicBookingPaid, b.ConfirmationCode, map[string]any{
		"totalCents":    b.Pricing.Total,
		"paymentStatus": b.PaymentStatus,
	})
	return b, nil
}

// CheckIn moves a confirmed booking to checked_in. Re-check-in is rejected
// rather than silently accepted.
func (s *Service) CheckIn(ctx context.Context, confirmationCode string) (*Booking, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	defer s.lockBooking(confirmationCode)()
	b, err := s.Store.Get(ctx, confirmationCode)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusConfirmed {
		s.countCheckIn("check_in", "rejected")
		return nil, fmt.Errorf("%w: check in from %s", ErrInvalidTransition, b.Status)
	}
	b.Status = StatusCheckedIn
	b.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, b); err != nil {
		return nil, err
	}
	s.countCheckIn("check_in", "success")
	s.emit(ctx, events.TopicBookingCheckedIn, b.ConfirmationCode, nil)
	return b, nil
}

// RevertCheckIn undoes a check-in. Reverting a booking that is already
// confirmed is a no-op; any other state is rejected.
func (s *Service) RevertCheckIn(ctx context.Context, confirmationCode string) (*Booking, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	defer s.lockBooking(confirmationCode)()
	b, err := s.Store.Get(ctx, confirmationCode)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case StatusCheckedIn:
	case StatusConfirmed:
		return b, nil
	default:
		s.countCheckIn("revert", "rejected")
		return nil, fmt.Errorf("%w: revert check-in from %s", ErrInvalidTransition, b.Status)
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, b); err != nil {
		return nil, err
	}
	s.countCheckIn("revert", "success")
	s.emit(ctx, events.TopicBookingCheckInReverted, b.ConfirmationCode, nil)
	return b, nil
}

// RefundRequest describes one refund application.
type RefundRequest struct {
	Reason      string       `json:"reason" validate:"required"`
	Notes       string       `json:"notes,omitempty"`
	AmountCents *money.Cents `json:"amountCents,omitempty"`
	// ItemIndexes optionally names refunded line items whose inventory is
	// released and whose status flips to refunded.
	ItemIndexes []int `json:"itemIndexes,omitempty"`
}

// Refund applies a partial or full refund against the booking. The booking
// status itself never changes; only the payment axis and the refund ledger
// move. Reason and notes overwrite the booking-level fields on every call;
// the refund ledger entries are the append-only history.
func (s *Service) Refund(ctx context.Context, confirmationCode string, req RefundRequest) (*Booking, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer("booking.Service").Start(ctx, "BookingService.Refund")
	defer span.End()

	result := "error"
	defer func() {
		span.SetAttributes(attribute.String("booking.refund.result", result))
		if obs.RefundsTotal != nil {
			obs.RefundsTotal.WithLabelValues(result).Inc()
		}
	}()

	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: refund reason is required", ErrValidation)
	}
	defer s.lockBooking(confirmationCode)()
	b, err := s.Store.Get(ctx, confirmationCode)
	if err != nil {
		return nil, err
	}
	if !b.Status.refundEligible() {
		result = "rejected"
		return nil, fmt.Errorf("%w: refund from %s", ErrInvalidTransition, b.Status)
	}
	remaining := b.Refunds.Remaining(b.Pricing.Total)
	if remaining == 0 {
		result = "rejected"
		err := fmt.Errorf("%w: booking fully refunded", refund.ErrAmountExceedsRemaining)
		span.RecordError(err)
		return nil, err
	}
	amount := remaining
	if req.AmountCents != nil {
		amount = *req.AmountCents
	}
	for _, idx := range req.ItemIndexes {
		if idx < 0 || idx >= len(b.Items) {
			return nil, fmt.Errorf("%w: item index %d out of range", ErrValidation, idx)
		}
		if b.Items[idx].Status != ItemActive {
			return nil, fmt.Errorf("%w: item %d is not active", ErrValidation, idx)
		}
	}

	entry, err := b.Refunds.Apply(b.Pricing.Total, amount, req.Reason, req.Notes, s.now())
	if err != nil {
		result = "rejected"
		span.RecordError(err)
		return nil, err
	}
	b.RefundedAmountCents = b.Refunds.Refunded()
	b.RefundReason = req.Reason
	b.RefundNotes = req.Notes
	b.PaymentStatus = derivePaymentStatus(b.PaymentStatus, b.Pricing.Total, b.RefundedAmountCents)

	for _, idx := range req.ItemIndexes {
		item := &b.Items[idx]
		item.Status = ItemRefunded
		if item.Quantity > 0 {
			_ = s.Ledger.Release(ctx, item.InventoryKey(), int64(item.Quantity))
		}
	}
	b.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, b); err != nil {
		return nil, err
	}

	if obs.RefundAmountCents != nil {
		obs.RefundAmountCents.Add(float64(entry.AmountCents))
	}
	s.emit(ctx, events.TopicBookingRefunded, b.ConfirmationCode, map[string]any{
		"amountCents":    entry.AmountCents,
		"remainingCents": b.Refunds.Remaining(b.Pricing.Total),
		"reason":         req.Reason,
	})
	result = "success"
	return b, nil
}

// Cancel releases every active reservation and terminates the booking.
// Only drafts and unpaid confirmed bookings may be cancelled.
func (s *Service) Cancel(ctx context.Context, confirmationCode string) (*Booking, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	defer s.lockBooking(confirmationCode)()
	b, err := s.Store.Get(ctx, confirmationCode)
	if err != nil {
		return nil, err
	}
	allowed := b.Status == StatusDraft ||
		(b.Status == StatusConfirmed && b.PaymentStatus == PaymentPendingPayment)
	if !allowed {
		return nil, fmt.Errorf("%w: cancel from %s/%s", ErrInvalidTransition, b.Status, b.PaymentStatus)
	}
	if err := s.Ledger.ReleaseAll(ctx, activeReservations(b.Items)); err != nil {
		return nil, err
	}
	b.Status = StatusCancelled
	b.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, b); err != nil {
		return nil, err
	}
	s.emit(ctx, events.TopicBookingCancelled, b.ConfirmationCode, nil)
	return b, nil
}

// Get loads a booking by confirmation code.
func (s *Service) Get(ctx context.Context, confirmationCode string) (*Booking, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, confirmationCode)
}

func (s *Service) emit(ctx context.Context, topic, code string, payload any) {
	if s.Events == nil {
		return
	}
	_, _ = s.Events.Emit(ctx, topic, code, payload)
}

func (s *Service) countCheckIn(action, result string) {
	if obs.CheckInsTotal != nil {
		obs.CheckInsTotal.WithLabelValues(action, result).Inc()
	}
}

// normalizeItems defaults the status of incoming items to active.
func normalizeItems(items []LineItem) []LineItem {
	out := append([]LineItem(nil), items...)
	for i := range out {
		if out[i].Status == "" {
			out[i].Status = ItemActive
		}
	}
	return out
}
