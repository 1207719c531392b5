package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-tour/internal/booking"
	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/events"
	"github.com/noah-isme/backend-tour/internal/money"
)

// AuditLog reads back the recorded event history for one booking.
type AuditLog interface {
	ByAggregate(aggregateID string) []events.Event
}

// Handler exposes the booking endpoints.
type Handler struct {
	Svc   *booking.Service
	Audit AuditLog
}

type computePricingRequest struct {
	Items        []booking.LineItem `json:"items"`
	DiscountCode string             `json:"discountCode"`
	TipCents     money.Cents        `json:"tipCents"`
}

// ComputePricing returns the authoritative price breakdown for a selection
// without reserving anything.
func (h *Handler) ComputePricing(w http.ResponseWriter, r *http.Request) {
	var payload computePricingRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, err.Error(), nil)
		return
	}
	breakdown, err := h.Svc.ComputePricing(r.Context(), payload.Items, payload.DiscountCode, payload.TipCents)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": breakdown})
}

type validateDiscountRequest struct {
	Code          string      `json:"code"`
	SubtotalCents money.Cents `json:"subtotalCents"`
}

// ValidateDiscount evaluates a code against a subtotal. It never consumes
// a use.
func (h *Handler) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	var payload validateDiscountRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, err.Error(), nil)
		return
	}
	app, err := h.Svc.ValidateDiscount(r.Context(), payload.Code, payload.SubtotalCents)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"code":          app.Code,
		"discountCents": app.DiscountCents,
		"isAccessCode":  app.IsAccessCode,
	}})
}

// CreateBooking reserves inventory and persists a draft booking.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var payload booking.CreateRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, err.Error(), nil)
		return
	}
	b, err := h.Svc.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": b})
}

// GetBooking loads a booking by confirmation code.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	code, ok := confirmationCode(w, r)
	if !ok {
		return
	}
	b, err := h.Svc.Get(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": b})
}

// Pay confirms a draft booking, capturing payment when the total is
// positive.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	code, ok := confirmationCode(w, r)
	if !ok {
		return
	}
	b, err := h.Svc.MarkPaid(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": b})
}

// CheckIn marks a confirmed booking as checked in.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	code, ok := confirmationCode(w, r)
	if !ok {
		return
	}
	b, err := h.Svc.CheckIn(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": b})
}

// RevertCheckIn undoes a check-in.
func (h *Handler) RevertCheckIn(w http.ResponseWriter, r *http.Request) {
	code, ok := confirmationCode(w, r)
	if !ok {
		return
	}
	b, err := h.Svc.RevertCheckIn(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": b})
}

// Refund applies a partial or full refund to a booking.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	code, ok := confirmationCode(w, r)
	if !ok {
		return
	}
	var payload booking.RefundRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, err.Error(), nil)
		return
	}
	b, err := h.Svc.Refund(r.Context(), code, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": b})
}

// Cancel terminates a draft or unpaid booking and releases its inventory.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	code, ok := confirmationCode(w, r)
	if !ok {
		return
	}
	b, err := h.Svc.Cancel(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": b})
}

// Events returns the recorded event history for a booking, oldest first.
// This is the audit trail behind the latest-wins refund reason field.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	code, ok := confirmationCode(w, r)
	if !ok {
		return
	}
	if h.Audit == nil {
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "event history not available", nil)
		return
	}
	if _, err := h.Svc.Get(r.Context(), code); err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.Audit.ByAggregate(code)})
}

func confirmationCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "confirmation code is required", nil)
		return "", false
	}
	return strings.ToUpper(code), true
}
