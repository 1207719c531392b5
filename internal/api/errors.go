package api

import (
	"errors"
	"net/http"

	"github.com/noah-isme/backend-tour/internal/booking"
	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/confirmation"
	"github.com/noah-isme/backend-tour/internal/discount"
	"github.com/noah-isme/backend-tour/internal/inventory"
	"github.com/noah-isme/backend-tour/internal/refund"
)

// writeError maps domain sentinel errors onto the canonical error payload.
func writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	switch {
	case errors.Is(err, booking.ErrValidation), errors.Is(err, inventory.ErrInvalidQuantity):
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, err.Error(), nil)
	case errors.Is(err, booking.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "booking not found", nil)
	case errors.Is(err, inventory.ErrCapacityExceeded):
		common.JSONError(w, http.StatusConflict, common.CodeInsufficientCapacity, "insufficient capacity for requested items", nil)
	case errors.Is(err, booking.ErrInvalidTransition):
		common.JSONError(w, http.StatusConflict, common.CodeInvalidState, err.Error(), nil)
	case errors.Is(err, discount.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeDiscountNotFound, "discount code not found", nil)
	case errors.Is(err, discount.ErrInactive),
		errors.Is(err, discount.ErrNotYetValid),
		errors.Is(err, discount.ErrExpired),
		errors.Is(err, discount.ErrBelowMinimum),
		errors.Is(err, discount.ErrUsesExhausted):
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeDiscountInvalid, err.Error(), nil)
	case errors.Is(err, refund.ErrAmountExceedsRemaining), errors.Is(err, refund.ErrInvalidAmount):
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeAmountExceedsRemains, err.Error(), nil)
	case errors.Is(err, booking.ErrPaymentAmountMismatch):
		common.JSONError(w, http.StatusConflict, common.CodePaymentMismatch, err.Error(), nil)
	case errors.Is(err, confirmation.ErrDuplicate):
		common.JSONError(w, http.StatusInternalServerError, common.CodeDuplicateConfirmation, "could not allocate a unique confirmation code", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "internal error", nil)
	}
}
