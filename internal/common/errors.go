package common

import "errors"

// Stable machine-readable error codes surfaced to API clients.
const (
	CodeValidation            = "VALIDATION"
	CodeNotFound              = "NOT_FOUND"
	CodeInsufficientCapacity  = "INSUFFICIENT_CAPACITY"
	CodeInvalidState          = "INVALID_STATE"
	CodeDiscountInvalid       = "DISCOUNT_INVALID"
	CodeDiscountNotFound      = "DISCOUNT_NOT_FOUND"
	CodeAmountExceedsRemains  = "AMOUNT_EXCEEDS_REMAINING"
	CodePaymentMismatch       = "PAYMENT_AMOUNT_MISMATCH"
	CodeDuplicateConfirmation = "DUPLICATE_CONFIRMATION_CODE"
	CodeInternal              = "INTERNAL"
)

// AppError carries a machine-readable code and HTTP status alongside the
// underlying error.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}
