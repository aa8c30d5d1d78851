package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrUserAlreadyExists    = errors.New("user_already_exists")
	ErrUserNotFound         = errors.New("user_not_found")
	ErrPropertyNotFound     = errors.New("property_not_found")
	ErrOrderNotFound        = errors.New("order_not_found")
	ErrOrderNotCancellable  = errors.New("order_not_cancellable")
	ErrInsufficientFunds    = errors.New("insufficient_funds")
	ErrInsufficientPosition = errors.New("insufficient_position")
	ErrWebhookNotFound      = errors.New("webhook_not_found")
)

// ValidationError represents a malformed order or request field. It covers
// every rejection the exchange classifies as an invalid order rather than
// a missing entity or a balance problem.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
