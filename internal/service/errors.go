package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scry-review/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to HTTP status codes.
var (
	// ErrCardNotFound indicates the card code does not exist.
	// It is the store sentinel, so errors.Is matches at either layer.
	// API layer should map this to HTTP 404 Not Found.
	ErrCardNotFound = store.ErrCardNotFound

	// ErrInvalidCard indicates the card content failed validation.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidCard = errors.New("invalid card")

	// ErrCodeSpaceExhausted indicates no unused card code was found after
	// several attempts.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique card code")
)

// CardServiceError is a custom error type for card service errors.
type CardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CardServiceError.
func (e *CardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("card service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CardServiceError) Unwrap() error {
	return e.Err
}

// NewCardServiceError creates a new CardServiceError.
func NewCardServiceError(operation, message string, err error) *CardServiceError {
	return &CardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
