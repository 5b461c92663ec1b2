package store

import (
	"errors"
	"fmt"
)

// Common store errors
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate indicates an entity with the same unique key already exists.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity indicates the entity violates a storage constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed indicates a write did not complete.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed indicates a delete did not complete.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrTransactionFailed indicates a transaction could not begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrCardNotFound indicates the card code does not exist.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)

	// ErrCardCodeExists indicates a generated card code collided with an existing one.
	ErrCardCodeExists = fmt.Errorf("%w: card code", ErrDuplicate)
)

// IsNotFoundError reports whether err is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is or wraps ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// CardError describes a failed card store operation. Op is a short verb such
// as "get_due" or "update"; Err carries the store sentinel, if any.
type CardError struct {
	Op      string
	Message string
	Err     error
}

func (e *CardError) Error() string {
	msg := "card store " + e.Op + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CardError) Unwrap() error {
	return e.Err
}

// NewCardError creates a CardError.
func NewCardError(op, message string, err error) *CardError {
	return &CardError{Op: op, Message: message, Err: err}
}
