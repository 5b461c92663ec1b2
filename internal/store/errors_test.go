package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "ErrCardNotFound", err: ErrCardNotFound, expected: true},
		{
			name:     "wrapped in CardError",
			err:      NewCardError("get", "lookup failed", ErrCardNotFound),
			expected: true,
		},
		{name: "duplicate is not not-found", err: ErrCardCodeExists, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDuplicateError(ErrCardCodeExists))
	assert.True(t, IsDuplicateError(fmt.Errorf("insert: %w", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrCardNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestCardError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewCardError("update", "failed to write schedule", cause)

	assert.Equal(t,
		"card store update: failed to write schedule: connection reset",
		err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewCardError("delete", "no rows", nil)
	assert.Equal(t, "card store delete: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())

	var cardErr *CardError
	assert.True(t, errors.As(fmt.Errorf("service: %w", err), &cardErr))
	assert.Equal(t, "update", cardErr.Op)
}
