package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// Schedule is the review state written after a successful review.
type Schedule struct {
	Interval int
	Counter  int
	DueAt    time.Time
}

// CardStore defines the interface for card persistence.
type CardStore interface {
	// Create inserts a new card.
	// Returns ErrDuplicate if a card with the same code exists.
	Create(ctx context.Context, card *domain.Card) error

	// GetByCode retrieves a card by its code.
	// Returns ErrCardNotFound if the card does not exist.
	GetByCode(ctx context.Context, code string) (*domain.Card, error)

	// GetByCodeForUpdate is GetByCode that also locks the row until the
	// surrounding transaction ends, on backends that support row locks.
	GetByCodeForUpdate(ctx context.Context, code string) (*domain.Card, error)

	// GetDue returns at most limit cards whose due date is unset or not after
	// now, shortest interval first. An empty result is not an error.
	GetDue(ctx context.Context, now time.Time, limit int) ([]*domain.Card, error)

	// UpdateSchedule writes a new interval, counter and due date for a card.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateSchedule(ctx context.Context, code string, schedule Schedule) error

	// List returns every card ordered by code.
	List(ctx context.Context) ([]*domain.Card, error)

	// Search returns cards whose front or back contains query, ignoring case.
	Search(ctx context.Context, query string) ([]*domain.Card, error)

	// Delete removes a card.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, code string) error

	// WithTx returns a CardStore bound to the given transaction.
	WithTx(tx *sql.Tx) CardStore
}
