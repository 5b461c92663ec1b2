package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/store"
)

// MockCardStore implements store.CardStore for testing.
// WithTx returns the same mock so transactional code paths hit the same functions.
type MockCardStore struct {
	CreateFn             func(ctx context.Context, card *domain.Card) error
	GetByCodeFn          func(ctx context.Context, code string) (*domain.Card, error)
	GetByCodeForUpdateFn func(ctx context.Context, code string) (*domain.Card, error)
	GetDueFn             func(ctx context.Context, now time.Time, limit int) ([]*domain.Card, error)
	UpdateScheduleFn     func(ctx context.Context, code string, schedule store.Schedule) error
	ListFn               func(ctx context.Context) ([]*domain.Card, error)
	SearchFn             func(ctx context.Context, query string) ([]*domain.Card, error)
	DeleteFn             func(ctx context.Context, code string) error

	// Schedules records every UpdateSchedule call in order.
	Schedules []store.Schedule

	// Default values used when functions aren't explicitly defined
	Card  *domain.Card
	Cards []*domain.Card
	Err   error
}

var _ store.CardStore = (*MockCardStore)(nil)

// Create implements store.CardStore
func (m *MockCardStore) Create(ctx context.Context, card *domain.Card) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, card)
	}
	return m.Err
}

// GetByCode implements store.CardStore
func (m *MockCardStore) GetByCode(ctx context.Context, code string) (*domain.Card, error) {
	if m.GetByCodeFn != nil {
		return m.GetByCodeFn(ctx, code)
	}
	return m.Card, m.Err
}

// GetByCodeForUpdate implements store.CardStore
func (m *MockCardStore) GetByCodeForUpdate(ctx context.Context, code string) (*domain.Card, error) {
	if m.GetByCodeForUpdateFn != nil {
		return m.GetByCodeForUpdateFn(ctx, code)
	}
	return m.GetByCode(ctx, code)
}

// GetDue implements store.CardStore
func (m *MockCardStore) GetDue(ctx context.Context, now time.Time, limit int) ([]*domain.Card, error) {
	if m.GetDueFn != nil {
		return m.GetDueFn(ctx, now, limit)
	}
	return m.Cards, m.Err
}

// UpdateSchedule implements store.CardStore
func (m *MockCardStore) UpdateSchedule(ctx context.Context, code string, schedule store.Schedule) error {
	m.Schedules = append(m.Schedules, schedule)
	if m.UpdateScheduleFn != nil {
		return m.UpdateScheduleFn(ctx, code, schedule)
	}
	return m.Err
}

// List implements store.CardStore
func (m *MockCardStore) List(ctx context.Context) ([]*domain.Card, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return m.Cards, m.Err
}

// Search implements store.CardStore
func (m *MockCardStore) Search(ctx context.Context, query string) ([]*domain.Card, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query)
	}
	return m.Cards, m.Err
}

// Delete implements store.CardStore
func (m *MockCardStore) Delete(ctx context.Context, code string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, code)
	}
	return m.Err
}

// WithTx implements store.CardStore
func (m *MockCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return m
}
