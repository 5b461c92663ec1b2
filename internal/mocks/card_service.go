package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/service"
)

// RecordSuccessCall captures the arguments of one RecordSuccess call.
type RecordSuccessCall struct {
	Code     string
	Interval int
	Counter  int
}

// MockCardService implements service.CardService for testing.
// It is safe for use from timer callbacks.
type MockCardService struct {
	GetDueCardsFn   func(ctx context.Context, limit int) ([]*domain.Card, error)
	RecordSuccessFn func(ctx context.Context, code string, interval, counter int) (*domain.Card, error)
	FetchFn         func(ctx context.Context, code string) (*domain.Card, error)
	AddCardFn       func(ctx context.Context, input service.NewCardInput) (*domain.Card, error)
	ImportCardsFn   func(ctx context.Context, inputs []service.NewCardInput) ([]*domain.Card, error)
	ListCardsFn     func(ctx context.Context) ([]*domain.Card, error)
	SearchCardsFn   func(ctx context.Context, query string) ([]*domain.Card, error)
	DeleteCardFn    func(ctx context.Context, code string) error

	// Default return values
	Card         *domain.Card
	Cards        []*domain.Card
	DefaultError error

	mu                 sync.Mutex
	recordSuccessCalls []RecordSuccessCall
	dueLimits          []int
}

var _ service.CardService = (*MockCardService)(nil)

// GetDueCards implements the CardService.GetDueCards method
func (m *MockCardService) GetDueCards(ctx context.Context, limit int) ([]*domain.Card, error) {
	m.mu.Lock()
	m.dueLimits = append(m.dueLimits, limit)
	m.mu.Unlock()

	if m.GetDueCardsFn != nil {
		return m.GetDueCardsFn(ctx, limit)
	}
	return m.Cards, m.DefaultError
}

// RecordSuccess implements the CardService.RecordSuccess method
func (m *MockCardService) RecordSuccess(ctx context.Context, code string, interval, counter int) (*domain.Card, error) {
	m.mu.Lock()
	m.recordSuccessCalls = append(m.recordSuccessCalls, RecordSuccessCall{Code: code, Interval: interval, Counter: counter})
	m.mu.Unlock()

	if m.RecordSuccessFn != nil {
		return m.RecordSuccessFn(ctx, code, interval, counter)
	}
	return m.Card, m.DefaultError
}

// Fetch implements the CardService.Fetch method
func (m *MockCardService) Fetch(ctx context.Context, code string) (*domain.Card, error) {
	if m.FetchFn != nil {
		return m.FetchFn(ctx, code)
	}
	return m.Card, m.DefaultError
}

// AddCard implements the CardService.AddCard method
func (m *MockCardService) AddCard(ctx context.Context, input service.NewCardInput) (*domain.Card, error) {
	if m.AddCardFn != nil {
		return m.AddCardFn(ctx, input)
	}
	return m.Card, m.DefaultError
}

// ImportCards implements the CardService.ImportCards method
func (m *MockCardService) ImportCards(ctx context.Context, inputs []service.NewCardInput) ([]*domain.Card, error) {
	if m.ImportCardsFn != nil {
		return m.ImportCardsFn(ctx, inputs)
	}
	return m.Cards, m.DefaultError
}

// ListCards implements the CardService.ListCards method
func (m *MockCardService) ListCards(ctx context.Context) ([]*domain.Card, error) {
	if m.ListCardsFn != nil {
		return m.ListCardsFn(ctx)
	}
	return m.Cards, m.DefaultError
}

// SearchCards implements the CardService.SearchCards method
func (m *MockCardService) SearchCards(ctx context.Context, query string) ([]*domain.Card, error) {
	if m.SearchCardsFn != nil {
		return m.SearchCardsFn(ctx, query)
	}
	return m.Cards, m.DefaultError
}

// DeleteCard implements the CardService.DeleteCard method
func (m *MockCardService) DeleteCard(ctx context.Context, code string) error {
	if m.DeleteCardFn != nil {
		return m.DeleteCardFn(ctx, code)
	}
	return m.DefaultError
}

// RecordSuccessCalls returns a copy of the RecordSuccess calls made so far.
func (m *MockCardService) RecordSuccessCalls() []RecordSuccessCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordSuccessCall(nil), m.recordSuccessCalls...)
}

// DueLimits returns the limits passed to GetDueCards so far.
func (m *MockCardService) DueLimits() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.dueLimits...)
}
