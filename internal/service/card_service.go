package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/srs"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
)

// maxCodeAttempts bounds the retries when a generated card code is taken.
const maxCodeAttempts = 8

// NewCardInput is the content of a card to be added to the deck.
// A Counter of zero or less starts the card at the policy threshold.
type NewCardInput struct {
	Front   string `json:"front" yaml:"front" validate:"required"`
	Back    string `json:"back" yaml:"back" validate:"required"`
	Counter int    `json:"counter,omitempty" yaml:"counter,omitempty" validate:"gte=0"`
}

// CardService provides card-related operations
type CardService interface {
	// GetDueCards returns at most limit cards due now, shortest interval first.
	// A limit of zero or less yields an empty slice.
	GetDueCards(ctx context.Context, limit int) ([]*domain.Card, error)

	// RecordSuccess applies one qualifying success to the card identified by
	// code, starting from the caller's interval and counter, and returns the
	// stored result. The read, policy and write happen in one transaction.
	RecordSuccess(ctx context.Context, code string, interval, counter int) (*domain.Card, error)

	// Fetch retrieves a card by its code.
	Fetch(ctx context.Context, code string) (*domain.Card, error)

	// AddCard creates a card at the first ladder step, due today.
	AddCard(ctx context.Context, input NewCardInput) (*domain.Card, error)

	// ImportCards adds every input card in a single transaction.
	ImportCards(ctx context.Context, inputs []NewCardInput) ([]*domain.Card, error)

	// ListCards returns the whole deck ordered by code.
	ListCards(ctx context.Context) ([]*domain.Card, error)

	// SearchCards returns cards whose front or back contains query, ignoring case.
	SearchCards(ctx context.Context, query string) ([]*domain.Card, error)

	// DeleteCard removes a card.
	DeleteCard(ctx context.Context, code string) error
}

// Option configures a card service.
type Option func(*cardServiceImpl)

// WithClock overrides the time source used for due-date calculations.
func WithClock(now func() time.Time) Option {
	return func(s *cardServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	db         *sql.DB
	cardStore  store.CardStore
	srsService srs.Service
	logger     *slog.Logger
	now        func() time.Time
}

// NewCardService creates a new CardService.
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	db *sql.DB,
	cardStore store.CardStore,
	srsService srs.Service,
	logger *slog.Logger,
	opts ...Option,
) (CardService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if cardStore == nil {
		return nil, domain.NewValidationError("cardStore", "cannot be nil", domain.ErrValidation)
	}
	if srsService == nil {
		return nil, domain.NewValidationError("srsService", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &cardServiceImpl{
		db:         db,
		cardStore:  cardStore,
		srsService: srsService,
		logger:     logger.With(slog.String("component", "card_service")),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// GetDueCards implements CardService.GetDueCards
func (s *cardServiceImpl) GetDueCards(ctx context.Context, limit int) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return []*domain.Card{}, nil
	}

	cards, err := s.cardStore.GetDue(ctx, s.now(), limit)
	if err != nil {
		log.Error("failed to load due cards",
			slog.Int("limit", limit),
			slog.String("error", err.Error()))
		return nil, NewCardServiceError("get_due_cards", "failed to load due cards", err)
	}

	log.Debug("loaded due cards",
		slog.Int("limit", limit),
		slog.Int("count", len(cards)))
	return cards, nil
}

// RecordSuccess implements CardService.RecordSuccess
func (s *cardServiceImpl) RecordSuccess(
	ctx context.Context,
	code string,
	interval, counter int,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("code", code))

	var updated *domain.Card
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.cardStore.WithTx(tx)

		// Lock the row so concurrent writes to the same code are serialized.
		if _, err := txStore.GetByCodeForUpdate(ctx, code); err != nil {
			return err
		}

		result := s.srsService.CalculateNextReview(interval, counter, s.now())
		if result.OffLadder {
			log.Warn("card interval is not on the ladder; keeping it unchanged",
				slog.Int("interval", interval))
		}

		if err := txStore.UpdateSchedule(ctx, code, store.Schedule{
			Interval: result.Interval,
			Counter:  result.Counter,
			DueAt:    result.DueAt,
		}); err != nil {
			return err
		}

		card, err := txStore.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		updated = card

		log.Debug("recorded success",
			slog.Int("interval", result.Interval),
			slog.Int("counter", result.Counter),
			slog.Bool("promoted", result.Promoted),
			slog.Time("due_at", result.DueAt))
		return nil
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("card not found for success")
			return nil, NewCardServiceError("record_success", "card not found", err)
		}
		log.Error("failed to record success", slog.String("error", err.Error()))
		return nil, NewCardServiceError("record_success", "failed to persist schedule", err)
	}

	return updated, nil
}

// Fetch implements CardService.Fetch
func (s *cardServiceImpl) Fetch(ctx context.Context, code string) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cardStore.GetByCode(ctx, code)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewCardServiceError("fetch", "card not found", err)
		}
		log.Error("failed to fetch card",
			slog.String("code", code),
			slog.String("error", err.Error()))
		return nil, NewCardServiceError("fetch", "failed to read card", err)
	}
	return card, nil
}

// AddCard implements CardService.AddCard
func (s *cardServiceImpl) AddCard(ctx context.Context, input NewCardInput) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		card, err := s.buildCard(input)
		if err != nil {
			return nil, NewCardServiceError("add_card", "invalid card", err)
		}

		err = s.cardStore.Create(ctx, card)
		if err == nil {
			log.Info("card added", slog.String("code", card.Code))
			return card, nil
		}
		if !errors.Is(err, store.ErrCardCodeExists) {
			log.Error("failed to add card", slog.String("error", err.Error()))
			return nil, NewCardServiceError("add_card", "failed to save card", err)
		}

		log.Debug("card code collision, retrying",
			slog.String("code", card.Code),
			slog.Int("attempt", attempt))
	}

	return nil, NewCardServiceError("add_card", "failed to save card", ErrCodeSpaceExhausted)
}

// ImportCards implements CardService.ImportCards
func (s *cardServiceImpl) ImportCards(ctx context.Context, inputs []NewCardInput) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(inputs) == 0 {
		log.Debug("no cards to import")
		return []*domain.Card{}, nil
	}

	created := make([]*domain.Card, 0, len(inputs))
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.cardStore.WithTx(tx)

		for i, input := range inputs {
			card, err := s.buildUnusedCard(ctx, txStore, input)
			if err != nil {
				return fmt.Errorf("card %d: %w", i+1, err)
			}
			if err := txStore.Create(ctx, card); err != nil {
				return fmt.Errorf("card %d: %w", i+1, err)
			}
			created = append(created, card)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to import cards",
			slog.Int("card_count", len(inputs)),
			slog.String("error", err.Error()))
		return nil, NewCardServiceError("import_cards", "no cards were imported", err)
	}

	log.Info("imported cards", slog.Int("card_count", len(created)))
	return created, nil
}

// ListCards implements CardService.ListCards
func (s *cardServiceImpl) ListCards(ctx context.Context) ([]*domain.Card, error) {
	cards, err := s.cardStore.List(ctx)
	if err != nil {
		return nil, NewCardServiceError("list_cards", "failed to list cards", err)
	}
	return cards, nil
}

// SearchCards implements CardService.SearchCards
func (s *cardServiceImpl) SearchCards(ctx context.Context, query string) ([]*domain.Card, error) {
	cards, err := s.cardStore.Search(ctx, query)
	if err != nil {
		return nil, NewCardServiceError("search_cards", "failed to search cards", err)
	}
	return cards, nil
}

// DeleteCard implements CardService.DeleteCard
func (s *cardServiceImpl) DeleteCard(ctx context.Context, code string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.cardStore.Delete(ctx, code); err != nil {
		if store.IsNotFoundError(err) {
			return NewCardServiceError("delete_card", "card not found", err)
		}
		log.Error("failed to delete card",
			slog.String("code", code),
			slog.String("error", err.Error()))
		return NewCardServiceError("delete_card", "failed to delete card", err)
	}

	log.Info("card deleted", slog.String("code", code))
	return nil
}

func (s *cardServiceImpl) buildCard(input NewCardInput) (*domain.Card, error) {
	params := s.srsService.Params()

	counter := input.Counter
	if counter <= 0 {
		counter = params.Threshold
	}

	card, err := domain.NewCard(input.Front, input.Back, params.Ladder.First(), counter, s.now())
	if err != nil {
		return nil, errors.Join(ErrInvalidCard, err)
	}
	return card, nil
}

// buildUnusedCard builds a card whose code is not yet taken in cardStore.
// Checking first keeps a collision from aborting the surrounding transaction.
func (s *cardServiceImpl) buildUnusedCard(
	ctx context.Context,
	cardStore store.CardStore,
	input NewCardInput,
) (*domain.Card, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		card, err := s.buildCard(input)
		if err != nil {
			return nil, err
		}

		_, err = cardStore.GetByCode(ctx, card.Code)
		if store.IsNotFoundError(err) {
			return card, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, ErrCodeSpaceExhausted
}
