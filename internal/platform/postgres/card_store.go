package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/store"
)

const cardColumns = `code, front, back, interval_days, counter, due_at, created_at, updated_at`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CardStore.Create
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return store.NewCardError("create", "invalid card", errors.Join(store.ErrInvalidEntity, err))
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (code, front, back, interval_days, counter, due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		card.Code, card.Front, card.Back, card.Interval, card.Counter,
		nullTime(card.DueAt), card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.NewCardError("create", "code already in use", store.ErrCardCodeExists)
		}
		s.logger.Error("failed to insert card",
			slog.String("code", card.Code),
			slog.String("error", err.Error()))
		return store.NewCardError("create", "failed to insert card", MapError(err))
	}

	s.logger.Debug("card created", slog.String("code", card.Code))
	return nil
}

// GetByCode implements store.CardStore.GetByCode
func (s *PostgresCardStore) GetByCode(ctx context.Context, code string) (*domain.Card, error) {
	return s.getByCode(ctx, code, "")
}

// GetByCodeForUpdate implements store.CardStore.GetByCodeForUpdate
// The row stays locked until the surrounding transaction ends.
func (s *PostgresCardStore) GetByCodeForUpdate(ctx context.Context, code string) (*domain.Card, error) {
	return s.getByCode(ctx, code, " FOR UPDATE")
}

func (s *PostgresCardStore) getByCode(ctx context.Context, code, suffix string) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE code = $1`+suffix, code)

	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NewCardError("get", "card "+code, store.ErrCardNotFound)
		}
		s.logger.Error("failed to get card",
			slog.String("code", code),
			slog.String("error", err.Error()))
		return nil, store.NewCardError("get", "failed to read card", MapError(err))
	}

	return card, nil
}

// GetDue implements store.CardStore.GetDue
func (s *PostgresCardStore) GetDue(ctx context.Context, now time.Time, limit int) ([]*domain.Card, error) {
	if limit <= 0 {
		return []*domain.Card{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE due_at IS NULL OR due_at <= $1
		ORDER BY interval_days ASC, code ASC
		LIMIT $2`,
		now, limit,
	)
	if err != nil {
		s.logger.Error("failed to query due cards", slog.String("error", err.Error()))
		return nil, store.NewCardError("get_due", "failed to query due cards", MapError(err))
	}

	return s.collect(rows, "get_due")
}

// UpdateSchedule implements store.CardStore.UpdateSchedule
func (s *PostgresCardStore) UpdateSchedule(ctx context.Context, code string, schedule store.Schedule) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET interval_days = $1, counter = $2, due_at = $3, updated_at = NOW()
		WHERE code = $4`,
		schedule.Interval, schedule.Counter, schedule.DueAt, code,
	)
	if err != nil {
		s.logger.Error("failed to update card schedule",
			slog.String("code", code),
			slog.String("error", err.Error()))
		return store.NewCardError("update", "failed to write schedule",
			errors.Join(store.ErrUpdateFailed, MapError(err)))
	}

	if err := checkRowsAffected(result); err != nil {
		return store.NewCardError("update", "card "+code, err)
	}

	return nil
}

// List implements store.CardStore.List
func (s *PostgresCardStore) List(ctx context.Context) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY code`)
	if err != nil {
		return nil, store.NewCardError("list", "failed to list cards", MapError(err))
	}
	return s.collect(rows, "list")
}

// Search implements store.CardStore.Search
func (s *PostgresCardStore) Search(ctx context.Context, query string) ([]*domain.Card, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE front ILIKE $1 OR back ILIKE $1
		ORDER BY code`,
		pattern,
	)
	if err != nil {
		return nil, store.NewCardError("search", "failed to search cards", MapError(err))
	}
	return s.collect(rows, "search")
}

// Delete implements store.CardStore.Delete
func (s *PostgresCardStore) Delete(ctx context.Context, code string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE code = $1`, code)
	if err != nil {
		return store.NewCardError("delete", "failed to delete card",
			errors.Join(store.ErrDeleteFailed, MapError(err)))
	}

	if err := checkRowsAffected(result); err != nil {
		return store.NewCardError("delete", "card "+code, err)
	}

	s.logger.Debug("card deleted", slog.String("code", code))
	return nil
}

func (s *PostgresCardStore) collect(rows *sql.Rows, op string) ([]*domain.Card, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cards := make([]*domain.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.NewCardError(op, "failed to scan card", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, store.NewCardError(op, "failed to iterate cards", MapError(err))
	}

	return cards, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card  domain.Card
		dueAt sql.NullTime
	)

	if err := row.Scan(
		&card.Code,
		&card.Front,
		&card.Back,
		&card.Interval,
		&card.Counter,
		&dueAt,
		&card.CreatedAt,
		&card.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if dueAt.Valid {
		t := dueAt.Time
		card.DueAt = &t
	}

	return &card, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
