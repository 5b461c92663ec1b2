package sqlite

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

// CardStore implements store.CardStore on top of an SQLite database.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewCardStore creates an SQLite CardStore. The db may be a *sql.DB or *sql.Tx.
// If logger is nil, a default logger will be used.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
		now:    time.Now,
	}
}

var _ store.CardStore = (*CardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{
		db:     tx,
		logger: s.logger,
		now:    s.now,
	}
}

// Create implements store.CardStore.Create
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return store.NewCardError("create", "invalid card", errors.Join(store.ErrInvalidEntity, err))
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		card.Code, card.Front, card.Back, card.Interval, card.Counter,
		toUnixPtr(card.DueAt), card.CreatedAt.Unix(), card.UpdatedAt.Unix(),
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
func (s *CardStore) GetByCode(ctx context.Context, code string) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE code = ?`, code)

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

// GetByCodeForUpdate implements store.CardStore.GetByCodeForUpdate.
// SQLite has no row locks; writers are serialized by the database lock.
func (s *CardStore) GetByCodeForUpdate(ctx context.Context, code string) (*domain.Card, error) {
	return s.GetByCode(ctx, code)
}

// GetDue implements store.CardStore.GetDue
func (s *CardStore) GetDue(ctx context.Context, now time.Time, limit int) ([]*domain.Card, error) {
	if limit <= 0 {
		return []*domain.Card{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE due_at IS NULL OR due_at <= ?
		ORDER BY interval_days ASC, code ASC
		LIMIT ?`,
		now.Unix(), limit,
	)
	if err != nil {
		s.logger.Error("failed to query due cards", slog.String("error", err.Error()))
		return nil, store.NewCardError("get_due", "failed to query due cards", MapError(err))
	}

	return s.collect(rows, "get_due")
}

// UpdateSchedule implements store.CardStore.UpdateSchedule
func (s *CardStore) UpdateSchedule(ctx context.Context, code string, schedule store.Schedule) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET interval_days = ?, counter = ?, due_at = ?, updated_at = ?
		WHERE code = ?`,
		schedule.Interval, schedule.Counter, schedule.DueAt.Unix(), s.now().Unix(), code,
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
func (s *CardStore) List(ctx context.Context) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY code`)
	if err != nil {
		return nil, store.NewCardError("list", "failed to list cards", MapError(err))
	}
	return s.collect(rows, "list")
}

// Search implements store.CardStore.Search.
// SQLite LIKE is case-insensitive for ASCII text.
func (s *CardStore) Search(ctx context.Context, query string) ([]*domain.Card, error) {
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(query)) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE front LIKE ? ESCAPE '\' OR back LIKE ? ESCAPE '\'
		ORDER BY code`,
		pattern, pattern,
	)
	if err != nil {
		return nil, store.NewCardError("search", "failed to search cards", MapError(err))
	}
	return s.collect(rows, "search")
}

// Delete implements store.CardStore.Delete
func (s *CardStore) Delete(ctx context.Context, code string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE code = ?`, code)
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

func (s *CardStore) collect(rows *sql.Rows, op string) ([]*domain.Card, error) {
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
		card               domain.Card
		dueAt              sql.NullInt64
		createdAt, updated int64
	)

	if err := row.Scan(
		&card.Code,
		&card.Front,
		&card.Back,
		&card.Interval,
		&card.Counter,
		&dueAt,
		&createdAt,
		&updated,
	); err != nil {
		return nil, err
	}

	if dueAt.Valid {
		t := time.Unix(dueAt.Int64, 0)
		card.DueAt = &t
	}
	card.CreatedAt = time.Unix(createdAt, 0)
	card.UpdatedAt = time.Unix(updated, 0)

	return &card, nil
}

func toUnixPtr(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
