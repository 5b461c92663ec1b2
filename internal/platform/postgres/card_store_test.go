package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/platform/database"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/platform/postgres"
	"github.com/phrazzld/scry-review/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withTestTx runs fn inside a transaction against DATABASE_URL that is
// always rolled back, so tests leave no rows behind.
func withTestTx(t *testing.T, fn func(t *testing.T, s store.CardStore)) {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Driver: database.DriverPostgres, URL: url, MaxOpenConns: 4}, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(ctx, db, database.DriverPostgres, database.CommandUp, logger.Discard()))

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	fn(t, postgres.NewPostgresCardStore(tx, logger.Discard()))
}

func newCard(code string, interval int, due *time.Time) *domain.Card {
	now := time.Now().UTC()
	return &domain.Card{
		Code:      code,
		Front:     "front " + code,
		Back:      "back " + code,
		Interval:  interval,
		Counter:   5,
		DueAt:     due,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgresCardStore_RoundTrip(t *testing.T) {
	withTestTx(t, func(t *testing.T, s store.CardStore) {
		ctx := context.Background()
		now := time.Now()

		past := now.Add(-time.Hour)
		future := now.Add(24 * time.Hour)
		require.NoError(t, s.Create(ctx, newCard("PGT001", 3, &past)))
		require.NoError(t, s.Create(ctx, newCard("PGT002", 1, nil)))
		require.NoError(t, s.Create(ctx, newCard("PGT003", 1, &future)))

		err := s.Create(ctx, newCard("PGT001", 1, nil))
		assert.ErrorIs(t, err, store.ErrCardCodeExists)

		due, err := s.GetDue(ctx, now, 100)
		require.NoError(t, err)
		for _, c := range due {
			assert.True(t, c.IsDue(now))
			assert.NotEqual(t, "PGT003", c.Code)
		}

		nextDue := domain.StartOfDay(now).AddDate(0, 0, 7)
		require.NoError(t, s.UpdateSchedule(ctx, "PGT001", store.Schedule{Interval: 7, Counter: 5, DueAt: nextDue}))

		got, err := s.GetByCodeForUpdate(ctx, "PGT001")
		require.NoError(t, err)
		assert.Equal(t, 7, got.Interval)
		require.NotNil(t, got.DueAt)
		assert.True(t, nextDue.Equal(*got.DueAt))

		found, err := s.Search(ctx, "BACK PGT002")
		require.NoError(t, err)
		require.Len(t, found, 1)

		require.NoError(t, s.Delete(ctx, "PGT002"))
		_, err = s.GetByCode(ctx, "PGT002")
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}
