package database

import (
	"context"
	"testing"

	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/platform/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	_, log := logger.NewTestLogger(t)

	db, err := Open(ctx, config.DatabaseConfig{Driver: DriverSQLite, URL: ":memory:"}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db, DriverSQLite, CommandUp, log))
	// Re-applying is a no-op.
	require.NoError(t, Migrate(ctx, db, DriverSQLite, CommandUp, log))

	version, err := CurrentVersion(ctx, db, DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	cards, err := NewCardStore(DriverSQLite, db, log)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.CardStore{}, cards)

	list, err := cards.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql", URL: "x"}, logger.Discard())
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewCardStore("mysql", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestMigrateUnknownCommand(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, config.DatabaseConfig{Driver: DriverSQLite, URL: ":memory:"}, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = Migrate(ctx, db, DriverSQLite, "reset", logger.Discard())
	assert.ErrorContains(t, err, "unknown migration command")
}

func TestSQLiteDSN(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ":memory:", sqliteDSN(""))
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "file:cards.db?mode=ro", sqliteDSN("file:cards.db?mode=ro"))
	assert.Equal(t, "file:cards.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", sqliteDSN("cards.db"))
}
