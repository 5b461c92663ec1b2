package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scry-review/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	otherErr := errors.New("connection reset")

	testCases := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "no rows", err: sql.ErrNoRows, wantErr: store.ErrCardNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, wantErr: store.ErrCardCodeExists},
		{
			name:    "check violation",
			err:     &pgconn.PgError{Code: "23514", ConstraintName: "cards_interval_days_check"},
			wantErr: store.ErrInvalidEntity,
		},
		{
			name:    "not null violation",
			err:     &pgconn.PgError{Code: "23502", ColumnName: "front"},
			wantErr: store.ErrInvalidEntity,
		},
		{name: "passthrough", err: otherErr, wantErr: otherErr},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, MapError(tc.err), tc.wantErr)
		})
	}

	assert.NoError(t, MapError(nil))
}

func TestMapError_NamesCardField(t *testing.T) {
	t.Parallel()

	err := MapError(&pgconn.PgError{Code: "23514", ConstraintName: "cards_interval_days_check"})
	assert.Contains(t, err.Error(), "interval")

	err = MapError(&pgconn.PgError{Code: "23502", ColumnName: "back"})
	assert.Contains(t, err.Error(), ": back: ")

	err = MapError(&pgconn.PgError{Code: "23514", ConstraintName: "custom_rule"})
	assert.Contains(t, err.Error(), "custom_rule")
}

func TestViolatedField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pgErr *pgconn.PgError
		want  string
	}{
		{"check constraint on counter", &pgconn.PgError{ConstraintName: "cards_counter_check"}, "counter"},
		{"check constraint on interval", &pgconn.PgError{ConstraintName: "cards_interval_days_check"}, "interval"},
		{"not null column", &pgconn.PgError{ColumnName: "front"}, "front"},
		{"column wins over constraint", &pgconn.PgError{ColumnName: "due_at", ConstraintName: "cards_counter_check"}, "due_at"},
		{"unknown constraint", &pgconn.PgError{ConstraintName: "custom_rule"}, "custom_rule"},
		{"nothing named", &pgconn.PgError{}, "card"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, violatedField(tt.pgErr))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	require.NoError(t, checkRowsAffected(fakeResult{rows: 1}))
	assert.ErrorIs(t, checkRowsAffected(fakeResult{rows: 0}), store.ErrCardNotFound)
	assert.Error(t, checkRowsAffected(fakeResult{err: errors.New("driver")}))
	assert.Error(t, checkRowsAffected(nil))
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}
