package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phrazzld/scry-review/internal/store"
)

// SQLSTATE codes raised by the cards table constraints.
const (
	uniqueViolationCode  = "23505"
	checkViolationCode   = "23514"
	notNullViolationCode = "23502"
)

// columnFields maps cards table columns to the card field names used in errors.
var columnFields = map[string]string{
	"code":          "code",
	"front":         "front",
	"back":          "back",
	"interval_days": "interval",
	"counter":       "counter",
	"due_at":        "due_at",
}

// MapError translates a pgx error into the store sentinels. A duplicate card
// code maps to store.ErrCardCodeExists so callers can retry with a new code.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrCardNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %v", store.ErrCardCodeExists, err)
	case checkViolationCode, notNullViolationCode:
		return fmt.Errorf("%w: %s: %v", store.ErrInvalidEntity, violatedField(pgErr), err)
	}
	return err
}

// IsUniqueViolation reports whether err is a card code conflict.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// violatedField names the card field behind a constraint error. Check
// violations carry only the constraint name, e.g. "cards_counter_check".
func violatedField(pgErr *pgconn.PgError) string {
	if field, ok := columnFields[pgErr.ColumnName]; ok {
		return field
	}
	for column, field := range columnFields {
		if pgErr.ConstraintName == "cards_"+column+"_check" {
			return field
		}
	}
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return "card"
}

// checkRowsAffected returns store.ErrCardNotFound when an UPDATE or DELETE
// matched no card.
func checkRowsAffected(result sql.Result) error {
	if result == nil {
		return errors.New("no result returned for card write")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrCardNotFound
	}
	return nil
}
