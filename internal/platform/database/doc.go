// Package database opens the configured card database and applies its
// embedded goose migrations. It supports PostgreSQL through the pgx
// database/sql driver and SQLite through modernc.org/sqlite.
package database
