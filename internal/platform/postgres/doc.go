// Package postgres provides the PostgreSQL implementation of the card store
// defined in the internal/store package, together with the embedded schema
// migrations applied by goose.
package postgres
