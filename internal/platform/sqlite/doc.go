// Package sqlite provides a file-backed implementation of store.CardStore
// using the pure-Go modernc.org/sqlite driver.
//
// Timestamps are stored as Unix seconds. A NULL due_at marks a card that is
// due immediately. The schema is managed by goose migrations embedded in
// Migrations.
package sqlite
