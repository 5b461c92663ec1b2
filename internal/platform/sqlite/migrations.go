package sqlite

import "embed"

// Migrations holds the goose SQL migrations for the SQLite schema,
// rooted at "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS
