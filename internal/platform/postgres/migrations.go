package postgres

import "embed"

// Migrations holds the goose SQL migrations for the PostgreSQL schema,
// rooted at "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS
