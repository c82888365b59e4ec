// Package migrations embeds the SQL schema for each store backend.
package migrations

import "embed"

// FS holds the versioned Postgres migrations applied by golang-migrate.
//
//go:embed postgres/*.sql
var FS embed.FS

// PostgresDir is the directory inside FS holding the Postgres migrations.
const PostgresDir = "postgres"

// SQLiteSchema is the idempotent schema applied when a SQLite store opens.
//
//go:embed sqlite/schema.sql
var SQLiteSchema string
