package db

import (
	"context"
	"fmt"
	"strings"

	"socialpulse/internal/db/sqlite"
	"socialpulse/internal/store"
)

const sqliteScheme = "sqlite://"

// Open connects to the backend named by dsn and applies its schema.
//
// postgres:// and postgresql:// URLs use the pgx pool; sqlite://<path> opens
// a SQLite file (sqlite://:memory: for a private in-memory database).
func Open(ctx context.Context, dsn string) (store.Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		database, err := New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(dsn); err != nil {
			database.Close()
			return nil, err
		}
		return database, nil

	case strings.HasPrefix(dsn, sqliteScheme):
		path := strings.TrimPrefix(dsn, sqliteScheme)
		if path == "" {
			return nil, fmt.Errorf("sqlite url %q has no path", dsn)
		}
		return sqlite.New(path)

	default:
		return nil, fmt.Errorf("unsupported database url %q: want postgres:// or sqlite://", dsn)
	}
}
