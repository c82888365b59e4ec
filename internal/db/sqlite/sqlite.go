// Package sqlite provides a SQLite-backed implementation of store.Store.
//
// Observation times are stored as Unix microseconds so range scans and the
// (account_id, observed_at) uniqueness constraint work on plain integers.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"socialpulse/internal/store"
	"socialpulse/migrations"
)

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB

	// writeMu serializes ingestion transactions within the process.
	writeMu sync.Mutex
}

// New opens the database at dbPath, creating parent directories and the
// schema when needed.
func New(dbPath string) (*Store, error) {
	memory := dbPath == MemoryPath || strings.Contains(dbPath, "mode=memory")

	if !memory {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(dbPath, memory))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// dsn appends the connection pragmas to dbPath. Pragmas are per connection,
// so the driver applies them to every connection the pool opens.
func dsn(dbPath string, memory bool) string {
	pragmas := []string{"foreign_keys(1)", "busy_timeout(5000)"}
	if !memory {
		pragmas = append(pragmas, "journal_mode(WAL)")
	}

	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=" + strings.Join(pragmas, "&_pragma=")
}

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(migrations.SQLiteSchema)
	return err
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &store.UnavailableError{Op: "ping", Err: err}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// classify maps SQLite errors onto the store error kinds.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			if sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
				sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
				strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed") {
				return fmt.Errorf("%s: %w (%s)", op, store.ErrConflict, sqliteErr.Error())
			}
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR,
			sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_FULL:
			return &store.UnavailableError{Op: op, Err: err}
		}
	}

	if errors.Is(err, sql.ErrConnDone) {
		return &store.UnavailableError{Op: op, Err: err}
	}

	return fmt.Errorf("%s: %w", op, err)
}
