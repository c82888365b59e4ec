// Package store defines the persistence contract shared by the Postgres and
// SQLite backends.
package store

import (
	"context"
	"time"

	"socialpulse/internal/models"
)

// Page selects a window of an ordered result set.
type Page struct {
	Offset int
	Limit  int
}

// Reader serves the read-only queries. Implementations return results from
// the last committed state and never block on a running ingestion.
type Reader interface {
	// AccountsByCategory returns account ids tagged with the named category,
	// ordered by account id. Returns ErrCategoryNotFound for an unknown name.
	AccountsByCategory(ctx context.Context, category string, page Page) ([]string, error)

	// AccountsOverThreshold returns ids of accounts with any observation whose
	// count is strictly greater than threshold, ordered by account id.
	AccountsOverThreshold(ctx context.Context, threshold int64, page Page) ([]string, error)

	// LatestObservation returns the most recent observation time. The bool
	// is false when no observations are stored.
	LatestObservation(ctx context.Context) (time.Time, bool, error)

	// ObservationsAfter returns every observation strictly after the given
	// time, ordered by account id then time.
	ObservationsAfter(ctx context.Context, after time.Time) ([]models.Historical, error)

	// TableCounts returns the row count of each stored relation.
	TableCounts(ctx context.Context) ([]models.TableCount, error)
}

// IngestTx is the write surface available inside one ingestion run. All
// calls share a single transaction.
type IngestTx interface {
	AccountIDs(ctx context.Context) (map[string]struct{}, error)
	Categories(ctx context.Context) (map[string]int64, error)
	AssociationKeys(ctx context.Context) (map[models.AssociationKey]struct{}, error)
	// HistoricalKeys returns keys of stored observations with from <= time <= to.
	HistoricalKeys(ctx context.Context, from, to time.Time) (map[models.HistoricalKey]struct{}, error)

	InsertAccounts(ctx context.Context, accountIDs []string) error
	InsertCategories(ctx context.Context, names []string) error
	InsertAssociations(ctx context.Context, rows []models.AccountCategory) error
	InsertHistoricals(ctx context.Context, rows []models.Historical) error
}

// Store is a complete backend.
type Store interface {
	Reader

	// WithIngestTx runs fn inside a serialized write transaction. The
	// transaction commits only if fn returns nil; otherwise it is rolled back.
	WithIngestTx(ctx context.Context, fn func(tx IngestTx) error) error

	Ping(ctx context.Context) error
	Close() error
}
