package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"socialpulse/internal/models"
	"socialpulse/internal/store"
)

// AccountsByCategory returns the accounts tagged with a category.
func (s *Store) AccountsByCategory(ctx context.Context, category string, page store.Page) ([]string, error) {
	var categoryID int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM categories WHERE name = ?", category).Scan(&categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCategoryNotFound
	}
	if err != nil {
		return nil, classify("get category", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT account_id FROM account_and_categories WHERE category_id = ? ORDER BY account_id LIMIT ? OFFSET ?",
		categoryID, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, classify("list category accounts", err)
	}
	return scanAccountIDs(rows)
}

// AccountsOverThreshold returns accounts with any observation above threshold.
func (s *Store) AccountsOverThreshold(ctx context.Context, threshold int64, page store.Page) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT account_id FROM historical WHERE subscriber_count > ? ORDER BY account_id LIMIT ? OFFSET ?",
		threshold, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, classify("list large accounts", err)
	}
	return scanAccountIDs(rows)
}

// LatestObservation returns the most recent observation time.
func (s *Store) LatestObservation(ctx context.Context) (time.Time, bool, error) {
	var latest sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(observed_at) FROM historical").Scan(&latest); err != nil {
		return time.Time{}, false, classify("get latest observation", err)
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return fromMicros(latest.Int64), true, nil
}

// ObservationsAfter returns observations strictly after the given time.
func (s *Store) ObservationsAfter(ctx context.Context, after time.Time) ([]models.Historical, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, subscriber_count, observed_at
		FROM historical
		WHERE observed_at > ?
		ORDER BY account_id, observed_at`,
		toMicros(after),
	)
	if err != nil {
		return nil, classify("list observations", err)
	}
	defer rows.Close()

	var observations []models.Historical
	for rows.Next() {
		var h models.Historical
		var observedAt int64
		if err := rows.Scan(&h.ID, &h.AccountID, &h.SubscriberCount, &observedAt); err != nil {
			return nil, classify("scan observation", err)
		}
		h.ObservedAt = fromMicros(observedAt)
		observations = append(observations, h)
	}
	return observations, classify("iterate observations", rows.Err())
}

// TableCounts returns the row count of every stored relation.
func (s *Store) TableCounts(ctx context.Context) ([]models.TableCount, error) {
	counts := make([]models.TableCount, 0, len(models.Tables))
	for _, table := range models.Tables {
		var n int64
		// Table names come from a fixed list, never from input.
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, classify("count "+table, err)
		}
		counts = append(counts, models.TableCount{Table: table, Rows: n})
	}
	return counts, nil
}

func scanAccountIDs(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, classify("scan account id", err)
		}
		ids = append(ids, id)
	}
	return ids, classify("iterate account ids", rows.Err())
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}
