package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"socialpulse/internal/models"
	"socialpulse/internal/store"
)

// AccountsByCategory returns the accounts tagged with a category.
func (d *DB) AccountsByCategory(ctx context.Context, category string, page store.Page) ([]string, error) {
	var categoryID int64
	err := d.Pool.QueryRow(ctx, `SELECT id FROM categories WHERE name = $1`, category).Scan(&categoryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrCategoryNotFound
	}
	if err != nil {
		return nil, classify("get category", err)
	}

	rows, err := d.Pool.Query(ctx, `
		SELECT account_id
		FROM account_and_categories
		WHERE category_id = $1
		ORDER BY account_id
		OFFSET $2 LIMIT $3
	`, categoryID, page.Offset, page.Limit)
	if err != nil {
		return nil, classify("list category accounts", err)
	}
	return scanAccountIDs(rows)
}

// AccountsOverThreshold returns accounts with any observation above threshold.
func (d *DB) AccountsOverThreshold(ctx context.Context, threshold int64, page store.Page) ([]string, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT DISTINCT account_id
		FROM historical
		WHERE subscriber_count > $1
		ORDER BY account_id
		OFFSET $2 LIMIT $3
	`, threshold, page.Offset, page.Limit)
	if err != nil {
		return nil, classify("list large accounts", err)
	}
	return scanAccountIDs(rows)
}

// LatestObservation returns the most recent observation time.
func (d *DB) LatestObservation(ctx context.Context) (time.Time, bool, error) {
	var latest *time.Time
	if err := d.Pool.QueryRow(ctx, `SELECT MAX(observed_at) FROM historical`).Scan(&latest); err != nil {
		return time.Time{}, false, classify("get latest observation", err)
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return latest.UTC(), true, nil
}

// ObservationsAfter returns observations strictly after the given time.
func (d *DB) ObservationsAfter(ctx context.Context, after time.Time) ([]models.Historical, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, account_id, subscriber_count, observed_at
		FROM historical
		WHERE observed_at > $1
		ORDER BY account_id, observed_at
	`, after)
	if err != nil {
		return nil, classify("list observations", err)
	}
	defer rows.Close()

	var observations []models.Historical
	for rows.Next() {
		var h models.Historical
		if err := rows.Scan(&h.ID, &h.AccountID, &h.SubscriberCount, &h.ObservedAt); err != nil {
			return nil, classify("scan observation", err)
		}
		h.ObservedAt = h.ObservedAt.UTC()
		observations = append(observations, h)
	}
	return observations, classify("iterate observations", rows.Err())
}

// TableCounts returns the row count of every stored relation.
func (d *DB) TableCounts(ctx context.Context) ([]models.TableCount, error) {
	counts := make([]models.TableCount, 0, len(models.Tables))
	for _, table := range models.Tables {
		var n int64
		query := `SELECT COUNT(*) FROM ` + pgx.Identifier{table}.Sanitize()
		if err := d.Pool.QueryRow(ctx, query).Scan(&n); err != nil {
			return nil, classify("count "+table, err)
		}
		counts = append(counts, models.TableCount{Table: table, Rows: n})
	}
	return counts, nil
}

// scanAccountIDs collects a single text column.
func scanAccountIDs(rows pgx.Rows) ([]string, error) {
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
