package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"socialpulse/internal/models"
	"socialpulse/internal/store"
)

// WithIngestTx runs fn inside one write transaction.
func (s *Store) WithIngestTx(ctx context.Context, fn func(tx store.IngestTx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin ingest", err)
	}
	defer tx.Rollback()

	if err := fn(&ingestTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("commit ingest", err)
	}
	return nil
}

// ingestTx implements store.IngestTx on a database/sql transaction.
type ingestTx struct {
	tx *sql.Tx
}

func (t *ingestTx) AccountIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT account_id FROM accounts")
	if err != nil {
		return nil, classify("load accounts", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, classify("scan account", err)
		}
		ids[id] = struct{}{}
	}
	return ids, classify("iterate accounts", rows.Err())
}

func (t *ingestTx) Categories(ctx context.Context) (map[string]int64, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT id, name FROM categories")
	if err != nil {
		return nil, classify("load categories", err)
	}
	defer rows.Close()

	categories := make(map[string]int64)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, classify("scan category", err)
		}
		categories[c.Name] = c.ID
	}
	return categories, classify("iterate categories", rows.Err())
}

func (t *ingestTx) AssociationKeys(ctx context.Context) (map[models.AssociationKey]struct{}, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT account_id, category_id FROM account_and_categories")
	if err != nil {
		return nil, classify("load associations", err)
	}
	defer rows.Close()

	keys := make(map[models.AssociationKey]struct{})
	for rows.Next() {
		var k models.AssociationKey
		if err := rows.Scan(&k.AccountID, &k.CategoryID); err != nil {
			return nil, classify("scan association", err)
		}
		keys[k] = struct{}{}
	}
	return keys, classify("iterate associations", rows.Err())
}

func (t *ingestTx) HistoricalKeys(ctx context.Context, from, to time.Time) (map[models.HistoricalKey]struct{}, error) {
	rows, err := t.tx.QueryContext(ctx,
		"SELECT account_id, observed_at FROM historical WHERE observed_at BETWEEN ? AND ?",
		toMicros(from), toMicros(to),
	)
	if err != nil {
		return nil, classify("load historical keys", err)
	}
	defer rows.Close()

	keys := make(map[models.HistoricalKey]struct{})
	for rows.Next() {
		var k models.HistoricalKey
		if err := rows.Scan(&k.AccountID, &k.ObservedAt); err != nil {
			return nil, classify("scan historical key", err)
		}
		keys[k] = struct{}{}
	}
	return keys, classify("iterate historical keys", rows.Err())
}

func (t *ingestTx) InsertAccounts(ctx context.Context, accountIDs []string) error {
	return t.bulkInsert(ctx, "accounts", "INSERT INTO accounts (account_id) VALUES (?)", len(accountIDs),
		func(i int) []any { return []any{accountIDs[i]} })
}

func (t *ingestTx) InsertCategories(ctx context.Context, names []string) error {
	return t.bulkInsert(ctx, "categories", "INSERT INTO categories (name) VALUES (?)", len(names),
		func(i int) []any { return []any{names[i]} })
}

func (t *ingestTx) InsertAssociations(ctx context.Context, rows []models.AccountCategory) error {
	return t.bulkInsert(ctx, "associations",
		"INSERT INTO account_and_categories (account_id, category_id) VALUES (?, ?)", len(rows),
		func(i int) []any { return []any{rows[i].AccountID, rows[i].CategoryID} })
}

func (t *ingestTx) InsertHistoricals(ctx context.Context, rows []models.Historical) error {
	return t.bulkInsert(ctx, "historical",
		"INSERT INTO historical (account_id, subscriber_count, observed_at) VALUES (?, ?, ?)", len(rows),
		func(i int) []any { return []any{rows[i].AccountID, rows[i].SubscriberCount, toMicros(rows[i].ObservedAt)} })
}

// bulkInsert executes one prepared statement n times inside the transaction.
// SQLite runs in-process, so this costs no network round trips.
func (t *ingestTx) bulkInsert(ctx context.Context, what, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}

	stmt, err := t.tx.PrepareContext(ctx, query)
	if err != nil {
		return classify("prepare insert "+what, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return classify(fmt.Sprintf("insert %s row %d", what, i), err)
		}
	}
	return nil
}
