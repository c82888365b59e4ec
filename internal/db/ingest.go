package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"socialpulse/internal/models"
	"socialpulse/internal/store"
)

// ingestLockKey is the advisory lock that serializes ingestion runs across
// every process sharing the database.
const ingestLockKey int64 = 0x736f6369616c // "social"

// WithIngestTx runs fn inside one transaction holding the ingestion lock.
func (d *DB) WithIngestTx(ctx context.Context, fn func(tx store.IngestTx) error) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return classify("begin ingest", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ingestLockKey); err != nil {
		return classify("acquire ingest lock", err)
	}

	if err := fn(&ingestTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("commit ingest", err)
	}
	return nil
}

// ingestTx implements store.IngestTx on a pgx transaction.
type ingestTx struct {
	tx pgx.Tx
}

func (t *ingestTx) AccountIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := t.tx.Query(ctx, `SELECT account_id FROM accounts`)
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
	rows, err := t.tx.Query(ctx, `SELECT id, name FROM categories`)
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
	rows, err := t.tx.Query(ctx, `SELECT account_id, category_id FROM account_and_categories`)
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
	rows, err := t.tx.Query(ctx, `
		SELECT account_id, observed_at
		FROM historical
		WHERE observed_at BETWEEN $1 AND $2
	`, from, to)
	if err != nil {
		return nil, classify("load historical keys", err)
	}
	defer rows.Close()

	keys := make(map[models.HistoricalKey]struct{})
	for rows.Next() {
		var accountID string
		var observedAt time.Time
		if err := rows.Scan(&accountID, &observedAt); err != nil {
			return nil, classify("scan historical key", err)
		}
		keys[models.NewHistoricalKey(accountID, observedAt)] = struct{}{}
	}
	return keys, classify("iterate historical keys", rows.Err())
}

func (t *ingestTx) InsertAccounts(ctx context.Context, accountIDs []string) error {
	if len(accountIDs) == 0 {
		return nil
	}
	_, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{models.TableAccounts},
		[]string{"account_id"},
		pgx.CopyFromSlice(len(accountIDs), func(i int) ([]any, error) {
			return []any{accountIDs[i]}, nil
		}),
	)
	return classify("insert accounts", err)
}

func (t *ingestTx) InsertCategories(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{models.TableCategories},
		[]string{"name"},
		pgx.CopyFromSlice(len(names), func(i int) ([]any, error) {
			return []any{names[i]}, nil
		}),
	)
	return classify("insert categories", err)
}

func (t *ingestTx) InsertAssociations(ctx context.Context, rows []models.AccountCategory) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{models.TableAccountCategories},
		[]string{"account_id", "category_id"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return []any{rows[i].AccountID, rows[i].CategoryID}, nil
		}),
	)
	return classify("insert associations", err)
}

func (t *ingestTx) InsertHistoricals(ctx context.Context, rows []models.Historical) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{models.TableHistorical},
		[]string{"account_id", "subscriber_count", "observed_at"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return []any{rows[i].AccountID, rows[i].SubscriberCount, rows[i].ObservedAt}, nil
		}),
	)
	return classify("insert historical", err)
}
