// Package ingest reconciles normalized observations against the store,
// inserting only accounts, categories, associations and historical
// observations that do not exist yet.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"socialpulse/internal/loader"
	"socialpulse/internal/metrics"
	"socialpulse/internal/models"
	"socialpulse/internal/store"
)

// Engine runs ingestion. It is safe for concurrent use; runs are serialized.
type Engine struct {
	store  store.Store
	opts   loader.Options
	logger *slog.Logger

	mu sync.Mutex
}

// NewEngine creates an engine writing to s. Files are decoded with opts.
func NewEngine(s store.Store, opts loader.Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: s, opts: opts, logger: logger.With("component", "ingest")}
}

// IngestFile loads the batch file at path and applies it.
func (e *Engine) IngestFile(ctx context.Context, path string) (models.IngestResult, error) {
	started := time.Now()

	batch, err := loader.Load(ctx, path, e.opts)
	if err != nil {
		result := models.IngestResult{Source: path, StartedAt: started.UTC(), FinishedAt: time.Now().UTC()}
		e.record(result, err, started)
		return result, err
	}

	return e.run(ctx, batch.Source, batch.Observations, batch.Stats, started)
}

// Apply ingests observations that are already normalized.
func (e *Engine) Apply(ctx context.Context, observations []models.Observation) (models.IngestResult, error) {
	return e.run(ctx, "", observations, models.LoadStats{RowsEmitted: len(observations)}, time.Now())
}

func (e *Engine) run(ctx context.Context, source string, observations []models.Observation, stats models.LoadStats, started time.Time) (models.IngestResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := models.IngestResult{
		RunID:     uuid.NewString(),
		Source:    source,
		Load:      stats,
		StartedAt: started.UTC(),
	}

	var err error
	if len(observations) > 0 {
		err = e.store.WithIngestTx(ctx, func(tx store.IngestTx) error {
			// Counts are only reported if the transaction commits.
			created, err := reconcile(ctx, tx, observations)
			if err != nil {
				return err
			}
			result.AccountsCreated = created.AccountsCreated
			result.CategoriesCreated = created.CategoriesCreated
			result.AssociationsCreated = created.AssociationsCreated
			result.ObservationsCreated = created.ObservationsCreated
			return nil
		})
	}
	result.FinishedAt = time.Now().UTC()

	if err != nil {
		result.AccountsCreated, result.CategoriesCreated = 0, 0
		result.AssociationsCreated, result.ObservationsCreated = 0, 0
		err = fmt.Errorf("ingest run %s: %w", result.RunID, err)
	}
	e.record(result, err, started)
	return result, err
}

func (e *Engine) record(result models.IngestResult, err error, started time.Time) {
	elapsed := time.Since(started)
	outcome := Outcome(err)
	metrics.RecordIngestion(outcome, result, elapsed)

	attrs := []any{
		"run_id", result.RunID,
		"source", result.Source,
		"outcome", outcome,
		"rows_read", result.Load.RowsRead,
		"rows_emitted", result.Load.RowsEmitted,
		"duration", elapsed,
	}
	if err != nil {
		e.logger.Error("ingestion failed", append(attrs, "error", err)...)
		return
	}
	e.logger.Info("ingestion completed", append(attrs,
		"accounts_created", result.AccountsCreated,
		"categories_created", result.CategoriesCreated,
		"associations_created", result.AssociationsCreated,
		"observations_created", result.ObservationsCreated,
	)...)
}

// Outcome classifies an ingestion error for metrics and notifications.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case loader.IsMalformed(err):
		return metrics.OutcomeMalformed
	case store.IsUnavailable(err):
		return metrics.OutcomeUnavailable
	case errors.Is(err, store.ErrConflict):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}
