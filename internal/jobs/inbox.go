package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"socialpulse/internal/ingest"
	"socialpulse/internal/loader"
	"socialpulse/internal/models"
	"socialpulse/internal/store"
)

// Inbox subdirectories for files that have been handled.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// Ingester ingests one batch file.
type Ingester interface {
	IngestFile(ctx context.Context, path string) (models.IngestResult, error)
}

// Notifier is told about the outcome of each file.
type Notifier interface {
	NotifyIngestFailed(source, outcome string, result models.IngestResult, cause error)
	NotifyIngestCompleted(result models.IngestResult)
}

// ScanSummary counts what one scan did.
type ScanSummary struct {
	Processed int
	Failed    int
	Deferred  int
}

// Inbox periodically ingests batch files dropped into a directory.
type Inbox struct {
	dir      string
	spec     string
	ingester Ingester
	notifier Notifier
	logger   *slog.Logger

	// scanMu keeps scans from overlapping.
	scanMu sync.Mutex
}

// NewInbox creates the inbox job. spec is a standard cron expression or a
// descriptor such as "@every 1m".
func NewInbox(dir, spec string, ingester Ingester, notifier Notifier, logger *slog.Logger) (*Inbox, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid inbox schedule %q: %w", spec, err)
	}
	for _, sub := range []string{ProcessedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create inbox directory: %w", err)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{
		dir:      dir,
		spec:     spec,
		ingester: ingester,
		notifier: notifier,
		logger:   logger.With("component", "inbox", "dir", dir),
	}, nil
}

// Start scans once, then on every schedule tick until ctx is done.
func (i *Inbox) Start(ctx context.Context) error {
	i.logger.Info("inbox job started", "schedule", i.spec)

	i.scanLogged(ctx)

	c := cron.New(cron.WithChain(cron.Recover(cronLogger{i.logger})))
	if _, err := c.AddFunc(i.spec, func() { i.scanLogged(ctx) }); err != nil {
		return err
	}
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	i.logger.Info("inbox job stopped")
	return nil
}

func (i *Inbox) scanLogged(ctx context.Context) {
	summary, err := i.Scan(ctx)
	if err != nil {
		i.logger.Error("inbox scan failed", "error", err)
		return
	}
	if summary != (ScanSummary{}) {
		i.logger.Info("inbox scan finished",
			"processed", summary.Processed,
			"failed", summary.Failed,
			"deferred", summary.Deferred,
		)
	}
}

// Scan ingests every supported file in the inbox in name order. Ingested
// files move to processed/, rejected ones to failed/. When the store is
// unavailable the remaining files stay in place for the next scan.
func (i *Inbox) Scan(ctx context.Context) (ScanSummary, error) {
	var summary ScanSummary

	if !i.scanMu.TryLock() {
		i.logger.Debug("inbox scan already running")
		return summary, nil
	}
	defer i.scanMu.Unlock()

	entries, err := os.ReadDir(i.dir)
	if err != nil {
		return summary, fmt.Errorf("read inbox: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !loader.Supported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for idx, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		path := filepath.Join(i.dir, name)
		result, err := i.ingester.IngestFile(ctx, path)
		outcome := ingest.Outcome(err)

		switch {
		case err == nil:
			summary.Processed++
			if err := i.move(path, ProcessedDir); err != nil {
				return summary, err
			}
			i.notify(func(nt Notifier) { nt.NotifyIngestCompleted(result) })

		case ctx.Err() != nil:
			return summary, ctx.Err()

		case store.IsUnavailable(err):
			summary.Deferred += len(names) - idx
			i.logger.Warn("store unavailable, deferring inbox files", "file", name, "remaining", len(names)-idx, "error", err)
			i.notify(func(nt Notifier) { nt.NotifyIngestFailed(path, outcome, result, err) })
			return summary, nil

		case errors.Is(err, store.ErrConflict):
			summary.Deferred++
			i.logger.Warn("conflicting ingestion, retrying next scan", "file", name, "error", err)

		default:
			summary.Failed++
			i.logger.Error("inbox file rejected", "file", name, "outcome", outcome, "error", err)
			if err := i.move(path, FailedDir); err != nil {
				return summary, err
			}
			i.notify(func(nt Notifier) { nt.NotifyIngestFailed(path, outcome, result, err) })
		}
	}

	return summary, nil
}

func (i *Inbox) notify(fn func(Notifier)) {
	if i.notifier != nil {
		fn(i.notifier)
	}
}

// move renames path into the given inbox subdirectory, prefixing a timestamp
// when a file of the same name is already there.
func (i *Inbox) move(path, sub string) error {
	name := filepath.Base(path)
	dest := filepath.Join(i.dir, sub, name)
	if _, err := os.Stat(dest); err == nil {
		dest = filepath.Join(i.dir, sub, time.Now().UTC().Format("20060102T150405.000000000Z")+"-"+name)
	}
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("move %s to %s: %w", name, sub, err)
	}
	return nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
