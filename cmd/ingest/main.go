// Command ingest loads batch files into the store from the command line and
// prints per-table row counts.
//
// Usage:
//
//	ingest -file data/batch.parquet [-file more.csv] [-stats]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"socialpulse/internal/config"
	"socialpulse/internal/db"
	"socialpulse/internal/ingest"
	"socialpulse/internal/logging"
	"socialpulse/internal/models"
	"socialpulse/internal/store"
)

type fileList []string

func (f *fileList) String() string {
	return strings.Join(*f, ",")
}

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	var files fileList
	flag.Var(&files, "file", "batch file to ingest (.parquet or .csv); repeatable")
	stats := flag.Bool("stats", false, "print per-table row counts")
	flag.Parse()

	if len(files) == 0 && !*stats {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(files, *stats); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

func run(files []string, stats bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		return fmt.Errorf("load yaml config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	engine := ingest.NewEngine(st, cfg.LoaderOptions(yamlCfg), logger)

	var errs []error
	for _, path := range files {
		// Each file is its own run; a bad file does not stop the others.
		result, err := engine.IngestFile(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		printResult(os.Stdout, result)
	}

	if stats {
		if err := printStats(ctx, os.Stdout, st); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func printResult(out io.Writer, r models.IngestResult) {
	fmt.Fprintf(out, "%s: read %d rows (%d below floor, %d without categories), created %d accounts, %d categories, %d associations, %d observations\n",
		r.Source, r.Load.RowsRead, r.Load.RowsBelowFloor, r.Load.RowsWithoutCategories,
		r.AccountsCreated, r.CategoriesCreated, r.AssociationsCreated, r.ObservationsCreated)
}

func printStats(ctx context.Context, out io.Writer, r store.Reader) error {
	counts, err := r.TableCounts(ctx)
	if err != nil {
		return fmt.Errorf("count rows: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS")
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%d\n", c.Table, c.Rows)
	}
	return w.Flush()
}
