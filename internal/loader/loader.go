// Package loader reads raw batch extracts and turns them into normalized
// observations: one row per (account, category) pair, low-signal accounts
// removed, timestamps in canonical UTC.
package loader

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"socialpulse/internal/models"
)

// Default column names of a batch extract.
const (
	DefaultAccountColumn    = "account_id"
	DefaultCountColumn      = "subscriber_count"
	DefaultCategoriesColumn = "categories"
	DefaultDateColumn       = "date"
)

const (
	DefaultMinSubscribers int64 = 1000
	DefaultDelimiter            = ";"
)

// Columns names the four required input columns.
type Columns struct {
	AccountID       string `yaml:"account_id"`
	SubscriberCount string `yaml:"subscriber_count"`
	Categories      string `yaml:"categories"`
	Date            string `yaml:"date"`
}

// Options controls loading and transformation.
type Options struct {
	// Rows with a count at or below MinSubscribers are dropped.
	MinSubscribers int64
	Delimiter      string
	Columns        Columns
	// TimeLayouts are tried after the built-in layouts.
	TimeLayouts []string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MinSubscribers: DefaultMinSubscribers,
		Delimiter:      DefaultDelimiter,
		Columns: Columns{
			AccountID:       DefaultAccountColumn,
			SubscriberCount: DefaultCountColumn,
			Categories:      DefaultCategoriesColumn,
			Date:            DefaultDateColumn,
		},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Delimiter == "" {
		o.Delimiter = d.Delimiter
	}
	if o.Columns.AccountID == "" {
		o.Columns.AccountID = d.Columns.AccountID
	}
	if o.Columns.SubscriberCount == "" {
		o.Columns.SubscriberCount = d.Columns.SubscriberCount
	}
	if o.Columns.Categories == "" {
		o.Columns.Categories = d.Columns.Categories
	}
	if o.Columns.Date == "" {
		o.Columns.Date = d.Columns.Date
	}
	return o
}

// rawRow is one decoded input row before filtering and explosion.
type rawRow struct {
	AccountID       string
	SubscriberCount int64
	Categories      string
	ObservedAt      time.Time
}

// Supported reports whether path has an extension Load understands.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".csv":
		return true
	}
	return false
}

// Load reads the batch file at path and returns the normalized batch.
// Any malformed row rejects the whole file with a *MalformedInputError.
func Load(ctx context.Context, path string, opts Options) (models.Batch, error) {
	opts = opts.withDefaults()

	var (
		rows []rawRow
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		rows, err = readParquet(ctx, path, opts)
	case ".csv":
		rows, err = readCSV(ctx, path, opts)
	default:
		return models.Batch{}, &MalformedInputError{
			Path:   path,
			Reason: "expected a .parquet or .csv file",
			Err:    ErrUnsupportedFormat,
		}
	}
	if err != nil {
		return models.Batch{}, err
	}

	observations, stats := transform(rows, opts)
	return models.Batch{Source: path, Observations: observations, Stats: stats}, nil
}
