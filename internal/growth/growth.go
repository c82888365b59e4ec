// Package growth computes percentage subscriber growth over a rolling window
// anchored at the most recent stored observation.
package growth

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"socialpulse/internal/models"
	"socialpulse/internal/store"
)

const (
	DefaultWindowDays = 30
	DefaultThreshold  = 10.0
)

var (
	ErrInvalidWindow    = errors.New("window must be at least one day")
	ErrInvalidThreshold = errors.New("threshold must be a finite number")
)

var hundred = decimal.NewFromInt(100)

// Options selects the analysis window and growth cut-off.
type Options struct {
	WindowDays int
	// Threshold is a percentage; only growth strictly above it is reported.
	Threshold float64
}

// DefaultOptions returns a 30 day window with a 10% threshold.
func DefaultOptions() Options {
	return Options{WindowDays: DefaultWindowDays, Threshold: DefaultThreshold}
}

// Validate checks the window and threshold.
func (o Options) Validate() error {
	if o.WindowDays < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindow, o.WindowDays)
	}
	if math.IsNaN(o.Threshold) || math.IsInf(o.Threshold, 0) {
		return ErrInvalidThreshold
	}
	return nil
}

// Window returns the exclusive lower bound of the window ending at reference.
func (o Options) Window(reference time.Time) time.Time {
	return reference.AddDate(0, 0, -o.WindowDays)
}

// Analyzer answers growth queries from stored observations.
type Analyzer struct {
	reader store.Reader
}

// NewAnalyzer creates an analyzer reading from r.
func NewAnalyzer(r store.Reader) *Analyzer {
	return &Analyzer{reader: r}
}

// Analyze returns one page of accounts whose growth over the window exceeds
// the threshold. The report has HasData false when nothing is stored.
func (a *Analyzer) Analyze(ctx context.Context, opts Options, page store.Page) (models.GrowthReport, error) {
	if err := opts.Validate(); err != nil {
		return models.GrowthReport{}, err
	}

	report := models.GrowthReport{
		WindowDays: opts.WindowDays,
		Threshold:  opts.Threshold,
		Records:    []models.GrowthRecord{},
	}

	reference, ok, err := a.reader.LatestObservation(ctx)
	if err != nil {
		return report, fmt.Errorf("get reference date: %w", err)
	}
	if !ok {
		return report, nil
	}

	report.HasData = true
	report.ReferenceDate = reference
	report.WindowStart = opts.Window(reference)

	observations, err := a.reader.ObservationsAfter(ctx, report.WindowStart)
	if err != nil {
		return report, fmt.Errorf("load window observations: %w", err)
	}

	records := Compute(observations, opts.Threshold)
	report.Total = len(records)
	report.Records = paginate(records, page)
	return report, nil
}

// Compute groups observations by account and returns the accounts whose
// growth from earliest to latest observation strictly exceeds threshold,
// ordered by growth descending then account id. Accounts with a single
// observation or a non-positive baseline are skipped. Growth is rounded to
// two places before the threshold comparison.
func Compute(observations []models.Historical, threshold float64) []models.GrowthRecord {
	type span struct {
		first, last models.Historical
		n           int
	}

	spans := make(map[string]*span)
	for _, o := range observations {
		s, ok := spans[o.AccountID]
		if !ok {
			spans[o.AccountID] = &span{first: o, last: o, n: 1}
			continue
		}
		s.n++
		if o.ObservedAt.Before(s.first.ObservedAt) {
			s.first = o
		}
		if o.ObservedAt.After(s.last.ObservedAt) {
			s.last = o
		}
	}

	type ranked struct {
		record models.GrowthRecord
		growth decimal.Decimal
	}

	limit := decimal.NewFromFloat(threshold)
	var out []ranked
	for accountID, s := range spans {
		if s.n < 2 || s.first.SubscriberCount <= 0 {
			continue
		}

		baseline := decimal.NewFromInt(s.first.SubscriberCount)
		change := decimal.NewFromInt(s.last.SubscriberCount - s.first.SubscriberCount)
		// Ties round half to even.
		pct := change.Mul(hundred).Div(baseline).RoundBank(2)
		if !pct.GreaterThan(limit) {
			continue
		}

		out = append(out, ranked{
			growth: pct,
			record: models.GrowthRecord{
				AccountID:           accountID,
				BaselineSubscribers: s.first.SubscriberCount,
				CurrentSubscribers:  s.last.SubscriberCount,
				GrowthPercentage:    pct.InexactFloat64(),
				BaselineDate:        s.first.ObservedAt,
				CurrentDate:         s.last.ObservedAt,
			},
		})
	}

	slices.SortFunc(out, func(a, b ranked) int {
		if c := b.growth.Cmp(a.growth); c != 0 {
			return c
		}
		return cmp.Compare(a.record.AccountID, b.record.AccountID)
	})

	records := make([]models.GrowthRecord, len(out))
	for i, r := range out {
		records[i] = r.record
	}
	return records
}

func paginate(records []models.GrowthRecord, page store.Page) []models.GrowthRecord {
	if page.Offset >= len(records) {
		return []models.GrowthRecord{}
	}
	end := len(records)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return records[page.Offset:end]
}
