package growth

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"socialpulse/internal/ingest"
	"socialpulse/internal/loader"
	"socialpulse/internal/models"
	"socialpulse/internal/store"
	"socialpulse/internal/testutil"
)

func hist(account string, count int64, at time.Time) models.Historical {
	return models.Historical{AccountID: account, SubscriberCount: count, ObservedAt: at}
}

func TestComputeExample(t *testing.T) {
	observations := []models.Historical{
		hist("a", 100, testutil.Day(1)),
		hist("a", 115, testutil.Day(21)),
	}

	tests := []struct {
		threshold float64
		included  bool
	}{
		{10.0, true},
		{15.0, false},
		{20.0, false},
	}

	for _, tt := range tests {
		got := Compute(observations, tt.threshold)
		if (len(got) == 1) != tt.included {
			t.Errorf("Compute(threshold=%v) = %v, included want %v", tt.threshold, got, tt.included)
			continue
		}
		if tt.included && got[0].GrowthPercentage != 15.0 {
			t.Errorf("growth = %v, want 15.0", got[0].GrowthPercentage)
		}
	}
}

func TestComputeUsesEarliestAndLatest(t *testing.T) {
	// Out of order on purpose.
	got := Compute([]models.Historical{
		hist("a", 150, testutil.Day(10)),
		hist("a", 200, testutil.Day(20)),
		hist("a", 100, testutil.Day(1)),
	}, 0)

	if len(got) != 1 {
		t.Fatalf("Compute() returned %d records, want 1", len(got))
	}
	r := got[0]
	if r.BaselineSubscribers != 100 || r.CurrentSubscribers != 200 || r.GrowthPercentage != 100 {
		t.Errorf("record = %+v", r)
	}
	if !r.BaselineDate.Equal(testutil.Day(1)) || !r.CurrentDate.Equal(testutil.Day(20)) {
		t.Errorf("dates = %v..%v", r.BaselineDate, r.CurrentDate)
	}
}

func TestComputeExclusions(t *testing.T) {
	got := Compute([]models.Historical{
		hist("single", 100, testutil.Day(1)),
		hist("zero", 0, testutil.Day(1)),
		hist("zero", 500, testutil.Day(2)),
		hist("ok", 100, testutil.Day(1)),
		hist("ok", 200, testutil.Day(2)),
	}, 10)

	if len(got) != 1 || got[0].AccountID != "ok" {
		t.Errorf("Compute() = %+v, want only account ok", got)
	}
}

func TestComputeRoundsToTwoPlaces(t *testing.T) {
	got := Compute([]models.Historical{
		hist("a", 3, testutil.Day(1)),
		hist("a", 4, testutil.Day(2)),
	}, 0)

	if len(got) != 1 || got[0].GrowthPercentage != 33.33 {
		t.Errorf("Compute() = %+v, want 33.33", got)
	}
}

func TestComputeRoundsTiesToEven(t *testing.T) {
	tests := []struct {
		current int64
		want    float64
	}{
		{897, 12.12}, // 12.125
		{899, 12.38}, // 12.375
		{801, 0.12},  // 0.125
	}

	for _, tt := range tests {
		got := Compute([]models.Historical{
			hist("a", 800, testutil.Day(1)),
			hist("a", tt.current, testutil.Day(2)),
		}, 0)
		if len(got) != 1 || got[0].GrowthPercentage != tt.want {
			t.Errorf("800 -> %d: Compute() = %+v, want %v", tt.current, got, tt.want)
		}
	}
}

func TestComputeStrictThresholdAfterRounding(t *testing.T) {
	// 10.001% rounds to 10.00, which is not strictly above 10.
	got := Compute([]models.Historical{
		hist("a", 100000, testutil.Day(1)),
		hist("a", 110001, testutil.Day(2)),
	}, 10)

	if len(got) != 0 {
		t.Errorf("Compute() = %+v, want none", got)
	}
}

func TestComputeOrdering(t *testing.T) {
	got := Compute([]models.Historical{
		hist("c", 100, testutil.Day(1)), hist("c", 150, testutil.Day(2)),
		hist("b", 100, testutil.Day(1)), hist("b", 150, testutil.Day(2)),
		hist("a", 100, testutil.Day(1)), hist("a", 120, testutil.Day(2)),
		hist("d", 100, testutil.Day(1)), hist("d", 300, testutil.Day(2)),
	}, 0)

	want := []string{"d", "b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("Compute() returned %d records, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].AccountID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].AccountID, id)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		opts Options
		want error
	}{
		{DefaultOptions(), nil},
		{Options{WindowDays: 1, Threshold: -5}, nil},
		{Options{WindowDays: 0, Threshold: 10}, ErrInvalidWindow},
		{Options{WindowDays: 30, Threshold: math.NaN()}, ErrInvalidThreshold},
		{Options{WindowDays: 30, Threshold: math.Inf(1)}, ErrInvalidThreshold},
	}
	for _, tt := range tests {
		if err := tt.opts.Validate(); !errors.Is(err, tt.want) {
			t.Errorf("Validate(%+v) = %v, want %v", tt.opts, err, tt.want)
		}
	}
}

func seed(t *testing.T, s store.Store, observations []models.Observation) {
	t.Helper()
	engine := ingest.NewEngine(s, loader.DefaultOptions(), nil)
	if _, err := engine.Apply(context.Background(), observations); err != nil {
		t.Fatalf("seed error = %v", err)
	}
}

func obs(account string, count int64, at time.Time) models.Observation {
	return models.Observation{AccountID: account, SubscriberCount: count, Category: "music", ObservedAt: at}
}

func TestAnalyzeEmptyStore(t *testing.T) {
	a := NewAnalyzer(testutil.TestStore(t))

	report, err := a.Analyze(context.Background(), DefaultOptions(), store.Page{Limit: 10})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.HasData {
		t.Error("Analyze() on empty store reported data")
	}
	if report.Records == nil || len(report.Records) != 0 {
		t.Errorf("Records = %v, want empty slice", report.Records)
	}
}

func TestAnalyzeWindow(t *testing.T) {
	s := testutil.TestStore(t)
	seed(t, s, []models.Observation{
		// Only the day 1 observation falls outside a 30 day window ending on day 31.
		obs("a", 1000, testutil.Day(1)),
		obs("a", 2000, testutil.Day(11)),
		obs("a", 2100, testutil.Day(31)),
		obs("b", 5000, testutil.Day(11)),
		obs("b", 6000, testutil.Day(31)),
		obs("c", 9000, testutil.Day(31)),
	})

	report, err := NewAnalyzer(s).Analyze(context.Background(), DefaultOptions(), store.Page{Limit: 10})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if !report.HasData || !report.ReferenceDate.Equal(testutil.Day(31)) {
		t.Errorf("reference = %v, HasData %v", report.ReferenceDate, report.HasData)
	}
	if !report.WindowStart.Equal(testutil.Day(1)) {
		t.Errorf("WindowStart = %v, want %v", report.WindowStart, testutil.Day(1))
	}
	if report.Total != 1 || report.Records[0].AccountID != "b" || report.Records[0].GrowthPercentage != 20 {
		t.Errorf("report = %+v", report)
	}
}

func TestAnalyzePagination(t *testing.T) {
	s := testutil.TestStore(t)
	var batch []models.Observation
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		batch = append(batch,
			obs(id, 2000, testutil.Day(1)),
			obs(id, 2000+int64(i+1)*400, testutil.Day(2)),
		)
	}
	seed(t, s, batch)

	a := NewAnalyzer(s)
	ctx := context.Background()

	var seen []string
	for offset := 0; offset < 6; offset += 2 {
		report, err := a.Analyze(ctx, DefaultOptions(), store.Page{Offset: offset, Limit: 2})
		if err != nil {
			t.Fatalf("Analyze(offset=%d) error = %v", offset, err)
		}
		if report.Total != 5 {
			t.Errorf("Total = %d, want 5", report.Total)
		}
		for _, r := range report.Records {
			seen = append(seen, r.AccountID)
		}
	}

	want := []string{"e", "d", "c", "b", "a"}
	if len(seen) != len(want) {
		t.Fatalf("pages returned %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("pages returned %v, want %v", seen, want)
			break
		}
	}
}

func TestAnalyzeRejectsInvalidOptions(t *testing.T) {
	a := NewAnalyzer(testutil.TestStore(t))

	_, err := a.Analyze(context.Background(), Options{WindowDays: 0, Threshold: 10}, store.Page{Limit: 10})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("Analyze() error = %v, want ErrInvalidWindow", err)
	}
}
