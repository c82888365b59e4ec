package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"socialpulse/internal/models"
	"socialpulse/internal/store"
)

// Ingestion outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeMalformed   = "malformed"
	OutcomeUnavailable = "unavailable"
	OutcomeConflict    = "conflict"
	OutcomeError       = "error"
)

// collectTimeout bounds the store queries run on each scrape.
const collectTimeout = 5 * time.Second

var (
	tableRowsDesc = prometheus.NewDesc(
		"socialpulse_table_rows",
		"Number of stored rows per table",
		[]string{"table"},
		nil,
	)

	ingestRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "socialpulse_ingest_runs_total",
		Help: "Ingestion runs by outcome",
	}, []string{"outcome"})

	ingestRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "socialpulse_ingest_rows_created_total",
		Help: "Rows created by ingestion runs per table",
	}, []string{"table"})

	ingestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "socialpulse_ingest_duration_seconds",
		Help:    "Duration of ingestion runs",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	})
)

// TableCollector is a custom Prometheus collector that reads table row
// counts from the store on each scrape.
type TableCollector struct {
	reader store.Reader
}

// NewTableCollector creates a collector reading from r.
func NewTableCollector(r store.Reader) *TableCollector {
	return &TableCollector{reader: r}
}

// Describe sends the metric descriptor to the channel.
func (c *TableCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- tableRowsDesc
}

// Collect queries the store for table counts and emits them as gauges.
func (c *TableCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	counts, err := c.reader.TableCounts(ctx)
	if err != nil {
		slog.Error("failed to collect table metrics", "error", err)
		return
	}
	for _, tc := range counts {
		ch <- prometheus.MustNewConstMetric(
			tableRowsDesc,
			prometheus.GaugeValue,
			float64(tc.Rows),
			tc.Table,
		)
	}
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(r store.Reader) {
	initOnce.Do(func() {
		prometheus.MustRegister(NewTableCollector(r), ingestRuns, ingestRows, ingestDuration)
	})
}

// RecordIngestion records the outcome of one ingestion run.
func RecordIngestion(outcome string, result models.IngestResult, elapsed time.Duration) {
	ingestRuns.WithLabelValues(outcome).Inc()
	ingestDuration.Observe(elapsed.Seconds())
	if outcome != OutcomeSuccess {
		return
	}
	ingestRows.WithLabelValues(models.TableAccounts).Add(float64(result.AccountsCreated))
	ingestRows.WithLabelValues(models.TableCategories).Add(float64(result.CategoriesCreated))
	ingestRows.WithLabelValues(models.TableAccountCategories).Add(float64(result.AssociationsCreated))
	ingestRows.WithLabelValues(models.TableHistorical).Add(float64(result.ObservationsCreated))
}
