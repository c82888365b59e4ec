// Package testutil provides test utilities and helpers.
package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"socialpulse/internal/db/sqlite"
)

// Row is one line of a batch extract fixture.
type Row struct {
	AccountID       string
	SubscriberCount int64
	Categories      string
	Date            time.Time
}

// Day returns midnight UTC of the given day in January 2024.
func Day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

// TestStore opens a private in-memory SQLite store that is closed when the
// test ends.
func TestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.New(sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// WriteParquet writes rows to dir/name as a Parquet file with the default
// column names and returns its path.
func WriteParquet(t *testing.T, dir, name string, rows []Row) string {
	t.Helper()

	pool := memory.NewGoAllocator()

	dateType := &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "account_id", Type: arrow.BinaryTypes.String},
		{Name: "subscriber_count", Type: arrow.PrimitiveTypes.Int64},
		{Name: "categories", Type: arrow.BinaryTypes.String},
		{Name: "date", Type: dateType},
	}, nil)

	accountBuilder := array.NewStringBuilder(pool)
	defer accountBuilder.Release()
	countBuilder := array.NewInt64Builder(pool)
	defer countBuilder.Release()
	categoriesBuilder := array.NewStringBuilder(pool)
	defer categoriesBuilder.Release()
	dateBuilder := array.NewTimestampBuilder(pool, dateType)
	defer dateBuilder.Release()

	for _, r := range rows {
		accountBuilder.Append(r.AccountID)
		countBuilder.Append(r.SubscriberCount)
		categoriesBuilder.Append(r.Categories)
		dateBuilder.Append(arrow.Timestamp(r.Date.UnixMicro()))
	}

	columns := []arrow.Array{
		accountBuilder.NewArray(),
		countBuilder.NewArray(),
		categoriesBuilder.NewArray(),
		dateBuilder.NewArray(),
	}
	for _, c := range columns {
		defer c.Release()
	}

	record := array.NewRecord(schema, columns, int64(len(rows)))
	defer record.Release()

	return WriteRecord(t, dir, name, record)
}

// WriteRecord writes an arbitrary record to dir/name as Parquet.
func WriteRecord(t *testing.T, dir, name string, record arrow.Record) string {
	t.Helper()

	var buf bytes.Buffer
	writer, err := pqarrow.NewFileWriter(record.Schema(), &buf, nil, pqarrow.DefaultWriterProps())
	if err != nil {
		t.Fatalf("failed to create parquet writer: %v", err)
	}
	if err := writer.Write(record); err != nil {
		t.Fatalf("failed to write parquet record: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close parquet writer: %v", err)
	}

	return writeFile(t, dir, name, buf.Bytes())
}

// WriteCSV writes rows to dir/name as CSV with the default column names and
// returns its path. Dates are written in RFC 3339.
func WriteCSV(t *testing.T, dir, name string, rows []Row) string {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"account_id", "subscriber_count", "categories", "date"})
	for _, r := range rows {
		w.Write([]string{
			r.AccountID,
			strconv.FormatInt(r.SubscriberCount, 10),
			r.Categories,
			r.Date.UTC().Format(time.RFC3339Nano),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	return writeFile(t, dir, name, buf.Bytes())
}

// WriteRaw writes content verbatim to dir/name.
func WriteRaw(t *testing.T, dir, name, content string) string {
	t.Helper()
	return writeFile(t, dir, name, []byte(content))
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
