package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"socialpulse/internal/testutil"
)

func TestLoadParquet(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteParquet(t, dir, "batch.parquet", []testutil.Row{
		{AccountID: "a", SubscriberCount: 5000, Categories: "music;tech", Date: testutil.Day(1)},
		{AccountID: "b", SubscriberCount: 900, Categories: "music", Date: testutil.Day(1)},
		{AccountID: "c", SubscriberCount: 1_200_000, Categories: "art", Date: testutil.Day(2)},
	})

	batch, err := Load(context.Background(), path, DefaultOptions())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if batch.Source != path {
		t.Errorf("Source = %q, want %q", batch.Source, path)
	}
	if batch.Stats.RowsRead != 3 || batch.Stats.RowsBelowFloor != 1 || batch.Stats.RowsEmitted != 3 {
		t.Errorf("Stats = %+v", batch.Stats)
	}
	last := batch.Observations[2]
	if last.AccountID != "c" || last.Category != "art" || last.SubscriberCount != 1_200_000 {
		t.Errorf("last observation = %+v", last)
	}
	if !last.ObservedAt.Equal(testutil.Day(2)) {
		t.Errorf("last observation time = %v, want %v", last.ObservedAt, testutil.Day(2))
	}
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteCSV(t, dir, "batch.csv", []testutil.Row{
		{AccountID: "a", SubscriberCount: 5000, Categories: "music; tech", Date: testutil.Day(1)},
		{AccountID: "b", SubscriberCount: 7000, Categories: "", Date: testutil.Day(1)},
	})

	batch, err := Load(context.Background(), path, DefaultOptions())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(batch.Observations) != 2 {
		t.Fatalf("Load() emitted %d observations, want 2", len(batch.Observations))
	}
	if batch.Observations[1].Category != "tech" {
		t.Errorf("second category = %q, want tech", batch.Observations[1].Category)
	}
	if batch.Stats.RowsWithoutCategories != 1 {
		t.Errorf("RowsWithoutCategories = %d, want 1", batch.Stats.RowsWithoutCategories)
	}
}

func TestLoadRemappedColumns(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteRaw(t, dir, "remapped.csv",
		"handle,followers,tags,observed\n"+
			"a,5000,music|tech,2024-01-01\n")

	opts := DefaultOptions()
	opts.Delimiter = "|"
	opts.Columns = Columns{AccountID: "handle", SubscriberCount: "followers", Categories: "tags", Date: "observed"}

	batch, err := Load(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(batch.Observations) != 2 {
		t.Errorf("Load() emitted %d observations, want 2", len(batch.Observations))
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		row     int
		column  string
	}{
		{
			name:    "missing column",
			content: "account_id,subscriber_count,date\na,5000,2024-01-01\n",
			column:  "categories",
		},
		{
			name:    "empty account",
			content: "account_id,subscriber_count,categories,date\na,5000,music,2024-01-01\n,5000,music,2024-01-01\n",
			row:     2,
			column:  "account_id",
		},
		{
			name:    "non-numeric count",
			content: "account_id,subscriber_count,categories,date\na,lots,music,2024-01-01\n",
			row:     1,
			column:  "subscriber_count",
		},
		{
			name:    "bad timestamp",
			content: "account_id,subscriber_count,categories,date\na,5000,music,2024-01-01\nb,10,music,someday\n",
			row:     2,
			column:  "date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteRaw(t, t.TempDir(), "bad.csv", tt.content)

			batch, err := Load(context.Background(), path, DefaultOptions())
			var me *MalformedInputError
			if !errors.As(err, &me) {
				t.Fatalf("Load() error = %v, want MalformedInputError", err)
			}
			if me.Row != tt.row || me.Column != tt.column {
				t.Errorf("error at row %d column %q, want row %d column %q", me.Row, me.Column, tt.row, tt.column)
			}
			if len(batch.Observations) != 0 {
				t.Error("Load() returned partial output on error")
			}
		})
	}
}

func TestLoadMissingColumnIsSentinel(t *testing.T) {
	path := testutil.WriteRaw(t, t.TempDir(), "bad.csv", "account_id,categories,date\n")

	_, err := Load(context.Background(), path, DefaultOptions())
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Load() error = %v, want ErrMissingColumn", err)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := testutil.WriteRaw(t, t.TempDir(), "batch.json", "[]")

	_, err := Load(context.Background(), path, DefaultOptions())
	if !errors.Is(err, ErrUnsupportedFormat) || !IsMalformed(err) {
		t.Errorf("Load() error = %v, want malformed ErrUnsupportedFormat", err)
	}
}

func TestLoadNotParquet(t *testing.T) {
	path := testutil.WriteRaw(t, t.TempDir(), "batch.parquet", "this is not parquet")

	if _, err := Load(context.Background(), path, DefaultOptions()); !IsMalformed(err) {
		t.Errorf("Load() error = %v, want MalformedInputError", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/batch.csv", DefaultOptions())
	if err == nil || IsMalformed(err) {
		t.Errorf("Load() error = %v, want plain I/O error", err)
	}
}

func TestLoadParquetDateAndNullColumns(t *testing.T) {
	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "account_id", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "subscriber_count", Type: arrow.PrimitiveTypes.Int32},
		{Name: "categories", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "date", Type: arrow.FixedWidthTypes.Date32},
	}, nil)

	accounts := array.NewStringBuilder(pool)
	defer accounts.Release()
	counts := array.NewInt32Builder(pool)
	defer counts.Release()
	categories := array.NewStringBuilder(pool)
	defer categories.Release()
	dates := array.NewDate32Builder(pool)
	defer dates.Release()

	accounts.AppendValues([]string{"a", "b"}, nil)
	counts.AppendValues([]int32{5000, 6000}, nil)
	categories.Append("music")
	categories.AppendNull()
	dates.AppendValues([]arrow.Date32{
		arrow.Date32FromTime(testutil.Day(1)),
		arrow.Date32FromTime(testutil.Day(2)),
	}, nil)

	cols := []arrow.Array{accounts.NewArray(), counts.NewArray(), categories.NewArray(), dates.NewArray()}
	for _, c := range cols {
		defer c.Release()
	}
	record := array.NewRecord(schema, cols, 2)
	defer record.Release()

	path := testutil.WriteRecord(t, t.TempDir(), "dates.parquet", record)

	batch, err := Load(context.Background(), path, DefaultOptions())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(batch.Observations) != 1 || batch.Stats.RowsWithoutCategories != 1 {
		t.Fatalf("Load() = %+v", batch)
	}
	if !batch.Observations[0].ObservedAt.Equal(testutil.Day(1)) {
		t.Errorf("date = %v, want %v", batch.Observations[0].ObservedAt, testutil.Day(1))
	}
}

func TestLoadParquetNullAccount(t *testing.T) {
	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "account_id", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "subscriber_count", Type: arrow.PrimitiveTypes.Int64},
		{Name: "categories", Type: arrow.BinaryTypes.String},
		{Name: "date", Type: arrow.BinaryTypes.String},
	}, nil)

	accounts := array.NewStringBuilder(pool)
	defer accounts.Release()
	counts := array.NewInt64Builder(pool)
	defer counts.Release()
	categories := array.NewStringBuilder(pool)
	defer categories.Release()
	dates := array.NewStringBuilder(pool)
	defer dates.Release()

	accounts.Append("a")
	accounts.AppendNull()
	counts.AppendValues([]int64{5000, 6000}, nil)
	categories.AppendValues([]string{"music", "music"}, nil)
	dates.AppendValues([]string{"2024-01-01", "2024-01-02"}, nil)

	cols := []arrow.Array{accounts.NewArray(), counts.NewArray(), categories.NewArray(), dates.NewArray()}
	for _, c := range cols {
		defer c.Release()
	}
	record := array.NewRecord(schema, cols, 2)
	defer record.Release()

	path := testutil.WriteRecord(t, t.TempDir(), "nulls.parquet", record)

	_, err := Load(context.Background(), path, DefaultOptions())
	var me *MalformedInputError
	if !errors.As(err, &me) {
		t.Fatalf("Load() error = %v, want MalformedInputError", err)
	}
	if me.Row != 2 || me.Column != "account_id" {
		t.Errorf("error at row %d column %q, want row 2 column account_id", me.Row, me.Column)
	}
}

func TestSupported(t *testing.T) {
	tests := map[string]bool{
		"a.parquet": true,
		"a.PARQUET": true,
		"a.csv":     true,
		"a.json":    false,
		"parquet":   false,
	}
	for path, want := range tests {
		if got := Supported(path); got != want {
			t.Errorf("Supported(%q) = %v, want %v", path, got, want)
		}
	}
}
