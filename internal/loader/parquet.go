package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"socialpulse/internal/models"
)

// parquetBatchSize is the number of rows per record batch read from a file.
const parquetBatchSize = 8192

func readParquet(ctx context.Context, path string, opts Options) ([]rawRow, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return nil, &MalformedInputError{Path: path, Reason: "not a parquet file: " + err.Error(), Err: err}
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: parquetBatchSize}, memory.DefaultAllocator)
	if err != nil {
		return nil, &MalformedInputError{Path: path, Reason: err.Error(), Err: err}
	}

	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &MalformedInputError{Path: path, Reason: err.Error(), Err: err}
	}
	defer tbl.Release()

	schema := tbl.Schema()
	columns := []struct {
		name  string
		valid func(arrow.DataType) bool
	}{
		{opts.Columns.AccountID, isStringType},
		{opts.Columns.SubscriberCount, isCountType},
		{opts.Columns.Categories, isStringType},
		{opts.Columns.Date, isTimeType},
	}
	var idx [4]int
	for i, c := range columns {
		fields := schema.FieldIndices(c.name)
		if len(fields) == 0 {
			return nil, missingColumn(path, c.name)
		}
		idx[i] = fields[0]
		if dt := schema.Field(idx[i]).Type; !c.valid(dt) {
			return nil, &MalformedInputError{
				Path:   path,
				Column: c.name,
				Reason: fmt.Sprintf("%s: %s", errUnsupported, dt),
				Err:    errUnsupported,
			}
		}
	}

	tr := array.NewTableReader(tbl, parquetBatchSize)
	defer tr.Release()

	rows := make([]rawRow, 0, tbl.NumRows())
	n := 0
	for tr.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec := tr.Record()
		accounts := rec.Column(idx[0])
		counts := rec.Column(idx[1])
		categories := rec.Column(idx[2])
		dates := rec.Column(idx[3])

		for i := 0; i < int(rec.NumRows()); i++ {
			n++

			var row rawRow
			account, _ := stringAt(accounts, i)
			if row.AccountID, err = parseAccountID(account); err != nil {
				return nil, badValue(path, n, opts.Columns.AccountID, err)
			}
			if row.SubscriberCount, err = countAt(counts, i); err != nil {
				return nil, badValue(path, n, opts.Columns.SubscriberCount, err)
			}
			row.Categories, _ = stringAt(categories, i)
			if row.ObservedAt, err = timeAt(dates, i, opts.TimeLayouts); err != nil {
				return nil, badValue(path, n, opts.Columns.Date, err)
			}
			rows = append(rows, row)
		}
	}
	if err := tr.Err(); err != nil {
		return nil, &MalformedInputError{Path: path, Row: n + 1, Reason: err.Error(), Err: err}
	}

	return rows, nil
}

func isStringType(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return true
	case arrow.DICTIONARY:
		return isStringType(dt.(*arrow.DictionaryType).ValueType)
	}
	return false
}

func isCountType(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT32, arrow.FLOAT64:
		return true
	}
	return isStringType(dt)
}

func isTimeType(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return true
	}
	return isStringType(dt)
}

// stringAt returns the string at i; ok is false for nulls.
func stringAt(arr arrow.Array, i int) (string, bool) {
	if arr.IsNull(i) {
		return "", false
	}
	switch a := arr.(type) {
	case *array.String:
		return a.Value(i), true
	case *array.LargeString:
		return a.Value(i), true
	case *array.Dictionary:
		return stringAt(a.Dictionary(), a.GetValueIndex(i))
	}
	return "", false
}

func countAt(arr arrow.Array, i int) (int64, error) {
	if arr.IsNull(i) {
		return 0, errEmpty
	}
	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(i), nil
	case *array.Int32:
		return int64(a.Value(i)), nil
	case *array.Int16:
		return int64(a.Value(i)), nil
	case *array.Int8:
		return int64(a.Value(i)), nil
	case *array.Uint64:
		if v := a.Value(i); v <= math.MaxInt64 {
			return int64(v), nil
		}
		return 0, fmt.Errorf("%w: %d overflows int64", errNotInteger, a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i)), nil
	case *array.Uint16:
		return int64(a.Value(i)), nil
	case *array.Uint8:
		return int64(a.Value(i)), nil
	case *array.Float64:
		return floatCount(a.Value(i))
	case *array.Float32:
		return floatCount(float64(a.Value(i)))
	}
	if s, ok := stringAt(arr, i); ok {
		return parseCount(s)
	}
	return 0, errUnsupported
}

func timeAt(arr arrow.Array, i int, layouts []string) (time.Time, error) {
	if arr.IsNull(i) {
		return time.Time{}, errEmpty
	}
	switch a := arr.(type) {
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return models.CanonicalTime(a.Value(i).ToTime(unit)), nil
	case *array.Date32:
		return models.CanonicalTime(a.Value(i).ToTime()), nil
	case *array.Date64:
		return models.CanonicalTime(a.Value(i).ToTime()), nil
	}
	if s, ok := stringAt(arr, i); ok {
		return parseTime(s, layouts)
	}
	return time.Time{}, errUnsupported
}
