package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ctxCheckInterval is how many rows are decoded between cancellation checks.
const ctxCheckInterval = 4096

func readCSV(ctx context.Context, path string, opts Options) ([]rawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MalformedInputError{Path: path, Reason: "file is empty", Err: ErrMissingColumn}
	}
	if err != nil {
		return nil, &MalformedInputError{Path: path, Reason: err.Error(), Err: err}
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	var idx [4]int
	for i, column := range []string{opts.Columns.AccountID, opts.Columns.SubscriberCount, opts.Columns.Categories, opts.Columns.Date} {
		pos, ok := positions[column]
		if !ok {
			return nil, missingColumn(path, column)
		}
		idx[i] = pos
	}

	var rows []rawRow
	for n := 1; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Path: path, Row: n, Reason: err.Error(), Err: err}
		}

		var row rawRow
		if row.AccountID, err = parseAccountID(record[idx[0]]); err != nil {
			return nil, badValue(path, n, opts.Columns.AccountID, err)
		}
		if row.SubscriberCount, err = parseCount(record[idx[1]]); err != nil {
			return nil, badValue(path, n, opts.Columns.SubscriberCount, err)
		}
		row.Categories = record[idx[2]]
		if row.ObservedAt, err = parseTime(record[idx[3]], opts.TimeLayouts); err != nil {
			return nil, badValue(path, n, opts.Columns.Date, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}
