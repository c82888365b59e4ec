package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("required column missing")

	// ErrUnsupportedFormat is returned for files that are neither Parquet nor CSV.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// MalformedInputError rejects a whole batch. Row is 1-based and zero when the
// problem is with the file as a whole (for example a missing column).
type MalformedInputError struct {
	Path   string
	Row    int
	Column string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	switch {
	case e.Row > 0:
		return fmt.Sprintf("malformed input %s: row %d, column %q: %s", e.Path, e.Row, e.Column, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("malformed input %s: column %q: %s", e.Path, e.Column, e.Reason)
	default:
		return fmt.Sprintf("malformed input %s: %s", e.Path, e.Reason)
	}
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is, or wraps, a MalformedInputError.
func IsMalformed(err error) bool {
	var me *MalformedInputError
	return errors.As(err, &me)
}

func missingColumn(path, column string) error {
	return &MalformedInputError{Path: path, Column: column, Reason: "column not found", Err: ErrMissingColumn}
}

func badValue(path string, row int, column string, err error) error {
	return &MalformedInputError{Path: path, Row: row, Column: column, Reason: err.Error(), Err: err}
}
