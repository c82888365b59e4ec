package store

import (
	"errors"
	"fmt"
)

var (
	// ErrCategoryNotFound is returned when a category name is unknown.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrConflict is returned when a uniqueness constraint rejected a write,
	// which only happens if two ingestion runs raced on the same rows.
	ErrConflict = errors.New("conflicting concurrent write")
)

// UnavailableError reports a transient store failure. The operation did not
// take effect and may be retried.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is, or wraps, an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
