package loader

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"socialpulse/internal/models"
)

var (
	errEmpty       = errors.New("value is empty")
	errNotInteger  = errors.New("value is not an integer")
	errBadTime     = errors.New("value is not a recognised timestamp")
	errUnsupported = errors.New("unsupported column type")
)

// builtinLayouts are tried in order. Layouts without a zone parse as UTC.
var builtinLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func parseAccountID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errEmpty
	}
	return s, nil
}

func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmpty
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	// Pandas writes integer columns containing nulls as floats ("1500.0").
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errNotInteger, s)
	}
	return floatCount(f)
}

func floatCount(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%w: %v", errNotInteger, f)
	}
	return int64(f), nil
}

func parseTime(s string, extra []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmpty
	}
	for _, layouts := range [][]string{builtinLayouts, extra} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return models.CanonicalTime(t), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errBadTime, s)
}
