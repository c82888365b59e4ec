package loader

import (
	"errors"
	"testing"
	"time"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1500", 1500, false},
		{" 42 ", 42, false},
		{"1500.0", 1500, false},
		{"-3", -3, false},
		{"", 0, true},
		{"abc", 0, true},
		{"12.5", 0, true},
		{"NaN", 0, true},
	}

	for _, tt := range tests {
		got, err := parseCount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseCount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in    string
		extra []string
		want  time.Time
	}{
		{"2024-01-02", nil, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-01-02T03:04:05Z", nil, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2024-01-02T05:04:05+02:00", nil, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2024-01-02 03:04:05", nil, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2024-01-02T03:04:05", nil, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2024-01-02 03:04:05+00:00", nil, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2024-01-02 03:04:05.123456789", nil, time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.UTC)},
		{"02/01/2024", []string{"02/01/2006"}, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := parseTime(tt.in, tt.extra)
		if err != nil {
			t.Errorf("parseTime(%q) error = %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) || got.Location() != time.UTC {
			t.Errorf("parseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := parseTime("yesterday", nil); !errors.Is(err, errBadTime) {
		t.Errorf("parseTime(yesterday) error = %v, want errBadTime", err)
	}
	if _, err := parseTime("", nil); !errors.Is(err, errEmpty) {
		t.Errorf("parseTime(\"\") error = %v, want errEmpty", err)
	}
}
