package validation

import (
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"socialpulse/internal/store"
)

// MaxCategoryLength bounds category names accepted in request paths.
const MaxCategoryLength = 200

// unsafeFilenameChars matches anything outside the allowed upload name alphabet.
var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ValidateCategory checks that a category name from a request is plausible.
func ValidateCategory(name string) (bool, string) {
	if strings.TrimSpace(name) == "" {
		return false, "Category name is required"
	}
	if len(name) > MaxCategoryLength {
		return false, "Category name is too long"
	}
	if !utf8.ValidString(name) {
		return false, "Category name must be valid UTF-8"
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false, "Category name must not contain control characters"
		}
	}
	return true, ""
}

// ParsePagination parses offset and limit query values. Empty values take
// the defaults: offset 0 and defaultLimit.
func ParsePagination(offset, limit string, defaultLimit, maxLimit int) (store.Page, bool, string) {
	page := store.Page{Offset: 0, Limit: defaultLimit}

	if offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			return page, false, "offset must be a non-negative integer"
		}
		page.Offset = n
	}

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > maxLimit {
			return page, false, "limit must be an integer between 1 and " + strconv.Itoa(maxLimit)
		}
		page.Limit = n
	}

	return page, true, ""
}

// ParseThreshold parses a non-negative count threshold.
func ParseThreshold(s string, fallback int64) (int64, bool, string) {
	if s == "" {
		return fallback, true, ""
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return fallback, false, "threshold must be a non-negative integer"
	}
	return n, true, ""
}

// ParseWindowDays parses a growth window length in days.
func ParseWindowDays(s string, fallback int) (int, bool, string) {
	if s == "" {
		return fallback, true, ""
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback, false, "window_days must be a positive integer"
	}
	return n, true, ""
}

// ParsePercentage parses a finite growth percentage.
func ParsePercentage(s string, fallback float64) (float64, bool, string) {
	if s == "" {
		return fallback, true, ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback, false, "threshold must be a finite number"
	}
	return f, true, ""
}

const maxFilenameLength = 200

// SanitizeFilename reduces an uploaded file name to a safe base name.
// Directory components are dropped and unusual characters replaced.
func SanitizeFilename(name string) (string, bool, string) {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")

	if name == "" || name == "_" {
		return "", false, "File name is required"
	}
	if len(name) > maxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) >= maxFilenameLength/2 {
			// An oversized extension is not worth keeping.
			ext = ""
		}
		name = name[:maxFilenameLength-len(ext)] + ext
	}
	return name, true, ""
}
