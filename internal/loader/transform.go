package loader

import (
	"strings"

	"socialpulse/internal/models"
)

// transform filters low-signal rows and explodes the category list. It does
// no I/O and never fails; decoding has already validated every row.
func transform(rows []rawRow, opts Options) ([]models.Observation, models.LoadStats) {
	stats := models.LoadStats{RowsRead: len(rows)}
	observations := make([]models.Observation, 0, len(rows))

	for _, row := range rows {
		if row.SubscriberCount <= opts.MinSubscribers {
			stats.RowsBelowFloor++
			continue
		}

		categories := splitCategories(row.Categories, opts.Delimiter)
		if len(categories) == 0 {
			stats.RowsWithoutCategories++
			continue
		}

		for _, category := range categories {
			observations = append(observations, models.Observation{
				AccountID:       row.AccountID,
				SubscriberCount: row.SubscriberCount,
				Category:        category,
				ObservedAt:      row.ObservedAt,
			})
		}
	}

	stats.RowsEmitted = len(observations)
	return observations, stats
}

// splitCategories splits on delim, trims tokens and drops empty ones.
func splitCategories(field, delim string) []string {
	var out []string
	for _, token := range strings.Split(field, delim) {
		if token = strings.TrimSpace(token); token != "" {
			out = append(out, token)
		}
	}
	return out
}
