package models

import "time"

// Observation is one normalized row produced by the loader: a single
// (account, category) pairing with the count observed at a point in time.
type Observation struct {
	AccountID       string
	SubscriberCount int64
	Category        string
	ObservedAt      time.Time
}

// LoadStats summarizes what the loader did with a batch file.
type LoadStats struct {
	RowsRead              int `json:"rows_read"`
	RowsBelowFloor        int `json:"rows_below_floor"`
	RowsWithoutCategories int `json:"rows_without_categories"`
	RowsEmitted           int `json:"rows_emitted"`
}

// Batch is the loader output for one file.
type Batch struct {
	Source       string
	Observations []Observation
	Stats        LoadStats
}
