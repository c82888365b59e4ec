package models

import "time"

// IngestResult reports what an ingestion run created.
type IngestResult struct {
	RunID               string    `json:"run_id"`
	Source              string    `json:"source,omitempty"`
	AccountsCreated     int       `json:"accounts_created"`
	CategoriesCreated   int       `json:"categories_created"`
	AssociationsCreated int       `json:"associations_created"`
	ObservationsCreated int       `json:"observations_created"`
	Load                LoadStats `json:"load"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
}

// Created returns the total number of rows written by the run.
func (r IngestResult) Created() int {
	return r.AccountsCreated + r.CategoriesCreated + r.AssociationsCreated + r.ObservationsCreated
}

// TableCount is the row count of one stored relation.
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// Table names shared by both store backends.
const (
	TableAccounts          = "accounts"
	TableCategories        = "categories"
	TableAccountCategories = "account_and_categories"
	TableHistorical        = "historical"
)

// Tables lists the stored relations in dependency order.
var Tables = []string{TableAccounts, TableCategories, TableAccountCategories, TableHistorical}
