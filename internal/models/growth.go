package models

import "time"

// GrowthRecord is one account's growth over the analysis window.
type GrowthRecord struct {
	AccountID           string    `json:"account_id"`
	BaselineSubscribers int64     `json:"baseline_subscribers"`
	CurrentSubscribers  int64     `json:"current_subscribers"`
	GrowthPercentage    float64   `json:"growth_percentage"`
	BaselineDate        time.Time `json:"baseline_date"`
	CurrentDate         time.Time `json:"current_date"`
}

// GrowthReport is one page of growth analysis results.
type GrowthReport struct {
	HasData       bool           `json:"-"`
	ReferenceDate time.Time      `json:"reference_date"`
	WindowStart   time.Time      `json:"window_start"`
	WindowDays    int            `json:"window_days"`
	Threshold     float64        `json:"threshold"`
	Total         int            `json:"total"`
	Records       []GrowthRecord `json:"high_growth_accounts"`
}
