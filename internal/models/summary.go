package models

import "github.com/shopspring/decimal"

// MonthlySummary aggregates collection figures for all rents whose due date
// falls inside one calendar month.
type MonthlySummary struct {
	Month            string          `json:"month"`
	Year             int             `json:"year"`
	TotalExpected    decimal.Decimal `json:"total_expected"`
	TotalCollected   decimal.Decimal `json:"total_collected"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalOverdue     decimal.Decimal `json:"total_overdue"`
	PaidCount        int             `json:"paid_count"`
	PendingCount     int             `json:"pending_count"`
	OverdueCount     int             `json:"overdue_count"`
	PartialCount     int             `json:"partial_count"`
}
