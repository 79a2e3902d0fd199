package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentStatus tracks where a rent sits in its collection lifecycle.
type RentStatus string

const (
	StatusPending RentStatus = "PENDING"
	StatusPartial RentStatus = "PARTIAL"
	StatusPaid    RentStatus = "PAID"
	StatusOverdue RentStatus = "OVERDUE"
)

// IsValid reports whether s is a known rent status.
func (s RentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Rent is one billing obligation: a tenant owes an amount for occupying a
// room over a period. PaidAmount always equals the sum of the rent's payment
// records; it is never edited directly.
type Rent struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	RoomID      string          `json:"room_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	DueDate     time.Time       `json:"due_date"`
	Status      RentStatus      `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
	IsDeleted   bool            `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Derived and joined fields, populated on read paths.
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Tenant            *Tenant         `json:"tenant,omitempty"`
	Room              *Room           `json:"room,omitempty"`
	Payments          []RentPayment   `json:"payments,omitempty"`
}

// Outstanding returns amount - paidAmount.
func (r *Rent) Outstanding() decimal.Decimal {
	return r.Amount.Sub(r.PaidAmount)
}

// CreateRentRequest is the request body for creating a rent. Dates are
// "2006-01-02" strings.
type CreateRentRequest struct {
	TenantID    string          `json:"tenant_id"`
	RoomID      string          `json:"room_id"`
	Amount      decimal.Decimal `json:"amount"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	DueDate     string          `json:"due_date"`
	Notes       string          `json:"notes"`
}

// UpdateRentRequest carries direct field edits. Absent fields are left
// untouched. PaidAmount is deliberately not editable; it only moves through
// the payment ledger.
type UpdateRentRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	PeriodStart *string          `json:"period_start"`
	PeriodEnd   *string          `json:"period_end"`
	DueDate     *string          `json:"due_date"`
	Status      *RentStatus      `json:"status"`
	Notes       *string          `json:"notes"`
}

// RentFilter is the query-engine input: filters, free-text search, sorting
// and pagination.
type RentFilter struct {
	TenantID  string
	RoomID    string
	Status    RentStatus
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Pagination describes one page of a larger result set.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// RentList is a page of rents plus pagination metadata.
type RentList struct {
	Rents      []*Rent    `json:"rents"`
	Pagination Pagination `json:"pagination"`
}
