package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a human-readable snapshot of a rent's ledger state.
// Invoice numbers follow INV-{roomNumber}-{periodYear}-{periodMonth}.
type Invoice struct {
	RentID        string          `json:"rent_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Tenant        InvoiceTenant   `json:"tenant"`
	Room          InvoiceRoom     `json:"room"`
	Period        InvoicePeriod   `json:"period"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Outstanding   decimal.Decimal `json:"outstanding_amount"`
	DueDate       time.Time       `json:"due_date"`
	Status        RentStatus      `json:"status"`
	Payments      []InvoiceLine   `json:"payments"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

type InvoiceTenant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type InvoiceRoom struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

type InvoicePeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// InvoiceLine is one payment row on the invoice, newest first.
type InvoiceLine struct {
	ID        string          `json:"id"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Reference string          `json:"reference,omitempty"`
}
