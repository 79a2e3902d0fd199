package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a settlement was made. Payments are recorded as
// already-settled facts, not processed through a gateway.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodCard         PaymentMethod = "CARD"
	MethodUPI          PaymentMethod = "UPI"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCheque       PaymentMethod = "CHEQUE"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodCard, MethodUPI, MethodBankTransfer, MethodCheque:
		return true
	}
	return false
}

// RentPayment is one immutable settlement record against a rent.
type RentPayment struct {
	ID        string          `json:"id"`
	RentID    string          `json:"rent_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
	Method    PaymentMethod   `json:"method"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateRentPaymentRequest is the request body for recording a payment.
// PaidAt is a "2006-01-02" string.
type CreateRentPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    string          `json:"paid_at"`
	Method    PaymentMethod   `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

// PaymentResult is returned by the payment ledger: the created payment plus
// the rent with recomputed paid amount, status and outstanding balance.
type PaymentResult struct {
	Payment *RentPayment `json:"payment"`
	Rent    *Rent        `json:"rent"`
}
