package models

import "github.com/shopspring/decimal"

// NextStatus maps (previous status, total paid, total owed) to the new status
// after a payment lands. OVERDUE is never entered here; only the sweeper sets
// it. A zero paid amount preserves the previous status, so an OVERDUE rent
// stays OVERDUE until a real payment arrives.
func NextStatus(prev RentStatus, paidAmount, amount decimal.Decimal) RentStatus {
	switch {
	case paidAmount.Cmp(amount) >= 0:
		return StatusPaid
	case paidAmount.Cmp(decimal.Zero) > 0:
		return StatusPartial
	default:
		return prev
	}
}
