// Package apperrors defines the domain error taxonomy surfaced to callers.
// All of these are recoverable-by-caller errors; anything else propagating
// out of the storage layer is treated as an internal error.
package apperrors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports malformed input, rejected before any transaction opens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidation builds a ValidationError with a formatted message.
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an operation against a non-existent or soft-deleted record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NotAssignedError reports a rent creation for a tenant not assigned to the room.
type NotAssignedError struct {
	TenantID string
	RoomID   string
}

func (e *NotAssignedError) Error() string {
	return fmt.Sprintf("tenant %s is not assigned to room %s", e.TenantID, e.RoomID)
}

// OverlapError reports a rent period overlapping an existing non-deleted rent
// for the same tenant and room.
type OverlapError struct {
	TenantID string
	RoomID   string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("rent period overlaps an existing rent for tenant %s in room %s", e.TenantID, e.RoomID)
}

// OverpaymentError reports a payment that would exceed the outstanding balance.
type OverpaymentError struct {
	Outstanding decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment amount exceeds outstanding balance of %s", e.Outstanding.String())
}

// ConcurrencyConflictError reports an exhausted optimistic transaction retry.
type ConcurrencyConflictError struct {
	Msg string
}

func (e *ConcurrencyConflictError) Error() string { return e.Msg }
