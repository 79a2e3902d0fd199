// Package storage defines the persistence contracts the rent ledger depends
// on. The postgres implementations live in internal/repositories; an
// in-memory implementation used by tests lives in internal/storage/memory.
package storage

import (
	"context"
	"time"

	"rent-backend/internal/models"
)

// RentStore is the persistence contract for rents and their payments.
// Soft-deleted rents are invisible to every method except SoftDeleteRent.
type RentStore interface {
	// CreateRent checks the tenant+room period overlap and inserts in one
	// atomic scope, so two concurrent creates for the same tenant+room cannot
	// both land. Overlap bounds are inclusive on both ends. Returns
	// *apperrors.OverlapError when a non-deleted rent already covers any part
	// of [PeriodStart, PeriodEnd].
	CreateRent(ctx context.Context, rent *models.Rent) error

	// GetRentByID returns a non-deleted rent with tenant/room display fields,
	// its payments newest first, and the derived outstanding amount.
	// Returns *apperrors.NotFoundError when missing or deleted.
	GetRentByID(ctx context.Context, id string) (*models.Rent, error)

	// UpdateRent writes amount, period bounds, due date, status and notes.
	// It never touches paid_amount.
	UpdateRent(ctx context.Context, rent *models.Rent) error

	SoftDeleteRent(ctx context.Context, id string) error

	// ListRents applies the filter and returns the page of rows plus the
	// total match count before pagination.
	ListRents(ctx context.Context, filter *models.RentFilter) ([]*models.Rent, int, error)

	// AddPayment atomically records the payment and recomputes the rent's
	// paid amount and status. The overpayment check and both writes happen in
	// one transaction. Returns *apperrors.NotFoundError or
	// *apperrors.OverpaymentError; on success the payment's ID/CreatedAt are
	// filled in and the updated bare rent is returned.
	AddPayment(ctx context.Context, rentID string, payment *models.RentPayment) (*models.Rent, error)

	// SweepOverdue moves every non-deleted PENDING/PARTIAL rent with a due
	// date before the cutoff to OVERDUE and returns the number updated. The
	// predicate is re-evaluated at write time, so it never overwrites PAID.
	SweepOverdue(ctx context.Context, before time.Time) (int64, error)

	// RentsDueBetween returns all non-deleted rents with a due date inside
	// [start, end], for aggregation.
	RentsDueBetween(ctx context.Context, start, end time.Time) ([]*models.Rent, error)
}

// Directory answers tenant/room lookups. Tenants and rooms are owned by the
// surrounding system; the ledger only reads display fields and the
// assignment fact.
type Directory interface {
	IsTenantAssigned(ctx context.Context, tenantID, roomID string) (bool, error)
	GetTenant(ctx context.Context, id string) (*models.Tenant, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
}
