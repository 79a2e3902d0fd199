package repositories

import (
	"context"
	"errors"
	"fmt"

	"rent-backend/internal/apperrors"
	"rent-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DirectoryRepository reads tenant and room display data plus the current
// assignment fact. Tenant/room lifecycle is owned elsewhere; the ledger only
// looks things up by ID.
type DirectoryRepository struct {
	DB *pgxpool.Pool
}

func NewDirectoryRepository(db *pgxpool.Pool) *DirectoryRepository {
	return &DirectoryRepository{DB: db}
}

func (r *DirectoryRepository) IsTenantAssigned(ctx context.Context, tenantID, roomID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM room_assignments
			WHERE tenant_id = $1 AND room_id = $2 AND active = TRUE
		)
	`

	var assigned bool
	err := r.DB.QueryRow(ctx, query, tenantID, roomID).Scan(&assigned)
	if err != nil {
		return false, fmt.Errorf("failed to check room assignment: %w", err)
	}
	return assigned, nil
}

func (r *DirectoryRepository) GetTenant(ctx context.Context, id string) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	err := r.DB.QueryRow(ctx,
		"SELECT id, first_name, last_name, email, COALESCE(phone, '') FROM tenants WHERE id = $1", id,
	).Scan(&tenant.ID, &tenant.FirstName, &tenant.LastName, &tenant.Email, &tenant.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Resource: "tenant", ID: id}
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

func (r *DirectoryRepository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	room := &models.Room{}
	err := r.DB.QueryRow(ctx,
		"SELECT id, number, type, floor FROM rooms WHERE id = $1", id,
	).Scan(&room.ID, &room.Number, &room.Type, &room.Floor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Resource: "room", ID: id}
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}
