package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rent-backend/internal/apperrors"
	"rent-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RentRepository is the postgres-backed rent ledger store.
type RentRepository struct {
	DB *pgxpool.Pool
}

func NewRentRepository(db *pgxpool.Pool) *RentRepository {
	return &RentRepository{DB: db}
}

// sortColumns whitelists API sort keys to real columns. Anything else falls
// back to due date.
var sortColumns = map[string]string{
	"dueDate":   "r.due_date",
	"amount":    "r.amount",
	"status":    "r.status",
	"createdAt": "r.created_at",
}

const rentSelectColumns = `
	r.id, r.tenant_id, r.room_id, r.amount, r.paid_amount,
	r.period_start, r.period_end, r.due_date, r.status,
	COALESCE(r.notes, ''), COALESCE(r.created_by, ''), r.created_at, r.updated_at,
	t.id, t.first_name, t.last_name, t.email, COALESCE(t.phone, ''),
	ro.id, ro.number, ro.type, ro.floor`

func scanRentRow(row pgx.Row) (*models.Rent, error) {
	rent := &models.Rent{Tenant: &models.Tenant{}, Room: &models.Room{}}
	err := row.Scan(
		&rent.ID, &rent.TenantID, &rent.RoomID, &rent.Amount, &rent.PaidAmount,
		&rent.PeriodStart, &rent.PeriodEnd, &rent.DueDate, &rent.Status,
		&rent.Notes, &rent.CreatedBy, &rent.CreatedAt, &rent.UpdatedAt,
		&rent.Tenant.ID, &rent.Tenant.FirstName, &rent.Tenant.LastName,
		&rent.Tenant.Email, &rent.Tenant.Phone,
		&rent.Room.ID, &rent.Room.Number, &rent.Room.Type, &rent.Room.Floor,
	)
	if err != nil {
		return nil, err
	}
	rent.OutstandingAmount = rent.Outstanding()
	return rent, nil
}

// CreateRent runs the overlap check and the insert in one transaction. An
// advisory lock on the tenant+room pair serializes concurrent creates, so the
// EXISTS probe cannot go stale between check and insert.
func (r *RentRepository) CreateRent(ctx context.Context, rent *models.Rent) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", rent.TenantID+":"+rent.RoomID)
	if err != nil {
		return wrapTxError("failed to lock tenant room pair", err)
	}

	var overlap bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM rents
			WHERE tenant_id = $1 AND room_id = $2 AND is_deleted = FALSE
			AND period_start <= $4 AND period_end >= $3
		)
	`, rent.TenantID, rent.RoomID, rent.PeriodStart, rent.PeriodEnd).Scan(&overlap)
	if err != nil {
		return wrapTxError("failed to check period overlap", err)
	}
	if overlap {
		return &apperrors.OverlapError{TenantID: rent.TenantID, RoomID: rent.RoomID}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO rents (id, tenant_id, room_id, amount, paid_amount, period_start, period_end, due_date, status, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`,
		rent.ID,
		rent.TenantID,
		rent.RoomID,
		rent.Amount,
		rent.PaidAmount,
		rent.PeriodStart,
		rent.PeriodEnd,
		rent.DueDate,
		rent.Status,
		rent.Notes,
		rent.CreatedBy,
	).Scan(&rent.CreatedAt, &rent.UpdatedAt)
	if err != nil {
		return wrapTxError("failed to create rent", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapTxError("failed to commit create", err)
	}
	return nil
}

func (r *RentRepository) GetRentByID(ctx context.Context, id string) (*models.Rent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM rents r
		JOIN tenants t ON r.tenant_id = t.id
		JOIN rooms ro ON r.room_id = ro.id
		WHERE r.id = $1 AND r.is_deleted = FALSE
	`, rentSelectColumns)

	rent, err := scanRentRow(r.DB.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Resource: "rent", ID: id}
		}
		return nil, fmt.Errorf("failed to get rent: %w", err)
	}

	payments, err := r.paymentsByRentID(ctx, id)
	if err != nil {
		return nil, err
	}
	rent.Payments = payments
	return rent, nil
}

func (r *RentRepository) paymentsByRentID(ctx context.Context, rentID string) ([]models.RentPayment, error) {
	query := `
		SELECT id, rent_id, amount, paid_at, method, COALESCE(reference, ''), COALESCE(notes, ''), COALESCE(created_by, ''), created_at
		FROM rent_payments
		WHERE rent_id = $1
		ORDER BY paid_at DESC, created_at DESC
	`

	rows, err := r.DB.Query(ctx, query, rentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.RentPayment
	for rows.Next() {
		var p models.RentPayment
		err := rows.Scan(&p.ID, &p.RentID, &p.Amount, &p.PaidAt, &p.Method, &p.Reference, &p.Notes, &p.CreatedBy, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *RentRepository) UpdateRent(ctx context.Context, rent *models.Rent) error {
	query := `
		UPDATE rents
		SET amount = $1, period_start = $2, period_end = $3, due_date = $4, status = $5, notes = $6, updated_at = NOW()
		WHERE id = $7 AND is_deleted = FALSE
	`

	ct, err := r.DB.Exec(ctx, query,
		rent.Amount, rent.PeriodStart, rent.PeriodEnd, rent.DueDate, rent.Status, rent.Notes, rent.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rent: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return &apperrors.NotFoundError{Resource: "rent", ID: rent.ID}
	}
	return nil
}

func (r *RentRepository) SoftDeleteRent(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx,
		"UPDATE rents SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE", id)
	if err != nil {
		return fmt.Errorf("failed to delete rent: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return &apperrors.NotFoundError{Resource: "rent", ID: id}
	}
	return nil
}

// AddPayment applies a payment inside one transaction. The rent row is locked
// with FOR UPDATE so two concurrent payments cannot both pass the overpayment
// check against a stale paid amount.
func (r *RentRepository) AddPayment(ctx context.Context, rentID string, payment *models.RentPayment) (*models.Rent, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin payment transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rent := &models.Rent{ID: rentID}
	err = tx.QueryRow(ctx, `
		SELECT tenant_id, room_id, amount, paid_amount, period_start, period_end, due_date, status,
		       COALESCE(notes, ''), COALESCE(created_by, ''), created_at, updated_at
		FROM rents
		WHERE id = $1 AND is_deleted = FALSE
		FOR UPDATE
	`, rentID).Scan(
		&rent.TenantID, &rent.RoomID, &rent.Amount, &rent.PaidAmount,
		&rent.PeriodStart, &rent.PeriodEnd, &rent.DueDate, &rent.Status,
		&rent.Notes, &rent.CreatedBy, &rent.CreatedAt, &rent.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Resource: "rent", ID: rentID}
		}
		return nil, wrapTxError("failed to read rent for payment", err)
	}

	newPaid := rent.PaidAmount.Add(payment.Amount)
	if newPaid.Cmp(rent.Amount) > 0 {
		return nil, &apperrors.OverpaymentError{Outstanding: rent.Outstanding()}
	}

	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.RentID = rentID
	err = tx.QueryRow(ctx, `
		INSERT INTO rent_payments (id, rent_id, amount, paid_at, method, reference, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, payment.ID, rentID, payment.Amount, payment.PaidAt, payment.Method, payment.Reference, payment.Notes, payment.CreatedBy,
	).Scan(&payment.CreatedAt)
	if err != nil {
		return nil, wrapTxError("failed to insert payment", err)
	}

	rent.PaidAmount = newPaid
	rent.Status = models.NextStatus(rent.Status, newPaid, rent.Amount)
	_, err = tx.Exec(ctx,
		"UPDATE rents SET paid_amount = $1, status = $2, updated_at = NOW() WHERE id = $3",
		newPaid, rent.Status, rentID,
	)
	if err != nil {
		return nil, wrapTxError("failed to update rent after payment", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapTxError("failed to commit payment", err)
	}

	rent.OutstandingAmount = rent.Outstanding()
	return rent, nil
}

// wrapTxError maps serialization failures to the domain conflict error so
// callers can retry; everything else stays an internal error.
func wrapTxError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return &apperrors.ConcurrencyConflictError{Msg: "payment transaction conflicted, retry"}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// SweepOverdue is a single predicate-guarded bulk update. The status
// predicate is re-evaluated at write time, so a rent paid moments before the
// sweep no longer matches and is skipped.
func (r *RentRepository) SweepOverdue(ctx context.Context, before time.Time) (int64, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE rents
		SET status = $1, updated_at = NOW()
		WHERE is_deleted = FALSE
		AND status IN ($2, $3)
		AND due_date < $4
	`, models.StatusOverdue, models.StatusPending, models.StatusPartial, before)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep overdue rents: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (r *RentRepository) RentsDueBetween(ctx context.Context, start, end time.Time) ([]*models.Rent, error) {
	query := `
		SELECT id, tenant_id, room_id, amount, paid_amount, due_date, status
		FROM rents
		WHERE is_deleted = FALSE AND due_date >= $1 AND due_date <= $2
	`

	rows, err := r.DB.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list rents due in range: %w", err)
	}
	defer rows.Close()

	var rents []*models.Rent
	for rows.Next() {
		rent := &models.Rent{}
		err := rows.Scan(&rent.ID, &rent.TenantID, &rent.RoomID, &rent.Amount, &rent.PaidAmount, &rent.DueDate, &rent.Status)
		if err != nil {
			return nil, err
		}
		rent.OutstandingAmount = rent.Outstanding()
		rents = append(rents, rent)
	}
	return rents, rows.Err()
}

// escapeLike neutralizes LIKE metacharacters so a search for a literal "%"
// or "_" matches only itself instead of every row.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *RentRepository) ListRents(ctx context.Context, filter *models.RentFilter) ([]*models.Rent, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	add := func(cond string, val interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, argNum))
		args = append(args, val)
		argNum++
	}

	if filter.TenantID != "" {
		add("r.tenant_id = $%d", filter.TenantID)
	}
	if filter.RoomID != "" {
		add("r.room_id = $%d", filter.RoomID)
	}
	if filter.Status != "" {
		add("r.status = $%d", filter.Status)
	}
	if filter.StartDate != nil {
		add("r.due_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("r.due_date <= $%d", *filter.EndDate)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(t.first_name ILIKE $%d OR t.last_name ILIKE $%d OR t.email ILIKE $%d OR ro.number ILIKE $%d)",
			argNum, argNum, argNum, argNum))
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argNum++
	}

	whereClause := "WHERE r.is_deleted = FALSE"
	if len(conditions) > 0 {
		whereClause += " AND " + strings.Join(conditions, " AND ")
	}

	fromClause := `
		FROM rents r
		JOIN tenants t ON r.tenant_id = t.id
		JOIN rooms ro ON r.room_id = ro.id
	`

	var total int
	countQuery := "SELECT COUNT(*)" + fromClause + whereClause
	if err := r.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count rents: %w", err)
	}

	sortCol, ok := sortColumns[filter.SortBy]
	if !ok {
		sortCol = "r.due_date"
	}
	direction := "ASC"
	if filter.SortOrder == "desc" {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		%s
		%s
		ORDER BY %s %s, r.id
		LIMIT $%d OFFSET $%d
	`, rentSelectColumns, fromClause, whereClause, sortCol, direction, argNum, argNum+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rents: %w", err)
	}
	defer rows.Close()

	var rents []*models.Rent
	for rows.Next() {
		rent, err := scanRentRow(rows)
		if err != nil {
			return nil, 0, err
		}
		rents = append(rents, rent)
	}
	return rents, total, rows.Err()
}
