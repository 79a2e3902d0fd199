package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"rent-backend/internal/apperrors"
	"rent-backend/internal/cache"
	"rent-backend/internal/metrics"
	"rent-backend/internal/models"
	"rent-backend/internal/storage"
	"rent-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	summaryCacheTTL  = 5 * time.Minute
)

// RentService implements the rent billing ledger: period validation, payment
// application, querying, invoicing and monthly aggregation.
type RentService struct {
	Store     storage.RentStore
	Directory storage.Directory
}

func NewRentService(store storage.RentStore, directory storage.Directory) *RentService {
	return &RentService{Store: store, Directory: directory}
}

// CreateRent validates the request and the tenant's room assignment, then
// persists a PENDING rent with zero paid amount. The period-overlap check
// runs inside the store's create scope, so concurrent creates for the same
// tenant+room cannot both land.
func (s *RentService) CreateRent(ctx context.Context, req *models.CreateRentRequest, actor string) (*models.Rent, error) {
	if actor == "" {
		return nil, apperrors.NewValidation("actor is required")
	}
	if req.TenantID == "" || req.RoomID == "" {
		return nil, apperrors.NewValidation("tenant_id and room_id are required")
	}
	if req.Amount.IsNegative() {
		return nil, apperrors.NewValidation("amount must not be negative")
	}

	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseRequiredDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.Directory.GetTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if _, err := s.Directory.GetRoom(ctx, req.RoomID); err != nil {
		return nil, err
	}

	assigned, err := s.Directory.IsTenantAssigned(ctx, req.TenantID, req.RoomID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, &apperrors.NotAssignedError{TenantID: req.TenantID, RoomID: req.RoomID}
	}

	rent := &models.Rent{
		ID:          uuid.NewString(),
		TenantID:    req.TenantID,
		RoomID:      req.RoomID,
		Amount:      req.Amount,
		PaidAmount:  decimal.Zero,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		DueDate:     dueDate,
		Status:      models.StatusPending,
		Notes:       req.Notes,
		CreatedBy:   actor,
	}
	if err := s.Store.CreateRent(ctx, rent); err != nil {
		return nil, err
	}

	cache.InvalidateRentCaches(ctx)
	return s.Store.GetRentByID(ctx, rent.ID)
}

// GetRent returns a rent with tenant/room display fields and its payments.
func (s *RentService) GetRent(ctx context.Context, id string) (*models.Rent, error) {
	return s.Store.GetRentByID(ctx, id)
}

// UpdateRent applies direct field edits. It never touches paidAmount and does
// not re-run the overlap check; it does keep paidAmount <= amount intact.
func (s *RentService) UpdateRent(ctx context.Context, id string, req *models.UpdateRentRequest) (*models.Rent, error) {
	rent, err := s.Store.GetRentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, apperrors.NewValidation("amount must not be negative")
		}
		if req.Amount.Cmp(rent.PaidAmount) < 0 {
			return nil, apperrors.NewValidation("amount cannot be lower than the already paid amount %s", rent.PaidAmount.String())
		}
		rent.Amount = *req.Amount
	}
	if req.PeriodStart != nil {
		t, err := parseRequiredDate("period_start", *req.PeriodStart)
		if err != nil {
			return nil, err
		}
		rent.PeriodStart = t
	}
	if req.PeriodEnd != nil {
		t, err := parseRequiredDate("period_end", *req.PeriodEnd)
		if err != nil {
			return nil, err
		}
		rent.PeriodEnd = t
	}
	if !rent.PeriodStart.Before(rent.PeriodEnd) {
		return nil, apperrors.NewValidation("period_start must be before period_end")
	}
	if req.DueDate != nil {
		t, err := parseRequiredDate("due_date", *req.DueDate)
		if err != nil {
			return nil, err
		}
		rent.DueDate = t
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, apperrors.NewValidation("invalid status %q", string(*req.Status))
		}
		rent.Status = *req.Status
	}
	if req.Notes != nil {
		rent.Notes = *req.Notes
	}

	if err := s.Store.UpdateRent(ctx, rent); err != nil {
		return nil, err
	}

	cache.InvalidateRentCaches(ctx)
	return s.Store.GetRentByID(ctx, id)
}

// DeleteRent soft-deletes; payment history is retained for audit.
func (s *RentService) DeleteRent(ctx context.Context, id string) error {
	if err := s.Store.SoftDeleteRent(ctx, id); err != nil {
		return err
	}
	cache.InvalidateRentCaches(ctx)
	return nil
}

// AddPayment records a settlement against a rent. The store applies the
// overpayment check and both writes in one transaction.
func (s *RentService) AddPayment(ctx context.Context, rentID string, req *models.CreateRentPaymentRequest, actor string) (*models.PaymentResult, error) {
	if actor == "" {
		return nil, apperrors.NewValidation("actor is required")
	}
	if req.Amount.Cmp(decimal.Zero) <= 0 {
		return nil, apperrors.NewValidation("payment amount must be positive")
	}
	if !req.Method.IsValid() {
		return nil, apperrors.NewValidation("invalid payment method %q", string(req.Method))
	}
	paidAt, err := parseRequiredDate("paid_at", req.PaidAt)
	if err != nil {
		return nil, err
	}

	payment := &models.RentPayment{
		Amount:    req.Amount,
		PaidAt:    paidAt,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
		CreatedBy: actor,
	}
	if _, err := s.Store.AddPayment(ctx, rentID, payment); err != nil {
		return nil, err
	}
	metrics.PaymentsRecordedTotal.Inc()
	cache.InvalidateRentCaches(ctx)

	rent, err := s.Store.GetRentByID(ctx, rentID)
	if err != nil {
		return nil, err
	}
	return &models.PaymentResult{Payment: payment, Rent: rent}, nil
}

// ListRents runs the query engine: filters, sorting, pagination.
func (s *RentService) ListRents(ctx context.Context, filter *models.RentFilter) (*models.RentList, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, apperrors.NewValidation("invalid status %q", string(filter.Status))
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	if _, ok := map[string]bool{"dueDate": true, "amount": true, "status": true, "createdAt": true}[filter.SortBy]; !ok {
		filter.SortBy = "dueDate"
	}
	if filter.SortOrder != "asc" {
		filter.SortOrder = "desc"
	}

	rents, total, err := s.Store.ListRents(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rents == nil {
		rents = []*models.Rent{}
	}
	return &models.RentList{
		Rents: rents,
		Pagination: models.Pagination{
			Total:      total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		},
	}, nil
}

// MonthlySummary aggregates all non-deleted rents due inside the calendar
// month. Results are cached briefly; every rent mutation invalidates them.
func (s *RentService) MonthlySummary(ctx context.Context, month, year int) (*models.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.NewValidation("month must be between 1 and 12")
	}
	if year < 1 {
		return nil, apperrors.NewValidation("year must be positive")
	}

	key := fmt.Sprintf(cache.SummaryKeyFmt, year, month)
	if data, ok := cache.GetCached(ctx, key); ok {
		var cached models.MonthlySummary
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	start, end := timeutil.MonthBounds(time.Month(month), year)
	rents, err := s.Store.RentsDueBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	summary := &models.MonthlySummary{
		Month:            time.Month(month).String(),
		Year:             year,
		TotalExpected:    decimal.Zero,
		TotalCollected:   decimal.Zero,
		TotalOutstanding: decimal.Zero,
		TotalOverdue:     decimal.Zero,
	}
	for _, rent := range rents {
		outstanding := rent.Outstanding()
		summary.TotalExpected = summary.TotalExpected.Add(rent.Amount)
		summary.TotalCollected = summary.TotalCollected.Add(rent.PaidAmount)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(outstanding)

		switch rent.Status {
		case models.StatusPaid:
			summary.PaidCount++
		case models.StatusPending:
			summary.PendingCount++
		case models.StatusPartial:
			summary.PartialCount++
		case models.StatusOverdue:
			summary.OverdueCount++
			summary.TotalOverdue = summary.TotalOverdue.Add(outstanding)
		}
	}

	if data, err := json.Marshal(summary); err == nil {
		cache.SetCached(ctx, key, data, summaryCacheTTL)
	}
	return summary, nil
}

// GenerateInvoice derives a human-readable invoice from the rent's current
// ledger state. Pure read, no mutation; cached until the next rent mutation.
func (s *RentService) GenerateInvoice(ctx context.Context, rentID string) (*models.Invoice, error) {
	key := fmt.Sprintf(cache.InvoiceKeyFmt, rentID)
	if data, ok := cache.GetCached(ctx, key); ok {
		var cached models.Invoice
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	rent, err := s.Store.GetRentByID(ctx, rentID)
	if err != nil {
		return nil, err
	}

	lines := make([]models.InvoiceLine, 0, len(rent.Payments))
	for _, p := range rent.Payments {
		lines = append(lines, models.InvoiceLine{
			ID:        p.ID,
			Date:      p.PaidAt,
			Amount:    p.Amount,
			Method:    p.Method,
			Reference: p.Reference,
		})
	}

	invoice := &models.Invoice{
		RentID: rent.ID,
		InvoiceNumber: fmt.Sprintf("INV-%s-%d-%02d",
			rent.Room.Number, rent.PeriodStart.Year(), int(rent.PeriodStart.Month())),
		Tenant: models.InvoiceTenant{
			Name:  rent.Tenant.FirstName + " " + rent.Tenant.LastName,
			Email: rent.Tenant.Email,
			Phone: rent.Tenant.Phone,
		},
		Room: models.InvoiceRoom{
			Number: rent.Room.Number,
			Type:   rent.Room.Type,
		},
		Period:      models.InvoicePeriod{Start: rent.PeriodStart, End: rent.PeriodEnd},
		Amount:      rent.Amount,
		PaidAmount:  rent.PaidAmount,
		Outstanding: rent.OutstandingAmount,
		DueDate:     rent.DueDate,
		Status:      rent.Status,
		Payments:    lines,
		GeneratedAt: time.Now(),
	}

	if data, err := json.Marshal(invoice); err == nil {
		cache.SetCached(ctx, key, data, summaryCacheTTL)
	}
	return invoice, nil
}

func parsePeriod(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := parseRequiredDate("period_start", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseRequiredDate("period_end", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, apperrors.NewValidation("period_start must be before period_end")
	}
	return start, end, nil
}

func parseRequiredDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.NewValidation("%s is required", field)
	}
	t, err := timeutil.ParseDate(value)
	if err != nil {
		return time.Time{}, apperrors.NewValidation("%s must be a YYYY-MM-DD date", field)
	}
	return t, nil
}
