// Package memory provides an in-memory RentStore and Directory used by the
// test suite. It mirrors the postgres repositories' semantics, including the
// atomic payment application and the predicate-guarded sweep.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"rent-backend/internal/apperrors"
	"rent-backend/internal/models"

	"github.com/google/uuid"
)

type Store struct {
	mu          sync.Mutex
	rents       map[string]*models.Rent
	payments    map[string][]models.RentPayment
	tenants     map[string]*models.Tenant
	rooms       map[string]*models.Room
	assignments map[string]map[string]bool // tenantID -> roomID -> assigned
}

func NewStore() *Store {
	return &Store{
		rents:       make(map[string]*models.Rent),
		payments:    make(map[string][]models.RentPayment),
		tenants:     make(map[string]*models.Tenant),
		rooms:       make(map[string]*models.Room),
		assignments: make(map[string]map[string]bool),
	}
}

// AddTenant registers a tenant in the directory.
func (s *Store) AddTenant(t *models.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.ID] = t
}

// AddRoom registers a room in the directory.
func (s *Store) AddRoom(r *models.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = r
}

// Assign marks the tenant as currently assigned to the room.
func (s *Store) Assign(tenantID, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignments[tenantID] == nil {
		s.assignments[tenantID] = make(map[string]bool)
	}
	s.assignments[tenantID][roomID] = true
}

func (s *Store) IsTenantAssigned(_ context.Context, tenantID, roomID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignments[tenantID][roomID], nil
}

func (s *Store) GetTenant(_ context.Context, id string) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "tenant", ID: id}
	}
	cp := *t
	return &cp, nil
}

func (s *Store) GetRoom(_ context.Context, id string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "room", ID: id}
	}
	cp := *r
	return &cp, nil
}

// CreateRent checks the period overlap and inserts under one lock hold, so
// concurrent creates for the same tenant+room serialize here.
func (s *Store) CreateRent(_ context.Context, rent *models.Rent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlapsLocked(rent.TenantID, rent.RoomID, rent.PeriodStart, rent.PeriodEnd) {
		return &apperrors.OverlapError{TenantID: rent.TenantID, RoomID: rent.RoomID}
	}
	now := time.Now()
	rent.CreatedAt = now
	rent.UpdatedAt = now
	cp := *rent
	s.rents[rent.ID] = &cp
	return nil
}

func (s *Store) GetRentByID(_ context.Context, id string) (*models.Rent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getRentLocked(id)
}

func (s *Store) getRentLocked(id string) (*models.Rent, error) {
	r, ok := s.rents[id]
	if !ok || r.IsDeleted {
		return nil, &apperrors.NotFoundError{Resource: "rent", ID: id}
	}
	cp := *r
	cp.OutstandingAmount = cp.Outstanding()
	if t, ok := s.tenants[cp.TenantID]; ok {
		tc := *t
		cp.Tenant = &tc
	}
	if room, ok := s.rooms[cp.RoomID]; ok {
		rc := *room
		cp.Room = &rc
	}
	pays := append([]models.RentPayment(nil), s.payments[id]...)
	sort.Slice(pays, func(i, j int) bool { return pays[i].PaidAt.After(pays[j].PaidAt) })
	cp.Payments = pays
	return &cp, nil
}

func (s *Store) UpdateRent(_ context.Context, rent *models.Rent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rents[rent.ID]
	if !ok || r.IsDeleted {
		return &apperrors.NotFoundError{Resource: "rent", ID: rent.ID}
	}
	r.Amount = rent.Amount
	r.PeriodStart = rent.PeriodStart
	r.PeriodEnd = rent.PeriodEnd
	r.DueDate = rent.DueDate
	r.Status = rent.Status
	r.Notes = rent.Notes
	r.UpdatedAt = time.Now()
	return nil
}

func (s *Store) SoftDeleteRent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rents[id]
	if !ok || r.IsDeleted {
		return &apperrors.NotFoundError{Resource: "rent", ID: id}
	}
	r.IsDeleted = true
	r.UpdatedAt = time.Now()
	return nil
}

func (s *Store) overlapsLocked(tenantID, roomID string, periodStart, periodEnd time.Time) bool {
	for _, r := range s.rents {
		if r.IsDeleted || r.TenantID != tenantID || r.RoomID != roomID {
			continue
		}
		// inclusive bounds: start <= newEnd AND end >= newStart
		if !r.PeriodStart.After(periodEnd) && !r.PeriodEnd.Before(periodStart) {
			return true
		}
	}
	return false
}

func (s *Store) AddPayment(_ context.Context, rentID string, payment *models.RentPayment) (*models.Rent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rents[rentID]
	if !ok || r.IsDeleted {
		return nil, &apperrors.NotFoundError{Resource: "rent", ID: rentID}
	}
	newPaid := r.PaidAmount.Add(payment.Amount)
	if newPaid.Cmp(r.Amount) > 0 {
		return nil, &apperrors.OverpaymentError{Outstanding: r.Outstanding()}
	}
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.RentID = rentID
	payment.CreatedAt = time.Now()
	s.payments[rentID] = append(s.payments[rentID], *payment)

	r.PaidAmount = newPaid
	r.Status = models.NextStatus(r.Status, newPaid, r.Amount)
	r.UpdatedAt = time.Now()

	cp := *r
	cp.OutstandingAmount = cp.Outstanding()
	return &cp, nil
}

func (s *Store) SweepOverdue(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, r := range s.rents {
		if r.IsDeleted {
			continue
		}
		if (r.Status == models.StatusPending || r.Status == models.StatusPartial) && r.DueDate.Before(before) {
			r.Status = models.StatusOverdue
			r.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

func (s *Store) RentsDueBetween(_ context.Context, start, end time.Time) ([]*models.Rent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Rent
	for _, r := range s.rents {
		if r.IsDeleted {
			continue
		}
		if !r.DueDate.Before(start) && !r.DueDate.After(end) {
			cp := *r
			cp.OutstandingAmount = cp.Outstanding()
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) ListRents(_ context.Context, filter *models.RentFilter) ([]*models.Rent, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*models.Rent
	search := strings.ToLower(filter.Search)
	for id, r := range s.rents {
		if r.IsDeleted {
			continue
		}
		if filter.TenantID != "" && r.TenantID != filter.TenantID {
			continue
		}
		if filter.RoomID != "" && r.RoomID != filter.RoomID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.StartDate != nil && r.DueDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && r.DueDate.After(*filter.EndDate) {
			continue
		}
		if search != "" && !s.matchesSearchLocked(r, search) {
			continue
		}
		cp, _ := s.getRentLocked(id)
		matched = append(matched, cp)
	}

	sortRents(matched, filter.SortBy, filter.SortOrder)

	total := len(matched)
	offset := (filter.Page - 1) * filter.Limit
	if offset >= total {
		return nil, total, nil
	}
	end := offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *Store) matchesSearchLocked(r *models.Rent, search string) bool {
	if t, ok := s.tenants[r.TenantID]; ok {
		if strings.Contains(strings.ToLower(t.FirstName), search) ||
			strings.Contains(strings.ToLower(t.LastName), search) ||
			strings.Contains(strings.ToLower(t.Email), search) {
			return true
		}
	}
	if room, ok := s.rooms[r.RoomID]; ok {
		if strings.Contains(strings.ToLower(room.Number), search) {
			return true
		}
	}
	return false
}

func sortRents(rents []*models.Rent, sortBy, order string) {
	less := func(a, b *models.Rent) bool { return a.DueDate.Before(b.DueDate) }
	switch sortBy {
	case "amount":
		less = func(a, b *models.Rent) bool { return a.Amount.Cmp(b.Amount) < 0 }
	case "status":
		less = func(a, b *models.Rent) bool { return a.Status < b.Status }
	case "createdAt":
		less = func(a, b *models.Rent) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	sort.SliceStable(rents, func(i, j int) bool {
		if order == "desc" {
			return less(rents[j], rents[i])
		}
		return less(rents[i], rents[j])
	})
}
