package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"rent-backend/internal/apperrors"
	"rent-backend/internal/models"
	"rent-backend/internal/services"
	"rent-backend/internal/timeutil"
	"rent-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// actorHeader carries the acting user's identifier. Authentication itself is
// handled upstream; the ledger only records who acted.
const actorHeader = "X-Actor-Id"

type RentHandler struct {
	Service *services.RentService
	Sweeper *services.OverdueSweeper
}

func NewRentHandler(service *services.RentService, sweeper *services.OverdueSweeper) *RentHandler {
	return &RentHandler{Service: service, Sweeper: sweeper}
}

func (h *RentHandler) CreateRent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rent, err := h.Service.CreateRent(r.Context(), &req, r.Header.Get(actorHeader))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, rent)
}

func (h *RentHandler) GetRent(w http.ResponseWriter, r *http.Request) {
	rent, err := h.Service.GetRent(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, rent)
}

func (h *RentHandler) UpdateRent(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rent, err := h.Service.UpdateRent(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, rent)
}

func (h *RentHandler) DeleteRent(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteRent(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "rent deleted"})
}

func (h *RentHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRentPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Service.AddPayment(r.Context(), mux.Vars(r)["id"], &req, r.Header.Get(actorHeader))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, result)
}

func (h *RentHandler) ListRents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRentFilter(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	list, err := h.Service.ListRents(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *RentHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.Service.GenerateInvoice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, invoice)
}

func (h *RentHandler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "month query parameter is required")
		return
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "year query parameter is required")
		return
	}

	summary, err := h.Service.MonthlySummary(r.Context(), month, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

// SweepOverdue is the hook for an external scheduler (cron-equivalent).
func (h *RentHandler) SweepOverdue(w http.ResponseWriter, r *http.Request) {
	count, err := h.Sweeper.Sweep(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int64{"updated": count})
}

func parseRentFilter(r *http.Request) (*models.RentFilter, error) {
	q := r.URL.Query()
	filter := &models.RentFilter{
		TenantID:  q.Get("tenant_id"),
		RoomID:    q.Get("room_id"),
		Status:    models.RentStatus(q.Get("status")),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, apperrors.NewValidation("page must be a positive integer")
		}
		filter.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, apperrors.NewValidation("limit must be a positive integer")
		}
		filter.Limit = n
	}
	if v := q.Get("start_date"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			return nil, apperrors.NewValidation("start_date must be a YYYY-MM-DD date")
		}
		filter.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := timeutil.ParseDate(v)
		if err != nil {
			return nil, apperrors.NewValidation("end_date must be a YYYY-MM-DD date")
		}
		end := timeutil.EndOfDay(t)
		filter.EndDate = &end
	}
	return filter, nil
}

// writeDomainError maps the domain error taxonomy onto HTTP status codes.
// Anything unmapped is an internal error: logged, never echoed verbatim.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		validation  *apperrors.ValidationError
		notFound    *apperrors.NotFoundError
		notAssigned *apperrors.NotAssignedError
		overlap     *apperrors.OverlapError
		overpayment *apperrors.OverpaymentError
		conflict    *apperrors.ConcurrencyConflictError
	)

	switch {
	case errors.As(err, &validation):
		utils.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.As(err, &notAssigned):
		utils.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &overlap):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.As(err, &overpayment):
		utils.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &conflict):
		utils.Error(w, http.StatusConflict, err.Error())
	default:
		log.Printf("[Rent] Internal error: %v", err)
		utils.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
