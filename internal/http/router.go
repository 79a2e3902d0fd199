package http

import (
	"rent-backend/internal/handlers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	rentHandler *handlers.RentHandler,
	healthHandler *handlers.HealthHandler,
) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Rent ledger API. Fixed paths are registered before the {id} routes so
	// mux does not capture "summary" as a rent id.
	rentsAPI := r.PathPrefix("/api/rents").Subrouter()
	rentsAPI.HandleFunc("", rentHandler.ListRents).Methods("GET")
	rentsAPI.HandleFunc("", rentHandler.CreateRent).Methods("POST")
	rentsAPI.HandleFunc("/summary", rentHandler.MonthlySummary).Methods("GET")
	rentsAPI.HandleFunc("/sweep-overdue", rentHandler.SweepOverdue).Methods("POST")
	rentsAPI.HandleFunc("/{id}", rentHandler.GetRent).Methods("GET")
	rentsAPI.HandleFunc("/{id}", rentHandler.UpdateRent).Methods("PUT")
	rentsAPI.HandleFunc("/{id}", rentHandler.DeleteRent).Methods("DELETE")
	rentsAPI.HandleFunc("/{id}/payments", rentHandler.AddPayment).Methods("POST")
	rentsAPI.HandleFunc("/{id}/invoice", rentHandler.GetInvoice).Methods("GET")

	return r
}
