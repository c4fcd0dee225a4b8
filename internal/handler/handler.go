package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/bareqalyusr/bnpl-service/internal/config"
	"github.com/bareqalyusr/bnpl-service/internal/middleware"
	"github.com/bareqalyusr/bnpl-service/internal/models"
	"github.com/bareqalyusr/bnpl-service/internal/service"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// InitRoutes builds the /api/v1 REST surface. Everything except
// registration, login and refresh requires a bearer access token.
func (h *Handler) InitRoutes(cfg *config.Config) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register/customer", h.RegisterCustomer).Methods("POST")
	api.HandleFunc("/auth/register/merchant", h.RegisterMerchant).Methods("POST")
	api.HandleFunc("/auth/login", h.Login).Methods("POST")
	api.HandleFunc("/auth/refresh", h.Refresh).Methods("POST")
	api.HandleFunc("/admin/login", h.AdminLogin).Methods("POST")

	// Protected routes
	auth := api.PathPrefix("/").Subrouter()
	auth.Use(middleware.AuthMiddleware(cfg))

	auth.HandleFunc("/customers/me", h.CustomerProfile).Methods("GET")
	auth.HandleFunc("/customers/me", h.UpdateCustomerProfile).Methods("PUT")
	auth.HandleFunc("/customers/me/pending-transactions", h.PendingTransactions).Methods("GET")
	auth.HandleFunc("/customers/me/transactions/history", h.CustomerTransactions).Methods("GET")

	auth.HandleFunc("/transactions/", h.CreateTransaction).Methods("POST")
	auth.HandleFunc("/transactions/{id:[0-9]+}/approve", h.ApproveTransaction).Methods("POST")
	auth.HandleFunc("/transactions/{id:[0-9]+}/reject", h.RejectTransaction).Methods("POST")
	auth.HandleFunc("/transactions/{id:[0-9]+}/cancel", h.CancelTransaction).Methods("POST")

	auth.HandleFunc("/repayments/plans", h.Plans).Methods("GET")
	auth.HandleFunc("/repayments/plans/{id:[0-9]+}", h.Plan).Methods("GET")
	auth.HandleFunc("/repayments/schedules/{id:[0-9]+}/request-payment", h.RequestPayment).Methods("POST")
	auth.HandleFunc("/repayments/upcoming", h.Upcoming).Methods("GET")
	auth.HandleFunc("/repayments/summary", h.Summary).Methods("GET")

	auth.HandleFunc("/merchants/me", h.MerchantProfile).Methods("GET")
	auth.HandleFunc("/merchants/me", h.UpdateMerchantProfile).Methods("PUT")
	auth.HandleFunc("/merchants/me/balance", h.MerchantBalance).Methods("GET")
	auth.HandleFunc("/merchants/search-customer-by-id", h.SearchCustomer).Methods("GET")
	auth.HandleFunc("/merchants/me/transactions", h.MerchantTransactions).Methods("GET")
	auth.HandleFunc("/merchants/me/payment-requests", h.PaymentRequests).Methods("GET")
	auth.HandleFunc("/merchants/payment-requests/{id:[0-9]+}/approve", h.ApprovePaymentRequest).Methods("POST")
	auth.HandleFunc("/merchants/payment-requests/{id:[0-9]+}/reject", h.RejectPaymentRequest).Methods("POST")

	auth.HandleFunc("/admin/dashboard", h.Dashboard).Methods("GET")
	auth.HandleFunc("/admin/customers", h.ListCustomers).Methods("GET")
	auth.HandleFunc("/admin/customers/{id:[0-9]+}/approve", h.ApproveCustomer).Methods("POST")
	auth.HandleFunc("/admin/customers/{id:[0-9]+}/reject", h.RejectCustomer).Methods("POST")
	auth.HandleFunc("/admin/customers/{id:[0-9]+}/credit-limit", h.SetCreditLimit).Methods("PUT")
	auth.HandleFunc("/admin/merchants", h.ListMerchants).Methods("GET")
	auth.HandleFunc("/admin/merchants/{id:[0-9]+}/approve", h.ApproveMerchant).Methods("POST")
	auth.HandleFunc("/admin/merchants/{id:[0-9]+}/reject", h.RejectMerchant).Methods("POST")
	auth.HandleFunc("/admin/transactions", h.ListAllTransactions).Methods("GET")

	return r
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps domain errors onto HTTP statuses and renders a
// structured failure body.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyExists), errors.Is(err, models.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, models.ErrInsufficientLimit), errors.Is(err, models.ErrExceedsLimit),
		errors.Is(err, models.ErrInvalidLimit):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.log.Errorf("Internal error: %v", err)
		respondJSON(w, status, map[string]string{"detail": "internal server error"})
		return
	}
	respondJSON(w, status, map[string]string{"detail": err.Error()})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, models.ErrValidation
	}
	return id, nil
}

// paging reads limit/offset query parameters with sane bounds.
func paging(r *http.Request) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// transactionStatusFilter reads an optional status query parameter.
func transactionStatusFilter(r *http.Request) (*models.TransactionStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, nil
	}
	status := models.TransactionStatus(raw)
	if !status.Valid() {
		return nil, models.ErrValidation
	}
	return &status, nil
}
