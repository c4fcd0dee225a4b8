package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/bareqalyusr/bnpl-service/internal/models"
	"github.com/bareqalyusr/bnpl-service/internal/service"
)

// CustomerProfile returns the calling customer's account
func (h *Handler) CustomerProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.CustomerProfile(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateCustomerProfile updates the calling customer's address details
func (h *Handler) UpdateCustomerProfile(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateCustomerProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, models.ErrValidation)
		return
	}

	customer, err := h.svc.UpdateCustomerProfile(r.Context(), in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

// PendingTransactions lists purchase requests awaiting the customer's decision
func (h *Handler) PendingTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.svc.PendingTransactions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txns)
}

// CustomerTransactions lists the customer's transaction history
func (h *Handler) CustomerTransactions(w http.ResponseWriter, r *http.Request) {
	status, err := transactionStatusFilter(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	limit, offset := paging(r)

	txns, err := h.svc.CustomerTransactions(r.Context(), status, limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txns)
}

// Plans lists the customer's repayment plans
func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	var status *models.PlanStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.PlanStatus(raw)
		if !s.Valid() {
			h.respondError(w, models.ErrValidation)
			return
		}
		status = &s
	}

	plans, err := h.svc.Plans(r.Context(), status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plans)
}

// Plan returns one plan with its full schedule
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	plan, err := h.svc.Plan(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

// RequestPayment moves an installment to payment_requested
func (h *Handler) RequestPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	schedule, err := h.svc.RequestPayment(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

// Upcoming lists installments due within the requested window (days, default 30)
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && v > 0 && v <= 365 {
		days = v
	}

	upcoming, err := h.svc.Upcoming(r.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, upcoming)
}

// Summary aggregates the customer's open repayment obligations
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
