package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bareqalyusr/bnpl-service/internal/models"
	"github.com/bareqalyusr/bnpl-service/internal/service"
)

// MerchantProfile returns the calling merchant's account
func (h *Handler) MerchantProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.MerchantProfile(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateMerchantProfile updates the calling merchant's business details
func (h *Handler) UpdateMerchantProfile(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateMerchantProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, models.ErrValidation)
		return
	}

	merchant, err := h.svc.UpdateMerchantProfile(r.Context(), in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, merchant)
}

// MerchantBalance returns the balance view with transaction counts
func (h *Handler) MerchantBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.MerchantBalance(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, balance)
}

// SearchCustomer looks up an approved customer by id
func (h *Handler) SearchCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(r.URL.Query().Get("customer_id"), 10, 64)
	if err != nil {
		h.respondError(w, models.ErrValidation)
		return
	}

	lookup, err := h.svc.SearchCustomer(r.Context(), customerID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, lookup)
}

// MerchantTransactions lists the merchant's transactions
func (h *Handler) MerchantTransactions(w http.ResponseWriter, r *http.Request) {
	status, err := transactionStatusFilter(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	limit, offset := paging(r)

	txns, err := h.svc.MerchantTransactions(r.Context(), status, limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txns)
}

// PaymentRequests lists installments awaiting the merchant's confirmation
func (h *Handler) PaymentRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.svc.PaymentRequests(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

// ApprovePaymentRequest confirms receipt of an installment payment
func (h *Handler) ApprovePaymentRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	schedule, plan, err := h.svc.ApprovePaymentRequest(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"schedule": schedule,
		"plan":     plan,
	})
}

// RejectPaymentRequest declines an installment payment confirmation
func (h *Handler) RejectPaymentRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	schedule, err := h.svc.RejectPaymentRequest(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}
