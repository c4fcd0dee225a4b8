package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bareqalyusr/bnpl-service/internal/models"
)

// approvalFilter reads an optional status=approved|pending query parameter.
func approvalFilter(r *http.Request) (*bool, error) {
	switch r.URL.Query().Get("status") {
	case "":
		return nil, nil
	case "approved":
		v := true
		return &v, nil
	case "pending":
		v := false
		return &v, nil
	}
	return nil, models.ErrValidation
}

// Dashboard returns platform-wide counters
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// ListCustomers lists customer accounts
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	approved, err := approvalFilter(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	limit, offset := paging(r)

	customers, err := h.svc.ListCustomers(r.Context(), approved, limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

// ApproveCustomer approves a customer and grants the initial credit limit
func (h *Handler) ApproveCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	creditLimit, err := decimal.NewFromString(r.URL.Query().Get("credit_limit"))
	if err != nil {
		h.respondError(w, models.ErrValidation)
		return
	}

	customer, err := h.svc.ApproveCustomer(r.Context(), id, creditLimit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

// RejectCustomer declines a customer application
func (h *Handler) RejectCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.svc.RejectCustomer(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"detail": "customer rejected"})
}

// SetCreditLimit changes an approved customer's credit limit
func (h *Handler) SetCreditLimit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	newLimit, err := decimal.NewFromString(r.URL.Query().Get("new_credit_limit"))
	if err != nil {
		h.respondError(w, models.ErrValidation)
		return
	}

	customer, err := h.svc.SetCreditLimit(r.Context(), id, newLimit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

// ListMerchants lists merchant accounts
func (h *Handler) ListMerchants(w http.ResponseWriter, r *http.Request) {
	approved, err := approvalFilter(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	limit, offset := paging(r)

	merchants, err := h.svc.ListMerchants(r.Context(), approved, limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, merchants)
}

// ApproveMerchant approves a merchant account
func (h *Handler) ApproveMerchant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	merchant, err := h.svc.ApproveMerchant(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, merchant)
}

// RejectMerchant declines a merchant application
func (h *Handler) RejectMerchant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.svc.RejectMerchant(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"detail": "merchant rejected"})
}

// ListAllTransactions lists every transaction on the platform
func (h *Handler) ListAllTransactions(w http.ResponseWriter, r *http.Request) {
	status, err := transactionStatusFilter(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	limit, offset := paging(r)

	txns, err := h.svc.ListAllTransactions(r.Context(), status, limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txns)
}
