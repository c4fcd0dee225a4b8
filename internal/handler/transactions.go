package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bareqalyusr/bnpl-service/internal/models"
	"github.com/bareqalyusr/bnpl-service/internal/service"
)

// CreateTransaction lets a merchant send a purchase request
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in service.CreateTransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, models.ErrValidation)
		return
	}

	txn, err := h.svc.CreateTransaction(r.Context(), in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, txn)
}

// ApproveTransaction lets a customer accept a purchase request and pick the
// repayment term via the number_of_months query parameter
func (h *Handler) ApproveTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	months, err := strconv.Atoi(r.URL.Query().Get("number_of_months"))
	if err != nil {
		h.respondError(w, models.ErrValidation)
		return
	}

	txn, plan, err := h.svc.ApproveTransaction(r.Context(), id, months)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"transaction":    txn,
		"repayment_plan": plan,
	})
}

// RejectTransaction lets a customer decline a purchase request
func (h *Handler) RejectTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	txn, err := h.svc.RejectTransaction(r.Context(), id, r.URL.Query().Get("reason"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txn)
}

// CancelTransaction lets a merchant withdraw its own pending request
func (h *Handler) CancelTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	txn, err := h.svc.CancelTransaction(r.Context(), id, r.URL.Query().Get("reason"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txn)
}
