package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bareqalyusr/bnpl-service/internal/models"
	"github.com/bareqalyusr/bnpl-service/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RegisterCustomer handles customer signup
func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterCustomerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, models.ErrValidation)
		return
	}

	user, customer, err := h.svc.RegisterCustomer(r.Context(), in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"user":     user,
		"customer": customer,
	})
}

// RegisterMerchant handles merchant signup
func (h *Handler) RegisterMerchant(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterMerchantInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, models.ErrValidation)
		return
	}

	user, merchant, err := h.svc.RegisterMerchant(r.Context(), in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"user":     user,
		"merchant": merchant,
	})
}

// Login handles customer and merchant authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, models.ErrValidation)
		return
	}

	pair, user, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
		"user_type":     user.UserType,
	})
}

// AdminLogin authenticates admin accounts only
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, models.ErrValidation)
		return
	}

	pair, user, err := h.svc.AdminLogin(r.Context(), in.Email, in.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
		"user_type":     user.UserType,
	})
}

// Refresh exchanges a refresh token for a new token pair
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, models.ErrValidation)
		return
	}

	pair, err := h.svc.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pair)
}
