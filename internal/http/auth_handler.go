package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type AuthHandler struct {
	timeout time.Duration
}

func NewAuthHandler(timeout time.Duration) *AuthHandler {
	return &AuthHandler{timeout: timeout}
}

type SignUpRequestDTO struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type SignInRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type FederatedRequestDTO struct {
	IDToken string `json:"id_token"`
}

type AuthStateView struct {
	SignedIn  bool              `json:"signed_in"`
	Principal *domain.Principal `json:"principal,omitempty"`
}

// POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SignUpRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	p, err := sessionFrom(r.Context()).Auth.SignUp(ctx, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, AuthStateView{SignedIn: true, Principal: &p})
}

// POST /api/v1/auth/login
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SignInRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	p, err := sessionFrom(r.Context()).Auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, AuthStateView{SignedIn: true, Principal: &p})
}

// POST /api/v1/auth/federated
func (h *AuthHandler) SignInFederated(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req FederatedRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	p, err := sessionFrom(r.Context()).Auth.SignInFederated(ctx, req.IDToken)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, AuthStateView{SignedIn: true, Principal: &p})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r.Context()).Auth.SignOut()
	respondJSON(w, http.StatusOK, AuthStateView{})
}

// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := sessionFrom(r.Context()).Auth.Current()
	if !ok {
		respondJSON(w, http.StatusOK, AuthStateView{})
		return
	}
	respondJSON(w, http.StatusOK, AuthStateView{SignedIn: true, Principal: &p})
}
