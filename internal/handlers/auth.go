package handlers

import (
	"net/http"
	"time"

	"crowdfund-ledger/internal/models"
	"crowdfund-ledger/internal/services"
)

// TokenService issues and parses bearer tokens
type TokenService interface {
	Issue(user *models.User) (string, time.Time, error)
	Parse(token string) (models.Principal, error)
}

// AuthHandler handles registration and token issuance
type AuthHandler struct {
	accounts services.AccountServiceInterface
	tokens   TokenService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts services.AccountServiceInterface, tokens TokenService) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens}
}

// TokenRequest is the body of POST /api/auth/token
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued bearer token
type TokenResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register creates a DONOR or FUNDRAISER account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Token exchanges email and password for a bearer token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      user,
	})
}
