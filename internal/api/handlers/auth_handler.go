package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"orgchart/internal/pkg/errors"
	"orgchart/internal/platform/auth"
	"orgchart/internal/platform/config"
)

type AuthHandler struct {
	admin    config.AdminConfig
	tokenSvc *auth.TokenService
	tokenTTL int64
}

func NewAuthHandler(admin config.AdminConfig, tokenSvc *auth.TokenService, cfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		admin:    admin,
		tokenSvc: tokenSvc,
		tokenTTL: int64(cfg.AccessTokenTTL.Seconds()),
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if h.admin.Email == "" || h.admin.PasswordHash == "" {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Admin login is not configured", nil)
		return
	}

	if !strings.EqualFold(req.Email, h.admin.Email) || !auth.VerifyPassword(h.admin.PasswordHash, req.Password) {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid email or password", nil)
		return
	}

	token, err := h.tokenSvc.GenerateAccessToken(h.admin.Email, "admin")
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to issue token", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{AccessToken: token, ExpiresIn: h.tokenTTL})
}
