// internal/api/handler/auth.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"cardvault/internal/service"
	"cardvault/internal/util"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Email, req.FullName, req.Password)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	h.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	respondWithJSON(w, h.logger, http.StatusCreated, user)
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"token": token})
}
