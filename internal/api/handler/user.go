// internal/api/handler/user.go
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"cardvault/internal/service"

	"github.com/go-chi/chi/v5"
)

// UserHandler handles the admin user-management endpoints.
type UserHandler struct {
	service service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// List handles GET /admin/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	users, totalCount, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"data":        users,
		"total_count": totalCount,
		"limit":       limit,
		"offset":      offset,
	})
}

// Block handles POST /admin/users/{userID}/block.
func (h *UserHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.service.BlockUser, "User blocked")
}

// Activate handles POST /admin/users/{userID}/activate.
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.service.ActivateUser, "User activated")
}

func (h *UserHandler) setActive(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID int64) error, msg string) {
	userID, err := pathID(chi.URLParam(r, "userID"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	if err := op(r.Context(), userID); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	h.logger.Info(msg, "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
