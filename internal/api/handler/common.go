// internal/api/handler/common.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cardvault/internal/util"

	"github.com/go-playground/validator/v10"
)

// DefaultTimeout bounds request handling at the router level.
const DefaultTimeout = 30 * time.Second

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// validate is the shared request-DTO validator.
var validate = validator.New()

func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps domain sentinels to HTTP status codes:
// not-found 404, validation 400, state conflicts 409, access denied
// 403, insufficient funds 402.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrCardNotFound),
		util.IsError(err, util.ErrUserNotFound),
		util.IsError(err, util.ErrTransferNotFound),
		util.IsError(err, util.ErrBlockRequestNotFound),
		util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case util.IsError(err, util.ErrInvalidInput),
		util.IsError(err, util.ErrInvalidAmount),
		util.IsError(err, util.ErrAmountTooLarge),
		util.IsError(err, util.ErrInvalidExpiration),
		util.IsError(err, util.ErrDuplicateCardNumber),
		util.IsError(err, util.ErrBalanceExceedsMax),
		util.IsError(err, util.ErrSameCard),
		util.IsError(err, util.ErrDuplicateUsername):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrCardAlreadyActive),
		util.IsError(err, util.ErrCardAlreadyBlocked),
		util.IsError(err, util.ErrCardExpired),
		util.IsError(err, util.ErrCardNotActive),
		util.IsError(err, util.ErrRequestNotPending),
		util.IsError(err, util.ErrPendingRequestExists),
		util.IsError(err, util.ErrNotCancellable),
		util.IsError(err, util.ErrCancellationWindowExpired),
		util.IsError(err, util.ErrNonZeroBalance),
		util.IsError(err, util.ErrPendingBlockRequestExists):
		statusCode = http.StatusConflict
		message = err.Error()
	case util.IsError(err, util.ErrAccessDenied),
		util.IsError(err, util.ErrCardNotOwned),
		util.IsError(err, util.ErrNotAdmin),
		util.IsError(err, util.ErrNotRequester),
		util.IsError(err, util.ErrNotInitiator),
		util.IsError(err, util.ErrUserNotActive):
		statusCode = http.StatusForbidden
		message = err.Error()
	case util.IsError(err, util.ErrInsufficientFunds),
		util.IsError(err, util.ErrInsufficientFundsToReverse):
		statusCode = http.StatusPaymentRequired
		message = err.Error()
	case util.IsError(err, util.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		message = err.Error()
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(w, logger, statusCode, map[string]string{"error": message})
}

// parsePagination reads limit/offset query parameters with sane bounds.
func parsePagination(r *http.Request) (limit, offset int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	offset, err = strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// pathID parses a positive int64 path parameter.
func pathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, util.ErrInvalidInput
	}
	return id, nil
}
