// internal/api/handler/transfer.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"cardvault/internal/api/middleware"
	"cardvault/internal/api/types"
	"cardvault/internal/crypto"
	"cardvault/internal/service"
	"cardvault/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// TransferHandler handles fund movement endpoints.
type TransferHandler struct {
	service service.TransferService
	masker  *crypto.Masker
	logger  *slog.Logger
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(svc service.TransferService, masker *crypto.Masker, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{service: svc, masker: masker, logger: logger}
}

// TransferRequest is the request body for moving funds between two of
// the caller's own cards.
type TransferRequest struct {
	FromCardNumber string          `json:"from_card_number" validate:"required,credit_card"`
	ToCardNumber   string          `json:"to_card_number" validate:"required,credit_card"`
	Amount         decimal.Decimal `json:"amount" validate:"required"`
	Description    *string         `json:"description" validate:"omitempty,max=255"`
}

// Transfer handles POST /transfers.
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	requesterID, _ := middleware.CurrentUserID(r.Context())

	transfer, err := h.service.Transfer(r.Context(), service.TransferInput{
		FromCardNumber: req.FromCardNumber,
		ToCardNumber:   req.ToCardNumber,
		Amount:         req.Amount,
		Description:    req.Description,
		RequesterID:    requesterID,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	h.logger.Info("Transfer completed", "transfer_id", transfer.ID, "amount", transfer.Amount)
	respondWithJSON(w, h.logger, http.StatusCreated, types.NewTransferResponse(transfer, h.masker))
}

// Cancel handles POST /transfers/{transferID}/cancel.
func (h *TransferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	transferID, err := pathID(chi.URLParam(r, "transferID"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	requesterID, _ := middleware.CurrentUserID(r.Context())

	if err := h.service.CancelTransfer(r.Context(), transferID, requesterID); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	h.logger.Info("Transfer cancelled", "transfer_id", transferID)
	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /transfers/{transferID}.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	transferID, err := pathID(chi.URLParam(r, "transferID"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	callerID, _ := middleware.CurrentUserID(r.Context())

	transfer, err := h.service.GetTransfer(r.Context(), transferID, callerID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.NewTransferResponse(transfer, h.masker))
}

// ListMine handles GET /transfers.
func (h *TransferHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.CurrentUserID(r.Context())
	limit, offset := parsePagination(r)

	transfers, totalCount, err := h.service.ListUserTransfers(r.Context(), callerID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	data := make([]types.TransferResponse, 0, len(transfers))
	for i := range transfers {
		data = append(data, types.NewTransferResponse(&transfers[i], h.masker))
	}
	respondWithJSON(w, h.logger, http.StatusOK, types.PageResponse{
		Data: data, TotalCount: totalCount, Limit: limit, Offset: offset,
	})
}
