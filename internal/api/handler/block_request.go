// internal/api/handler/block_request.go
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"cardvault/internal/api/middleware"
	"cardvault/internal/api/types"
	"cardvault/internal/domain"
	"cardvault/internal/service"
	"cardvault/internal/util"

	"github.com/go-chi/chi/v5"
)

// BlockRequestHandler handles the block-request workflow endpoints.
type BlockRequestHandler struct {
	service service.BlockRequestService
	logger  *slog.Logger
}

// NewBlockRequestHandler creates a new BlockRequestHandler.
func NewBlockRequestHandler(svc service.BlockRequestService, logger *slog.Logger) *BlockRequestHandler {
	return &BlockRequestHandler{service: svc, logger: logger}
}

// CreateBlockRequestRequest is the request body for filing a block
// request.
type CreateBlockRequestRequest struct {
	CardID int64  `json:"card_id" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"required,max=500"`
}

// Create handles POST /block-requests.
func (h *BlockRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBlockRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	requesterID, _ := middleware.CurrentUserID(r.Context())

	request, err := h.service.CreateRequest(r.Context(), req.CardID, requesterID, req.Reason)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	h.logger.Info("Block request created", "request_id", request.ID, "card_id", request.CardID)
	respondWithJSON(w, h.logger, http.StatusCreated, types.NewBlockRequestResponse(request))
}

// ProcessBlockRequestRequest is the request body for approving or
// rejecting a block request.
type ProcessBlockRequestRequest struct {
	Comment string `json:"comment" validate:"max=500"`
}

// Approve handles POST /admin/block-requests/{requestID}/approve.
func (h *BlockRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, h.service.ApproveRequest)
}

// Reject handles POST /admin/block-requests/{requestID}/reject.
func (h *BlockRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, h.service.RejectRequest)
}

// Cancel handles POST /block-requests/{requestID}/cancel.
func (h *BlockRequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(chi.URLParam(r, "requestID"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	requesterID, _ := middleware.CurrentUserID(r.Context())

	request, err := h.service.CancelRequest(r.Context(), requestID, requesterID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	h.logger.Info("Block request cancelled", "request_id", request.ID)
	respondWithJSON(w, h.logger, http.StatusOK, types.NewBlockRequestResponse(request))
}

// ListMine handles GET /block-requests.
func (h *BlockRequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := middleware.CurrentUserID(r.Context())
	limit, offset := parsePagination(r)

	requests, totalCount, err := h.service.ListUserRequests(r.Context(), requesterID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, blockRequestPage(requests, totalCount, limit, offset))
}

// ListAll handles GET /admin/block-requests with an optional status
// filter.
func (h *BlockRequestHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var status *domain.BlockRequestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.BlockRequestStatus(raw)
		switch s {
		case domain.BlockRequestStatusPending, domain.BlockRequestStatusApproved,
			domain.BlockRequestStatusRejected, domain.BlockRequestStatusCancelled:
			status = &s
		default:
			respondWithError(w, h.logger, util.ErrInvalidInput)
			return
		}
	}

	requests, totalCount, err := h.service.ListRequests(r.Context(), status, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, blockRequestPage(requests, totalCount, limit, offset))
}

func (h *BlockRequestHandler) process(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, requestID, adminID int64, comment string) (*domain.BlockRequest, error)) {
	requestID, err := pathID(chi.URLParam(r, "requestID"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req ProcessBlockRequestRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, h.logger, util.ErrInvalidInput)
			return
		}
		if err := validate.Struct(req); err != nil {
			respondWithError(w, h.logger, util.ErrInvalidInput)
			return
		}
	}

	adminID, _ := middleware.CurrentUserID(r.Context())
	request, err := op(r.Context(), requestID, adminID, req.Comment)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	h.logger.Info("Block request processed", "request_id", request.ID, "status", request.Status)
	respondWithJSON(w, h.logger, http.StatusOK, types.NewBlockRequestResponse(request))
}

func blockRequestPage(requests []domain.BlockRequest, totalCount int64, limit, offset int) types.PageResponse {
	data := make([]types.BlockRequestResponse, 0, len(requests))
	for i := range requests {
		data = append(data, types.NewBlockRequestResponse(&requests[i]))
	}
	return types.PageResponse{Data: data, TotalCount: totalCount, Limit: limit, Offset: offset}
}
