// internal/api/handler/card.go
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"cardvault/internal/api/middleware"
	"cardvault/internal/api/types"
	"cardvault/internal/crypto"
	"cardvault/internal/domain"
	"cardvault/internal/service"
	"cardvault/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CardHandler handles card lifecycle requests.
type CardHandler struct {
	service service.CardService
	masker  *crypto.Masker
	logger  *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(svc service.CardService, masker *crypto.Masker, logger *slog.Logger) *CardHandler {
	return &CardHandler{service: svc, masker: masker, logger: logger}
}

// IssueCardRequest is the request body for issuing a card. The number
// must pass a Luhn check; the expiration date is a YYYY-MM-DD string.
type IssueCardRequest struct {
	OwnerID        int64           `json:"owner_id" validate:"required,gt=0"`
	CardNumber     string          `json:"card_number" validate:"required,credit_card"`
	HolderName     string          `json:"holder_name" validate:"required,max=100"`
	ExpirationDate string          `json:"expiration_date" validate:"required,datetime=2006-01-02"`
	CVV            string          `json:"cvv" validate:"required,len=3,numeric"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// IssueCard handles POST /cards (admin).
func (h *CardHandler) IssueCard(w http.ResponseWriter, r *http.Request) {
	var req IssueCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	expirationDate, err := time.ParseInLocation("2006-01-02", req.ExpirationDate, time.UTC)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	card, err := h.service.IssueCard(r.Context(), service.IssueCardInput{
		OwnerID:        req.OwnerID,
		CardNumber:     req.CardNumber,
		HolderName:     req.HolderName,
		ExpirationDate: expirationDate,
		CVV:            req.CVV,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	h.logger.Info("Card issued", "card_id", card.ID, "owner_id", card.OwnerID)
	respondWithJSON(w, h.logger, http.StatusCreated, types.NewCardResponse(card, h.masker))
}

// GetCard handles GET /cards/{cardID}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(chi.URLParam(r, "cardID"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	callerID, _ := middleware.CurrentUserID(r.Context())

	card, err := h.service.GetCard(r.Context(), cardID, callerID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.NewCardResponse(card, h.masker))
}

// GetCardBalance handles GET /cards/{cardID}/balance.
func (h *CardHandler) GetCardBalance(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(chi.URLParam(r, "cardID"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	callerID, _ := middleware.CurrentUserID(r.Context())

	balance, err := h.service.GetCardBalance(r.Context(), cardID, callerID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"card_id": cardID,
		"balance": balance,
	})
}

// ListMyCards handles GET /cards with optional status and search query
// parameters.
func (h *CardHandler) ListMyCards(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.CurrentUserID(r.Context())
	limit, offset := parsePagination(r)

	var status *domain.CardStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.CardStatus(raw)
		if s != domain.CardStatusActive && s != domain.CardStatusBlocked && s != domain.CardStatusExpired {
			respondWithError(w, h.logger, util.ErrInvalidInput)
			return
		}
		status = &s
	}
	search := r.URL.Query().Get("search")

	cards, totalCount, err := h.service.ListUserCards(r.Context(), callerID, status, search, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, h.cardPage(cards, totalCount, limit, offset))
}

// ListAllCards handles GET /admin/cards.
func (h *CardHandler) ListAllCards(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	cards, totalCount, err := h.service.ListAllCards(r.Context(), limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, h.cardPage(cards, totalCount, limit, offset))
}

// ActivateCard handles POST /admin/cards/{cardID}/activate.
func (h *CardHandler) ActivateCard(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.ActivateCard)
}

// BlockCard handles POST /admin/cards/{cardID}/block.
func (h *CardHandler) BlockCard(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.BlockCard)
}

// DeleteCard handles DELETE /admin/cards/{cardID}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(chi.URLParam(r, "cardID"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	if err := h.service.DeleteCard(r.Context(), cardID); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	h.logger.Info("Card deleted", "card_id", cardID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CardHandler) setStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, cardID int64) (*domain.Card, error)) {
	cardID, err := pathID(chi.URLParam(r, "cardID"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	card, err := op(r.Context(), cardID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	h.logger.Info("Card status changed", "card_id", card.ID, "status", card.Status)
	respondWithJSON(w, h.logger, http.StatusOK, types.NewCardResponse(card, h.masker))
}

func (h *CardHandler) cardPage(cards []domain.Card, totalCount int64, limit, offset int) types.PageResponse {
	data := make([]types.CardResponse, 0, len(cards))
	for i := range cards {
		data = append(data, types.NewCardResponse(&cards[i], h.masker))
	}
	return types.PageResponse{Data: data, TotalCount: totalCount, Limit: limit, Offset: offset}
}
