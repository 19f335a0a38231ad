// internal/api/types/response.go
package types

import (
	"time"

	"cardvault/internal/crypto"
	"cardvault/internal/domain"

	"github.com/shopspring/decimal"
)

// CardResponse is the outward card shape. The number is always masked
// and the reported status overlays expiration onto the stored status.
type CardResponse struct {
	ID               int64             `json:"id"`
	MaskedCardNumber string            `json:"masked_card_number"`
	HolderName       string            `json:"holder_name"`
	ExpirationDate   string            `json:"expiration_date"`
	Status           domain.CardStatus `json:"status"`
	Balance          decimal.Decimal   `json:"balance"`
	OwnerID          int64             `json:"owner_id"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewCardResponse maps a card to its response shape.
func NewCardResponse(card *domain.Card, masker *crypto.Masker) CardResponse {
	return CardResponse{
		ID:               card.ID,
		MaskedCardNumber: masker.Mask(card.LastFour),
		HolderName:       card.HolderName,
		ExpirationDate:   card.ExpirationDate.Format("2006-01-02"),
		Status:           card.ActualStatus(time.Now()),
		Balance:          card.Balance,
		OwnerID:          card.OwnerID,
		CreatedAt:        card.CreatedAt,
		UpdatedAt:        card.UpdatedAt,
	}
}

// BlockRequestResponse is the outward block-request shape.
type BlockRequestResponse struct {
	ID            int64                     `json:"id"`
	CardID        int64                     `json:"card_id"`
	RequestedByID int64                     `json:"requested_by"`
	Reason        string                    `json:"reason"`
	Status        domain.BlockRequestStatus `json:"status"`
	ProcessedByID *int64                    `json:"processed_by,omitempty"`
	AdminComment  *string                   `json:"admin_comment,omitempty"`
	RequestedAt   time.Time                 `json:"requested_at"`
	ProcessedAt   *time.Time                `json:"processed_at,omitempty"`
}

// NewBlockRequestResponse maps a block request to its response shape.
func NewBlockRequestResponse(request *domain.BlockRequest) BlockRequestResponse {
	return BlockRequestResponse{
		ID:            request.ID,
		CardID:        request.CardID,
		RequestedByID: request.RequestedByID,
		Reason:        request.Reason,
		Status:        request.Status,
		ProcessedByID: request.ProcessedByID,
		AdminComment:  request.AdminComment,
		RequestedAt:   request.RequestedAt,
		ProcessedAt:   request.ProcessedAt,
	}
}

// TransferResponse is the outward transfer shape. Both card numbers
// are masked; raw numbers never leave the service.
type TransferResponse struct {
	ID             int64                 `json:"id"`
	FromCardID     int64                 `json:"from_card_id"`
	FromCardMasked string                `json:"from_card_masked"`
	ToCardID       int64                 `json:"to_card_id"`
	ToCardMasked   string                `json:"to_card_masked"`
	Amount         decimal.Decimal       `json:"amount"`
	Status         domain.TransferStatus `json:"status"`
	TransferDate   time.Time             `json:"transfer_date"`
	Description    *string               `json:"description,omitempty"`
}

// NewTransferResponse maps a transfer to its response shape.
func NewTransferResponse(transfer *domain.Transfer, masker *crypto.Masker) TransferResponse {
	return TransferResponse{
		ID:             transfer.ID,
		FromCardID:     transfer.FromCardID,
		FromCardMasked: masker.Mask(transfer.FromCardLastFour),
		ToCardID:       transfer.ToCardID,
		ToCardMasked:   masker.Mask(transfer.ToCardLastFour),
		Amount:         transfer.Amount,
		Status:         transfer.Status,
		TransferDate:   transfer.TransferDate,
		Description:    transfer.Description,
	}
}

// PageResponse wraps paginated list data.
type PageResponse struct {
	Data       interface{} `json:"data"`
	TotalCount int64       `json:"total_count"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}
