// internal/domain/block_request.go
package domain

import "time"

// BlockRequestStatus is the workflow state of a card block request.
// PENDING is the only non-terminal state.
type BlockRequestStatus string

const (
	BlockRequestStatusPending   BlockRequestStatus = "PENDING"
	BlockRequestStatusApproved  BlockRequestStatus = "APPROVED"
	BlockRequestStatusRejected  BlockRequestStatus = "REJECTED"
	BlockRequestStatusCancelled BlockRequestStatus = "CANCELLED"
)

// BlockRequest is a user-initiated, admin-adjudicated request to freeze
// a card. At most one PENDING request may exist per card.
type BlockRequest struct {
	ID            int64              `db:"id" json:"id"`
	CardID        int64              `db:"card_id" json:"card_id"`
	RequestedByID int64              `db:"requested_by" json:"requested_by"`
	Reason        string             `db:"reason" json:"reason"`
	Status        BlockRequestStatus `db:"status" json:"status"`
	ProcessedByID *int64             `db:"processed_by" json:"processed_by"`
	AdminComment  *string            `db:"admin_comment" json:"admin_comment"`
	RequestedAt   time.Time          `db:"requested_at" json:"requested_at"`
	ProcessedAt   *time.Time         `db:"processed_at" json:"processed_at"`
}

// NewBlockRequest creates a new BlockRequest in PENDING status.
func NewBlockRequest(cardID, requestedByID int64, reason string) *BlockRequest {
	return &BlockRequest{
		CardID:        cardID,
		RequestedByID: requestedByID,
		Reason:        reason,
		Status:        BlockRequestStatusPending,
		RequestedAt:   time.Now().UTC(),
	}
}

// IsPending reports whether the request can still be processed or
// cancelled.
func (r *BlockRequest) IsPending() bool {
	return r.Status == BlockRequestStatusPending
}
