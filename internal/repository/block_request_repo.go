// internal/repository/block_request_repo.go
package repository

import (
	"context"

	"cardvault/internal/domain"
)

// BlockRequestRepository defines the interface for block-request data
// operations.
type BlockRequestRepository interface {
	// CreateBlockRequest inserts a new request and fills in its ID.
	CreateBlockRequest(ctx context.Context, q DBExecutor, request *domain.BlockRequest) error
	// GetBlockRequestByID retrieves a request by its ID.
	GetBlockRequestByID(ctx context.Context, q DBExecutor, id int64) (*domain.BlockRequest, error)
	// GetPendingBlockRequestForCard retrieves the PENDING request for a
	// card, or util.ErrNotFound when none exists.
	GetPendingBlockRequestForCard(ctx context.Context, q DBExecutor, cardID int64) (*domain.BlockRequest, error)
	// UpdateBlockRequest persists status, processor, comment and
	// processed-at of a request.
	UpdateBlockRequest(ctx context.Context, q DBExecutor, request *domain.BlockRequest) error
	// ListBlockRequests retrieves requests with an optional status
	// filter, newest first.
	ListBlockRequests(ctx context.Context, q DBExecutor, status *domain.BlockRequestStatus, limit, offset int) ([]domain.BlockRequest, int64, error)
	// ListBlockRequestsByRequester retrieves a user's own requests,
	// newest first.
	ListBlockRequestsByRequester(ctx context.Context, q DBExecutor, requesterID int64, limit, offset int) ([]domain.BlockRequest, int64, error)
}
