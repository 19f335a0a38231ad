// internal/repository/postgres/block_request_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"cardvault/internal/domain"
	"cardvault/internal/repository"
	"cardvault/internal/util"

	"github.com/jmoiron/sqlx"
)

const blockRequestColumns = `id, card_id, requested_by, reason, status, processed_by,
	admin_comment, requested_at, processed_at`

// BlockRequestRepository implements repository.BlockRequestRepository
// for PostgreSQL.
type BlockRequestRepository struct{}

// NewBlockRequestRepository creates a new BlockRequestRepository.
func NewBlockRequestRepository(db *sqlx.DB) repository.BlockRequestRepository {
	return &BlockRequestRepository{}
}

// CreateBlockRequest inserts a new block request using the provided
// DBExecutor.
func (r *BlockRequestRepository) CreateBlockRequest(ctx context.Context, q repository.DBExecutor, request *domain.BlockRequest) error {
	query := `INSERT INTO card_block_requests (card_id, requested_by, reason, status, requested_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		request.CardID, request.RequestedByID, request.Reason, request.Status, request.RequestedAt,
	).Scan(&request.ID)
	if err != nil {
		return fmt.Errorf("failed to create block request: %w", err)
	}
	return nil
}

// GetBlockRequestByID retrieves a block request by its ID using the
// provided DBExecutor.
func (r *BlockRequestRepository) GetBlockRequestByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.BlockRequest, error) {
	var request domain.BlockRequest
	query := `SELECT ` + blockRequestColumns + ` FROM card_block_requests WHERE id = $1`
	err := q.GetContext(ctx, &request, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get block request by ID %d: %w", id, err)
	}
	return &request, nil
}

// GetPendingBlockRequestForCard retrieves the PENDING request for a
// card using the provided DBExecutor. A partial unique index on
// (card_id) WHERE status = 'PENDING' guarantees there is at most one.
func (r *BlockRequestRepository) GetPendingBlockRequestForCard(ctx context.Context, q repository.DBExecutor, cardID int64) (*domain.BlockRequest, error) {
	var request domain.BlockRequest
	query := `SELECT ` + blockRequestColumns + ` FROM card_block_requests
		WHERE card_id = $1 AND status = $2`
	err := q.GetContext(ctx, &request, query, cardID, domain.BlockRequestStatusPending)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pending block request for card %d: %w", cardID, err)
	}
	return &request, nil
}

// UpdateBlockRequest persists the processing outcome of a request using
// the provided DBExecutor.
func (r *BlockRequestRepository) UpdateBlockRequest(ctx context.Context, q repository.DBExecutor, request *domain.BlockRequest) error {
	query := `UPDATE card_block_requests
		SET status = $1, processed_by = $2, admin_comment = $3, processed_at = $4
		WHERE id = $5`
	result, err := q.ExecContext(ctx, query,
		request.Status, request.ProcessedByID, request.AdminComment, request.ProcessedAt, request.ID)
	if err != nil {
		return fmt.Errorf("failed to update block request %d: %w", request.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating block request %d: %w", request.ID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// ListBlockRequests retrieves requests with an optional status filter
// using the provided DBExecutor.
func (r *BlockRequestRepository) ListBlockRequests(ctx context.Context, q repository.DBExecutor, status *domain.BlockRequestStatus, limit, offset int) ([]domain.BlockRequest, int64, error) {
	requests := []domain.BlockRequest{}
	where := `TRUE`
	args := []interface{}{}
	if status != nil {
		args = append(args, *status)
		where = `status = $1`
	}

	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM card_block_requests WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count block requests: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT `+blockRequestColumns+` FROM card_block_requests WHERE `+where+
		` ORDER BY requested_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	if err := q.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch block requests: %w", err)
	}

	return requests, totalCount, nil
}

// ListBlockRequestsByRequester retrieves a user's own requests using
// the provided DBExecutor.
func (r *BlockRequestRepository) ListBlockRequestsByRequester(ctx context.Context, q repository.DBExecutor, requesterID int64, limit, offset int) ([]domain.BlockRequest, int64, error) {
	requests := []domain.BlockRequest{}

	var totalCount int64
	if err := q.GetContext(ctx, &totalCount,
		`SELECT COUNT(*) FROM card_block_requests WHERE requested_by = $1`, requesterID); err != nil {
		return nil, 0, fmt.Errorf("failed to count block requests for user %d: %w", requesterID, err)
	}

	query := `SELECT ` + blockRequestColumns + ` FROM card_block_requests
		WHERE requested_by = $1 ORDER BY requested_at DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &requests, query, requesterID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch block requests for user %d: %w", requesterID, err)
	}

	return requests, totalCount, nil
}
