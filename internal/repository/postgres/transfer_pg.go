// internal/repository/postgres/transfer_pg.go
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

const transferColumns = `id, from_card_id, to_card_id, amount, status, transfer_date, description`

const transferJoinedColumns = `t.id, t.from_card_id, t.to_card_id, t.amount, t.status, t.transfer_date, t.description,
	f.last_four AS from_card_last_four, d.last_four AS to_card_last_four`

// TransferRepository implements repository.TransferRepository for
// PostgreSQL.
type TransferRepository struct{}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(db *sqlx.DB) repository.TransferRepository {
	return &TransferRepository{}
}

// CreateTransfer inserts a new transfer record using the provided
// DBExecutor.
func (r *TransferRepository) CreateTransfer(ctx context.Context, q repository.DBExecutor, transfer *domain.Transfer) error {
	query := `INSERT INTO transfers (from_card_id, to_card_id, amount, status, transfer_date, description)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		transfer.FromCardID, transfer.ToCardID, transfer.Amount, transfer.Status,
		transfer.TransferDate, transfer.Description,
	).Scan(&transfer.ID)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

// GetTransferByID retrieves a transfer by its ID using the provided
// DBExecutor, with the last four digits of both cards for display.
func (r *TransferRepository) GetTransferByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transfer, error) {
	var transfer domain.Transfer
	query := `SELECT ` + transferJoinedColumns + `
		FROM transfers t
		JOIN cards f ON f.id = t.from_card_id
		JOIN cards d ON d.id = t.to_card_id
		WHERE t.id = $1`
	err := q.GetContext(ctx, &transfer, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transfer by ID %d: %w", id, err)
	}
	return &transfer, nil
}

// GetTransferByIDForUpdate retrieves a transfer and locks its row until
// the surrounding transaction commits or rolls back, so a concurrent
// cancellation of the same transfer serializes here and sees the final
// status.
func (r *TransferRepository) GetTransferByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transfer, error) {
	var transfer domain.Transfer
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &transfer, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock transfer %d: %w", id, err)
	}
	return &transfer, nil
}

// UpdateTransferStatus sets the status of a transfer using the provided
// DBExecutor.
func (r *TransferRepository) UpdateTransferStatus(ctx context.Context, q repository.DBExecutor, transferID int64, status domain.TransferStatus) error {
	result, err := q.ExecContext(ctx,
		`UPDATE transfers SET status = $1 WHERE id = $2`, status, transferID)
	if err != nil {
		return fmt.Errorf("failed to update transfer %d: %w", transferID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating transfer %d: %w", transferID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// ListTransfersByUser retrieves transfers where either side is a card
// owned by the user, using the provided DBExecutor.
func (r *TransferRepository) ListTransfersByUser(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Transfer, int64, error) {
	transfers := []domain.Transfer{}

	countQuery := `SELECT COUNT(*) FROM transfers t
		JOIN cards f ON f.id = t.from_card_id
		JOIN cards d ON d.id = t.to_card_id
		WHERE f.owner_id = $1 OR d.owner_id = $1`
	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers for user %d: %w", userID, err)
	}

	query := `SELECT ` + transferJoinedColumns + `
		FROM transfers t
		JOIN cards f ON f.id = t.from_card_id
		JOIN cards d ON d.id = t.to_card_id
		WHERE f.owner_id = $1 OR d.owner_id = $1
		ORDER BY t.transfer_date DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &transfers, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transfers for user %d: %w", userID, err)
	}

	return transfers, totalCount, nil
}
