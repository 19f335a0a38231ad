// internal/repository/transfer_repo.go
package repository

import (
	"context"

	"cardvault/internal/domain"
)

// TransferRepository defines the interface for transfer data operations.
type TransferRepository interface {
	// CreateTransfer inserts a new transfer record and fills in its ID.
	CreateTransfer(ctx context.Context, q DBExecutor, transfer *domain.Transfer) error
	// GetTransferByID retrieves a transfer by its ID.
	GetTransferByID(ctx context.Context, q DBExecutor, id int64) (*domain.Transfer, error)
	// GetTransferByIDForUpdate retrieves a transfer and locks its row
	// until the surrounding transaction commits or rolls back.
	GetTransferByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Transfer, error)
	// UpdateTransferStatus sets the status of a transfer.
	UpdateTransferStatus(ctx context.Context, q DBExecutor, transferID int64, status domain.TransferStatus) error
	// ListTransfersByUser retrieves transfers touching any card owned by
	// the user, newest first.
	ListTransfersByUser(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Transfer, int64, error)
}
