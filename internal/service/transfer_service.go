// internal/service/transfer_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"cardvault/internal/crypto"
	"cardvault/internal/domain"
	"cardvault/internal/repository"
	"cardvault/internal/util"
	"cardvault/pkg/db"

	"github.com/shopspring/decimal"
)

// TransferInput carries the data needed to move funds between two of
// the requester's own cards. Cards are addressed by plaintext number;
// resolution goes through the deterministic hash.
type TransferInput struct {
	FromCardNumber string
	ToCardNumber   string
	Amount         decimal.Decimal
	Description    *string
	RequesterID    int64
}

// TransferService performs atomic fund movement between two cards owned
// by the same user, and conservative cancellation within a fixed window.
type TransferService interface {
	Transfer(ctx context.Context, input TransferInput) (*domain.Transfer, error)
	CancelTransfer(ctx context.Context, transferID, requesterID int64) error
	GetTransfer(ctx context.Context, transferID, callerID int64) (*domain.Transfer, error)
	ListUserTransfers(ctx context.Context, userID int64, limit, offset int) ([]domain.Transfer, int64, error)
}

type transferService struct {
	txRunner
	dbExecutor        repository.DBExecutor
	transferRepo      repository.TransferRepository
	cardRepo          repository.CardRepository
	codec             *crypto.Codec
	maxTransferAmount decimal.Decimal
	cancelWindow      time.Duration
}

// NewTransferService creates a new instance of TransferService.
func NewTransferService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	transferRepo repository.TransferRepository,
	cardRepo repository.CardRepository,
	codec *crypto.Codec,
	maxTransferAmount decimal.Decimal,
	cancelWindow time.Duration,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) TransferService {
	return &transferService{
		txRunner:          txRunner{dbBeginner: dbBeginner, beginTx: beginTx, commitTx: commitTx, rollbackTx: rollbackTx},
		dbExecutor:        dbExecutor,
		transferRepo:      transferRepo,
		cardRepo:          cardRepo,
		codec:             codec,
		maxTransferAmount: maxTransferAmount,
		cancelWindow:      cancelWindow,
	}
}

// Transfer debits the source card, credits the destination card and
// records a COMPLETED transfer as one atomic unit. Both card rows are
// locked for the duration of the transaction, always in ascending card
// ID order so two concurrent transfers over the same pair in opposite
// directions cannot deadlock.
func (s *transferService) Transfer(ctx context.Context, input TransferInput) (*domain.Transfer, error) {
	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	defer s.rollbackTx(txController)

	fromCard, err := s.findCardByNumber(ctx, txExecutor, input.FromCardNumber)
	if err != nil {
		return nil, err
	}
	toCard, err := s.findCardByNumber(ctx, txExecutor, input.ToCardNumber)
	if err != nil {
		return nil, err
	}

	if fromCard.OwnerID != input.RequesterID || toCard.OwnerID != input.RequesterID {
		return nil, util.ErrCardNotOwned
	}

	if !input.Amount.IsPositive() {
		return nil, util.ErrInvalidAmount
	}
	if input.Amount.GreaterThan(s.maxTransferAmount) {
		return nil, util.ErrAmountTooLarge
	}
	if fromCard.ID == toCard.ID {
		return nil, util.ErrSameCard
	}

	// Re-read under row locks; the status and balance preconditions
	// must hold against the locked rows, not the earlier snapshots. A
	// block committed while we waited on the lock is visible here.
	fromCard, toCard, err = s.lockCardPair(ctx, txExecutor, fromCard.ID, toCard.ID)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	now := time.Now()
	if !fromCard.IsActive(now) || !toCard.IsActive(now) {
		return nil, util.ErrCardNotActive
	}
	if fromCard.Balance.LessThan(input.Amount) {
		return nil, util.ErrInsufficientFunds
	}

	if err := s.cardRepo.AdjustCardBalance(ctx, txExecutor, fromCard.ID, input.Amount.Neg()); err != nil {
		return nil, fmt.Errorf("transfer: failed to debit card %d: %w", fromCard.ID, err)
	}
	if err := s.cardRepo.AdjustCardBalance(ctx, txExecutor, toCard.ID, input.Amount); err != nil {
		return nil, fmt.Errorf("transfer: failed to credit card %d: %w", toCard.ID, err)
	}

	transfer := domain.NewTransfer(fromCard.ID, toCard.ID, input.Amount, input.Description)
	transfer.FromCardLastFour = fromCard.LastFour
	transfer.ToCardLastFour = toCard.LastFour
	if err := s.transferRepo.CreateTransfer(ctx, txExecutor, transfer); err != nil {
		return nil, fmt.Errorf("transfer: failed to create transfer record: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("transfer: failed to commit transaction: %w", err)
	}

	return transfer, nil
}

// CancelTransfer reverses a completed transfer within the cancellation
// window, restoring both balances exactly. Only the destination card's
// current balance is checked; funds already moved onward cannot be
// clawed back.
func (s *transferService) CancelTransfer(ctx context.Context, transferID, requesterID int64) error {
	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("cancel transfer: %w", err)
	}
	defer s.rollbackTx(txController)

	// Lock the transfer row first so two concurrent cancellations of
	// the same transfer serialize here; the status check below then
	// runs against the row as the earlier cancellation left it.
	transfer, err := s.transferRepo.GetTransferByIDForUpdate(ctx, txExecutor, transferID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return util.ErrTransferNotFound
		}
		return fmt.Errorf("cancel transfer: failed to lock transfer %d: %w", transferID, err)
	}

	fromCard, toCard, err := s.lockCardPair(ctx, txExecutor, transfer.FromCardID, transfer.ToCardID)
	if err != nil {
		return fmt.Errorf("cancel transfer: %w", err)
	}

	if fromCard.OwnerID != requesterID {
		return util.ErrNotInitiator
	}
	if time.Now().UTC().Sub(transfer.TransferDate) > s.cancelWindow {
		return util.ErrCancellationWindowExpired
	}
	if transfer.Status != domain.TransferStatusCompleted {
		return util.ErrNotCancellable
	}
	if toCard.Balance.LessThan(transfer.Amount) {
		return util.ErrInsufficientFundsToReverse
	}

	if err := s.cardRepo.AdjustCardBalance(ctx, txExecutor, fromCard.ID, transfer.Amount); err != nil {
		return fmt.Errorf("cancel transfer: failed to credit card %d: %w", fromCard.ID, err)
	}
	if err := s.cardRepo.AdjustCardBalance(ctx, txExecutor, toCard.ID, transfer.Amount.Neg()); err != nil {
		return fmt.Errorf("cancel transfer: failed to debit card %d: %w", toCard.ID, err)
	}
	if err := s.transferRepo.UpdateTransferStatus(ctx, txExecutor, transferID, domain.TransferStatusCancelled); err != nil {
		return fmt.Errorf("cancel transfer: failed to update transfer %d: %w", transferID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("cancel transfer: failed to commit transaction: %w", err)
	}
	return nil
}

// GetTransfer retrieves a transfer for a user owning either side.
func (s *transferService) GetTransfer(ctx context.Context, transferID, callerID int64) (*domain.Transfer, error) {
	transfer, err := s.transferRepo.GetTransferByID(ctx, s.dbExecutor, transferID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrTransferNotFound
		}
		return nil, fmt.Errorf("get transfer: failed to get transfer %d: %w", transferID, err)
	}

	fromCard, err := s.cardRepo.GetCardByID(ctx, s.dbExecutor, transfer.FromCardID)
	if err != nil {
		return nil, fmt.Errorf("get transfer: failed to get card %d: %w", transfer.FromCardID, err)
	}
	toCard, err := s.cardRepo.GetCardByID(ctx, s.dbExecutor, transfer.ToCardID)
	if err != nil {
		return nil, fmt.Errorf("get transfer: failed to get card %d: %w", transfer.ToCardID, err)
	}
	if fromCard.OwnerID != callerID && toCard.OwnerID != callerID {
		return nil, util.ErrAccessDenied
	}

	return transfer, nil
}

// ListUserTransfers retrieves transfers touching any card owned by the
// user.
func (s *transferService) ListUserTransfers(ctx context.Context, userID int64, limit, offset int) ([]domain.Transfer, int64, error) {
	transfers, totalCount, err := s.transferRepo.ListTransfersByUser(ctx, s.dbExecutor, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list user transfers: %w", err)
	}
	return transfers, totalCount, nil
}

// lockCardPair locks two card rows in ascending ID order and returns
// them in (first, second) argument order.
func (s *transferService) lockCardPair(ctx context.Context, q repository.DBExecutor, firstID, secondID int64) (*domain.Card, *domain.Card, error) {
	lowID, highID := firstID, secondID
	if lowID > highID {
		lowID, highID = highID, lowID
	}

	low, err := s.cardRepo.GetCardByIDForUpdate(ctx, q, lowID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, nil, util.ErrCardNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock card %d: %w", lowID, err)
	}
	high, err := s.cardRepo.GetCardByIDForUpdate(ctx, q, highID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, nil, util.ErrCardNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock card %d: %w", highID, err)
	}

	if firstID == lowID {
		return low, high, nil
	}
	return high, low, nil
}

func (s *transferService) findCardByNumber(ctx context.Context, q repository.DBExecutor, cardNumber string) (*domain.Card, error) {
	card, err := s.cardRepo.GetCardByNumberHash(ctx, q, s.codec.Hash(cardNumber))
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to resolve card by number: %w", err)
	}
	return card, nil
}
