// internal/service/card_service.go
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

// IssueCardInput carries the data needed to issue a new card. The
// plaintext number and CVV never leave this struct unencrypted.
type IssueCardInput struct {
	OwnerID        int64
	CardNumber     string
	HolderName     string
	ExpirationDate time.Time
	CVV            string
	InitialBalance decimal.Decimal
}

// CardService owns card records and their status transitions.
type CardService interface {
	IssueCard(ctx context.Context, input IssueCardInput) (*domain.Card, error)
	GetCard(ctx context.Context, cardID, callerID int64) (*domain.Card, error)
	GetCardBalance(ctx context.Context, cardID, callerID int64) (decimal.Decimal, error)
	ListUserCards(ctx context.Context, ownerID int64, status *domain.CardStatus, search string, limit, offset int) ([]domain.Card, int64, error)
	ListAllCards(ctx context.Context, limit, offset int) ([]domain.Card, int64, error)
	ActivateCard(ctx context.Context, cardID int64) (*domain.Card, error)
	BlockCard(ctx context.Context, cardID int64) (*domain.Card, error)
	DeleteCard(ctx context.Context, cardID int64) error
	SweepExpired(ctx context.Context) (int64, error)
}

type cardService struct {
	txRunner
	dbExecutor        repository.DBExecutor
	cardRepo          repository.CardRepository
	userRepo          repository.UserRepository
	blockRequestRepo  repository.BlockRequestRepository
	codec             *crypto.Codec
	maxInitialBalance decimal.Decimal
}

// NewCardService creates a new instance of CardService.
func NewCardService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	cardRepo repository.CardRepository,
	userRepo repository.UserRepository,
	blockRequestRepo repository.BlockRequestRepository,
	codec *crypto.Codec,
	maxInitialBalance decimal.Decimal,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) CardService {
	return &cardService{
		txRunner:          txRunner{dbBeginner: dbBeginner, beginTx: beginTx, commitTx: commitTx, rollbackTx: rollbackTx},
		dbExecutor:        dbExecutor,
		cardRepo:          cardRepo,
		userRepo:          userRepo,
		blockRequestRepo:  blockRequestRepo,
		codec:             codec,
		maxInitialBalance: maxInitialBalance,
	}
}

// IssueCard creates a new card for an owner. Only the encrypted number,
// its deterministic hash and the last four digits are persisted.
func (s *cardService) IssueCard(ctx context.Context, input IssueCardInput) (*domain.Card, error) {
	if input.InitialBalance.IsNegative() {
		return nil, util.ErrInvalidInput
	}
	if input.InitialBalance.GreaterThan(s.maxInitialBalance) {
		return nil, util.ErrBalanceExceedsMax
	}

	now := time.Now().UTC()
	minExpiration := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	if input.ExpirationDate.Before(minExpiration) {
		return nil, util.ErrInvalidExpiration
	}

	lastFour, err := crypto.LastFour(input.CardNumber)
	if err != nil {
		return nil, util.ErrInvalidInput
	}

	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("issue card: %w", err)
	}
	defer s.rollbackTx(txController)

	if _, err := s.userRepo.GetUserByID(ctx, txExecutor, input.OwnerID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("issue card: failed to get owner %d: %w", input.OwnerID, err)
	}

	numberHash := s.codec.Hash(input.CardNumber)
	if _, err := s.cardRepo.GetCardByNumberHash(ctx, txExecutor, numberHash); err == nil {
		return nil, util.ErrDuplicateCardNumber
	} else if !util.IsError(err, util.ErrNotFound) {
		return nil, fmt.Errorf("issue card: failed to check card number uniqueness: %w", err)
	}

	numberEncrypted, err := s.codec.Encrypt(input.CardNumber)
	if err != nil {
		return nil, fmt.Errorf("issue card: failed to encrypt card number: %w", err)
	}
	cvvEncrypted, err := s.codec.Encrypt(input.CVV)
	if err != nil {
		return nil, fmt.Errorf("issue card: failed to encrypt cvv: %w", err)
	}

	card := domain.NewCard(input.OwnerID, numberEncrypted, numberHash, lastFour,
		input.HolderName, input.ExpirationDate, cvvEncrypted, input.InitialBalance)
	if err := s.cardRepo.CreateCard(ctx, txExecutor, card); err != nil {
		return nil, fmt.Errorf("issue card: failed to create card: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("issue card: failed to commit transaction: %w", err)
	}

	return card, nil
}

// GetCard retrieves a card for its owner or an admin.
func (s *cardService) GetCard(ctx context.Context, cardID, callerID int64) (*domain.Card, error) {
	card, err := s.cardRepo.GetCardByID(ctx, s.dbExecutor, cardID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrCardNotFound
		}
		return nil, fmt.Errorf("get card: failed to get card %d: %w", cardID, err)
	}

	if err := s.requireOwnerOrAdmin(ctx, card, callerID); err != nil {
		return nil, err
	}
	return card, nil
}

// GetCardBalance retrieves a card's balance for its owner or an admin.
func (s *cardService) GetCardBalance(ctx context.Context, cardID, callerID int64) (decimal.Decimal, error) {
	card, err := s.GetCard(ctx, cardID, callerID)
	if err != nil {
		return decimal.Zero, err
	}
	return card.Balance, nil
}

// ListUserCards retrieves an owner's cards with optional status filter
// and search.
func (s *cardService) ListUserCards(ctx context.Context, ownerID int64, status *domain.CardStatus, search string, limit, offset int) ([]domain.Card, int64, error) {
	if _, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, ownerID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, 0, util.ErrUserNotFound
		}
		return nil, 0, fmt.Errorf("list cards: failed to get owner %d: %w", ownerID, err)
	}
	cards, totalCount, err := s.cardRepo.ListCardsByOwner(ctx, s.dbExecutor, ownerID, status, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list cards: %w", err)
	}
	return cards, totalCount, nil
}

// ListAllCards retrieves all cards (admin surface).
func (s *cardService) ListAllCards(ctx context.Context, limit, offset int) ([]domain.Card, int64, error) {
	cards, totalCount, err := s.cardRepo.ListAllCards(ctx, s.dbExecutor, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list all cards: %w", err)
	}
	return cards, totalCount, nil
}

// ActivateCard sets the stored status of a blocked card back to ACTIVE.
func (s *cardService) ActivateCard(ctx context.Context, cardID int64) (*domain.Card, error) {
	return s.setCardStatus(ctx, cardID, domain.CardStatusActive)
}

// BlockCard sets the stored status of an active card to BLOCKED.
func (s *cardService) BlockCard(ctx context.Context, cardID int64) (*domain.Card, error) {
	return s.setCardStatus(ctx, cardID, domain.CardStatusBlocked)
}

func (s *cardService) setCardStatus(ctx context.Context, cardID int64, target domain.CardStatus) (*domain.Card, error) {
	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("set card status: %w", err)
	}
	defer s.rollbackTx(txController)

	card, err := s.cardRepo.GetCardByIDForUpdate(ctx, txExecutor, cardID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrCardNotFound
		}
		return nil, fmt.Errorf("set card status: failed to lock card %d: %w", cardID, err)
	}

	if card.IsExpired(time.Now()) {
		return nil, util.ErrCardExpired
	}
	if card.Status == target {
		if target == domain.CardStatusActive {
			return nil, util.ErrCardAlreadyActive
		}
		return nil, util.ErrCardAlreadyBlocked
	}

	if err := s.cardRepo.UpdateCardStatus(ctx, txExecutor, cardID, target); err != nil {
		return nil, fmt.Errorf("set card status: failed to update card %d: %w", cardID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("set card status: failed to commit transaction: %w", err)
	}

	card.Status = target
	return card, nil
}

// DeleteCard removes a card. Only cards with a zero balance and no
// pending block request can be deleted.
func (s *cardService) DeleteCard(ctx context.Context, cardID int64) error {
	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	defer s.rollbackTx(txController)

	card, err := s.cardRepo.GetCardByIDForUpdate(ctx, txExecutor, cardID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return util.ErrCardNotFound
		}
		return fmt.Errorf("delete card: failed to lock card %d: %w", cardID, err)
	}

	if !card.Balance.IsZero() {
		return util.ErrNonZeroBalance
	}
	if _, err := s.blockRequestRepo.GetPendingBlockRequestForCard(ctx, txExecutor, cardID); err == nil {
		return util.ErrPendingBlockRequestExists
	} else if !util.IsError(err, util.ErrNotFound) {
		return fmt.Errorf("delete card: failed to check pending block request for card %d: %w", cardID, err)
	}

	if err := s.cardRepo.DeleteCard(ctx, txExecutor, cardID); err != nil {
		return fmt.Errorf("delete card: failed to delete card %d: %w", cardID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("delete card: failed to commit transaction: %w", err)
	}
	return nil
}

// SweepExpired persists EXPIRED into storage for every card past its
// expiration date. A single UPDATE statement, so it needs no explicit
// transaction and is safe to rerun.
func (s *cardService) SweepExpired(ctx context.Context) (int64, error) {
	updated, err := s.cardRepo.MarkExpiredCards(ctx, s.dbExecutor, time.Now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired: %w", err)
	}
	return updated, nil
}

func (s *cardService) requireOwnerOrAdmin(ctx context.Context, card *domain.Card, callerID int64) error {
	if card.OwnerID == callerID {
		return nil
	}
	caller, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, callerID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return util.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user %d: %w", callerID, err)
	}
	if !caller.IsAdmin() {
		return util.ErrAccessDenied
	}
	return nil
}
