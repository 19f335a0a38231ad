// internal/service/block_request_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"cardvault/internal/domain"
	"cardvault/internal/repository"
	"cardvault/internal/util"
	"cardvault/pkg/db"
)

// BlockRequestService owns the request-for-block approval workflow.
// PENDING is the only non-terminal state; approval flips the card to
// BLOCKED in the same transaction that marks the request APPROVED.
type BlockRequestService interface {
	CreateRequest(ctx context.Context, cardID, requesterID int64, reason string) (*domain.BlockRequest, error)
	ApproveRequest(ctx context.Context, requestID, adminID int64, comment string) (*domain.BlockRequest, error)
	RejectRequest(ctx context.Context, requestID, adminID int64, comment string) (*domain.BlockRequest, error)
	CancelRequest(ctx context.Context, requestID, requesterID int64) (*domain.BlockRequest, error)
	ListRequests(ctx context.Context, status *domain.BlockRequestStatus, limit, offset int) ([]domain.BlockRequest, int64, error)
	ListUserRequests(ctx context.Context, requesterID int64, limit, offset int) ([]domain.BlockRequest, int64, error)
}

type blockRequestService struct {
	txRunner
	dbExecutor       repository.DBExecutor
	blockRequestRepo repository.BlockRequestRepository
	cardRepo         repository.CardRepository
	userRepo         repository.UserRepository
}

// NewBlockRequestService creates a new instance of BlockRequestService.
func NewBlockRequestService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	blockRequestRepo repository.BlockRequestRepository,
	cardRepo repository.CardRepository,
	userRepo repository.UserRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) BlockRequestService {
	return &blockRequestService{
		txRunner:         txRunner{dbBeginner: dbBeginner, beginTx: beginTx, commitTx: commitTx, rollbackTx: rollbackTx},
		dbExecutor:       dbExecutor,
		blockRequestRepo: blockRequestRepo,
		cardRepo:         cardRepo,
		userRepo:         userRepo,
	}
}

// CreateRequest inserts a PENDING block request for a card the
// requester owns and which is actually active. At most one PENDING
// request may exist per card.
func (s *blockRequestService) CreateRequest(ctx context.Context, cardID, requesterID int64, reason string) (*domain.BlockRequest, error) {
	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create block request: %w", err)
	}
	defer s.rollbackTx(txController)

	card, err := s.cardRepo.GetCardByIDForUpdate(ctx, txExecutor, cardID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrCardNotFound
		}
		return nil, fmt.Errorf("create block request: failed to lock card %d: %w", cardID, err)
	}

	if card.OwnerID != requesterID {
		return nil, util.ErrCardNotOwned
	}
	if !card.IsActive(time.Now()) {
		return nil, util.ErrCardNotActive
	}

	if _, err := s.blockRequestRepo.GetPendingBlockRequestForCard(ctx, txExecutor, cardID); err == nil {
		return nil, util.ErrPendingRequestExists
	} else if !util.IsError(err, util.ErrNotFound) {
		return nil, fmt.Errorf("create block request: failed to check pending request for card %d: %w", cardID, err)
	}

	request := domain.NewBlockRequest(cardID, requesterID, reason)
	if err := s.blockRequestRepo.CreateBlockRequest(ctx, txExecutor, request); err != nil {
		return nil, fmt.Errorf("create block request: failed to create request: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create block request: failed to commit transaction: %w", err)
	}

	return request, nil
}

// ApproveRequest blocks the card and marks the request APPROVED as one
// atomic unit. Both writes commit or neither does.
func (s *blockRequestService) ApproveRequest(ctx context.Context, requestID, adminID int64, comment string) (*domain.BlockRequest, error) {
	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("approve block request: %w", err)
	}
	defer s.rollbackTx(txController)

	if err := s.requireAdmin(ctx, txExecutor, adminID); err != nil {
		return nil, err
	}
	request, err := s.loadPendingRequest(ctx, txExecutor, requestID)
	if err != nil {
		return nil, err
	}

	card, err := s.cardRepo.GetCardByIDForUpdate(ctx, txExecutor, request.CardID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrCardNotFound
		}
		return nil, fmt.Errorf("approve block request: failed to lock card %d: %w", request.CardID, err)
	}
	if !card.IsActive(time.Now()) {
		return nil, util.ErrCardNotActive
	}

	if err := s.cardRepo.UpdateCardStatus(ctx, txExecutor, card.ID, domain.CardStatusBlocked); err != nil {
		return nil, fmt.Errorf("approve block request: failed to block card %d: %w", card.ID, err)
	}

	s.markProcessed(request, domain.BlockRequestStatusApproved, &adminID, &comment)
	if err := s.blockRequestRepo.UpdateBlockRequest(ctx, txExecutor, request); err != nil {
		return nil, fmt.Errorf("approve block request: failed to update request %d: %w", requestID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("approve block request: failed to commit transaction: %w", err)
	}

	return request, nil
}

// RejectRequest marks the request REJECTED. The card is untouched.
func (s *blockRequestService) RejectRequest(ctx context.Context, requestID, adminID int64, comment string) (*domain.BlockRequest, error) {
	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("reject block request: %w", err)
	}
	defer s.rollbackTx(txController)

	if err := s.requireAdmin(ctx, txExecutor, adminID); err != nil {
		return nil, err
	}
	request, err := s.loadPendingRequest(ctx, txExecutor, requestID)
	if err != nil {
		return nil, err
	}

	s.markProcessed(request, domain.BlockRequestStatusRejected, &adminID, &comment)
	if err := s.blockRequestRepo.UpdateBlockRequest(ctx, txExecutor, request); err != nil {
		return nil, fmt.Errorf("reject block request: failed to update request %d: %w", requestID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("reject block request: failed to commit transaction: %w", err)
	}

	return request, nil
}

// CancelRequest lets the original requester withdraw a PENDING request.
func (s *blockRequestService) CancelRequest(ctx context.Context, requestID, requesterID int64) (*domain.BlockRequest, error) {
	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cancel block request: %w", err)
	}
	defer s.rollbackTx(txController)

	request, err := s.blockRequestRepo.GetBlockRequestByID(ctx, txExecutor, requestID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrBlockRequestNotFound
		}
		return nil, fmt.Errorf("cancel block request: failed to get request %d: %w", requestID, err)
	}

	if request.RequestedByID != requesterID {
		return nil, util.ErrNotRequester
	}
	if !request.IsPending() {
		return nil, util.ErrRequestNotPending
	}

	s.markProcessed(request, domain.BlockRequestStatusCancelled, nil, nil)
	if err := s.blockRequestRepo.UpdateBlockRequest(ctx, txExecutor, request); err != nil {
		return nil, fmt.Errorf("cancel block request: failed to update request %d: %w", requestID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("cancel block request: failed to commit transaction: %w", err)
	}

	return request, nil
}

// ListRequests retrieves block requests with an optional status filter
// (admin surface).
func (s *blockRequestService) ListRequests(ctx context.Context, status *domain.BlockRequestStatus, limit, offset int) ([]domain.BlockRequest, int64, error) {
	requests, totalCount, err := s.blockRequestRepo.ListBlockRequests(ctx, s.dbExecutor, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list block requests: %w", err)
	}
	return requests, totalCount, nil
}

// ListUserRequests retrieves the requests a user has filed.
func (s *blockRequestService) ListUserRequests(ctx context.Context, requesterID int64, limit, offset int) ([]domain.BlockRequest, int64, error) {
	requests, totalCount, err := s.blockRequestRepo.ListBlockRequestsByRequester(ctx, s.dbExecutor, requesterID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list user block requests: %w", err)
	}
	return requests, totalCount, nil
}

func (s *blockRequestService) loadPendingRequest(ctx context.Context, q repository.DBExecutor, requestID int64) (*domain.BlockRequest, error) {
	request, err := s.blockRequestRepo.GetBlockRequestByID(ctx, q, requestID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrBlockRequestNotFound
		}
		return nil, fmt.Errorf("failed to get block request %d: %w", requestID, err)
	}
	if !request.IsPending() {
		return nil, util.ErrRequestNotPending
	}
	return request, nil
}

func (s *blockRequestService) requireAdmin(ctx context.Context, q repository.DBExecutor, adminID int64) error {
	admin, err := s.userRepo.GetUserByID(ctx, q, adminID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return util.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user %d: %w", adminID, err)
	}
	if !admin.IsAdmin() {
		return util.ErrNotAdmin
	}
	return nil
}

func (s *blockRequestService) markProcessed(request *domain.BlockRequest, status domain.BlockRequestStatus, processedByID *int64, comment *string) {
	now := time.Now().UTC()
	request.Status = status
	request.ProcessedByID = processedByID
	request.AdminComment = comment
	request.ProcessedAt = &now
}
