// internal/service/block_request_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"cardvault/internal/domain"
	"cardvault/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type blockRequestServiceMocks struct {
	blockRequestRepo *MockBlockRequestRepository
	cardRepo         *MockCardRepository
	userRepo         *MockUserRepository
	dbBeginner       *MockDBBeginner
	dbExecutor       *MockDBExecutor
	txController     *MockTxController
}

func newBlockRequestServiceWithMocks(t *testing.T) (BlockRequestService, blockRequestServiceMocks) {
	t.Helper()

	m := blockRequestServiceMocks{
		blockRequestRepo: new(MockBlockRequestRepository),
		cardRepo:         new(MockCardRepository),
		userRepo:         new(MockUserRepository),
		dbBeginner:       new(MockDBBeginner),
		dbExecutor:       new(MockDBExecutor),
		txController:     new(MockTxController),
	}

	beginTx, commitTx, rollbackTx := testTxFuncs(m.txController)
	service := NewBlockRequestService(
		m.dbBeginner,
		m.dbExecutor,
		m.blockRequestRepo,
		m.cardRepo,
		m.userRepo,
		beginTx,
		commitTx,
		rollbackTx,
	)
	return service, m
}

func (m blockRequestServiceMocks) assertExpectations(t *testing.T) {
	mock.AssertExpectationsForObjects(t, m.blockRequestRepo, m.cardRepo, m.userRepo, m.dbBeginner, m.dbExecutor, m.txController)
}

func TestCreateBlockRequest(t *testing.T) {
	cardID := int64(10)
	requesterID := int64(7)
	futureExpiration := time.Now().UTC().AddDate(2, 0, 0)

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		card := &domain.Card{ID: cardID, OwnerID: requesterID, Status: domain.CardStatusActive, ExpirationDate: futureExpiration}
		m.cardRepo.On("GetCardByIDForUpdate", ctx, mock.Anything, cardID).Return(card, nil).Once()
		m.blockRequestRepo.On("GetPendingBlockRequestForCard", ctx, mock.Anything, cardID).Return(nil, util.ErrNotFound).Once()
		m.blockRequestRepo.On("CreateBlockRequest", ctx, mock.Anything, mock.AnythingOfType("*domain.BlockRequest")).Return(nil).Once()
		m.txController.On("Commit").Return(nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe()

		request, err := service.CreateRequest(ctx, cardID, requesterID, "card lost")

		assert.NoError(t, err)
		require.NotNil(t, request)
		assert.Equal(t, domain.BlockRequestStatusPending, request.Status)
		assert.Equal(t, cardID, request.CardID)
		assert.Equal(t, requesterID, request.RequestedByID)
		assert.Equal(t, "card lost", request.Reason)
		m.assertExpectations(t)
	})

	t.Run("NotOwner", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		card := &domain.Card{ID: cardID, OwnerID: 99, Status: domain.CardStatusActive, ExpirationDate: futureExpiration}
		m.cardRepo.On("GetCardByIDForUpdate", ctx, mock.Anything, cardID).Return(card, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		request, err := service.CreateRequest(ctx, cardID, requesterID, "card lost")

		assert.ErrorIs(t, err, util.ErrCardNotOwned)
		assert.Nil(t, request)
		m.txController.AssertNotCalled(t, "Commit")
		m.assertExpectations(t)
	})

	t.Run("CardNotActive", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		card := &domain.Card{ID: cardID, OwnerID: requesterID, Status: domain.CardStatusBlocked, ExpirationDate: futureExpiration}
		m.cardRepo.On("GetCardByIDForUpdate", ctx, mock.Anything, cardID).Return(card, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		request, err := service.CreateRequest(ctx, cardID, requesterID, "card lost")

		assert.ErrorIs(t, err, util.ErrCardNotActive)
		assert.Nil(t, request)
		m.assertExpectations(t)
	})

	t.Run("ExpiredCardNotActive", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		card := &domain.Card{ID: cardID, OwnerID: requesterID, Status: domain.CardStatusActive, ExpirationDate: time.Now().UTC().AddDate(0, 0, -1)}
		m.cardRepo.On("GetCardByIDForUpdate", ctx, mock.Anything, cardID).Return(card, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		request, err := service.CreateRequest(ctx, cardID, requesterID, "card lost")

		assert.ErrorIs(t, err, util.ErrCardNotActive)
		assert.Nil(t, request)
		m.assertExpectations(t)
	})

	t.Run("PendingRequestAlreadyExists", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		card := &domain.Card{ID: cardID, OwnerID: requesterID, Status: domain.CardStatusActive, ExpirationDate: futureExpiration}
		existing := &domain.BlockRequest{ID: 1, CardID: cardID, Status: domain.BlockRequestStatusPending}
		m.cardRepo.On("GetCardByIDForUpdate", ctx, mock.Anything, cardID).Return(card, nil).Once()
		m.blockRequestRepo.On("GetPendingBlockRequestForCard", ctx, mock.Anything, cardID).Return(existing, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		request, err := service.CreateRequest(ctx, cardID, requesterID, "card lost")

		assert.ErrorIs(t, err, util.ErrPendingRequestExists)
		assert.Nil(t, request)
		m.blockRequestRepo.AssertNotCalled(t, "CreateBlockRequest", mock.Anything, mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})
}

func TestApproveBlockRequest(t *testing.T) {
	requestID := int64(5)
	cardID := int64(10)
	adminID := int64(99)
	futureExpiration := time.Now().UTC().AddDate(2, 0, 0)
	admin := func() *domain.User {
		return &domain.User{ID: adminID, Roles: []string{domain.RoleAdmin}}
	}

	t.Run("BlocksCardAndApprovesRequestAtomically", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		pending := &domain.BlockRequest{ID: requestID, CardID: cardID, RequestedByID: 7, Status: domain.BlockRequestStatusPending}
		card := &domain.Card{ID: cardID, OwnerID: 7, Status: domain.CardStatusActive, ExpirationDate: futureExpiration}

		m.userRepo.On("GetUserByID", ctx, mock.Anything, adminID).Return(admin(), nil).Once()
		m.blockRequestRepo.On("GetBlockRequestByID", ctx, mock.Anything, requestID).Return(pending, nil).Once()
		m.cardRepo.On("GetCardByIDForUpdate", ctx, mock.Anything, cardID).Return(card, nil).Once()
		m.cardRepo.On("UpdateCardStatus", ctx, mock.Anything, cardID, domain.CardStatusBlocked).Return(nil).Once()
		m.blockRequestRepo.On("UpdateBlockRequest", ctx, mock.Anything, mock.MatchedBy(func(r *domain.BlockRequest) bool {
			return r.Status == domain.BlockRequestStatusApproved && r.ProcessedByID != nil && *r.ProcessedByID == adminID
		})).Return(nil).Once()
		m.txController.On("Commit").Return(nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe()

		result, err := service.ApproveRequest(ctx, requestID, adminID, "verified with owner")

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, domain.BlockRequestStatusApproved, result.Status)
		require.NotNil(t, result.AdminComment)
		assert.Equal(t, "verified with owner", *result.AdminComment)
		assert.NotNil(t, result.ProcessedAt)
		m.assertExpectations(t)
	})

	t.Run("NotAdmin", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		user := &domain.User{ID: adminID, Roles: []string{domain.RoleUser}}
		m.userRepo.On("GetUserByID", ctx, mock.Anything, adminID).Return(user, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		result, err := service.ApproveRequest(ctx, requestID, adminID, "")

		assert.ErrorIs(t, err, util.ErrNotAdmin)
		assert.Nil(t, result)
		m.blockRequestRepo.AssertNotCalled(t, "GetBlockRequestByID", mock.Anything, mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("RequestNotPending", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		rejected := &domain.BlockRequest{ID: requestID, CardID: cardID, Status: domain.BlockRequestStatusRejected}
		m.userRepo.On("GetUserByID", ctx, mock.Anything, adminID).Return(admin(), nil).Once()
		m.blockRequestRepo.On("GetBlockRequestByID", ctx, mock.Anything, requestID).Return(rejected, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		result, err := service.ApproveRequest(ctx, requestID, adminID, "")

		assert.ErrorIs(t, err, util.ErrRequestNotPending)
		assert.Nil(t, result)
		m.cardRepo.AssertNotCalled(t, "UpdateCardStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("CardNoLongerActive", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		pending := &domain.BlockRequest{ID: requestID, CardID: cardID, Status: domain.BlockRequestStatusPending}
		card := &domain.Card{ID: cardID, Status: domain.CardStatusBlocked, ExpirationDate: futureExpiration}

		m.userRepo.On("GetUserByID", ctx, mock.Anything, adminID).Return(admin(), nil).Once()
		m.blockRequestRepo.On("GetBlockRequestByID", ctx, mock.Anything, requestID).Return(pending, nil).Once()
		m.cardRepo.On("GetCardByIDForUpdate", ctx, mock.Anything, cardID).Return(card, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		result, err := service.ApproveRequest(ctx, requestID, adminID, "")

		assert.ErrorIs(t, err, util.ErrCardNotActive)
		assert.Nil(t, result)
		m.blockRequestRepo.AssertNotCalled(t, "UpdateBlockRequest", mock.Anything, mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("RequestNotFound", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		m.userRepo.On("GetUserByID", ctx, mock.Anything, adminID).Return(admin(), nil).Once()
		m.blockRequestRepo.On("GetBlockRequestByID", ctx, mock.Anything, requestID).Return(nil, util.ErrNotFound).Once()
		m.txController.On("Rollback").Return(nil).Once()

		result, err := service.ApproveRequest(ctx, requestID, adminID, "")

		assert.ErrorIs(t, err, util.ErrBlockRequestNotFound)
		assert.Nil(t, result)
		m.assertExpectations(t)
	})
}

func TestRejectBlockRequest(t *testing.T) {
	requestID := int64(5)
	adminID := int64(99)

	t.Run("LeavesCardUntouched", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		admin := &domain.User{ID: adminID, Roles: []string{domain.RoleAdmin}}
		pending := &domain.BlockRequest{ID: requestID, CardID: 10, Status: domain.BlockRequestStatusPending}

		m.userRepo.On("GetUserByID", ctx, mock.Anything, adminID).Return(admin, nil).Once()
		m.blockRequestRepo.On("GetBlockRequestByID", ctx, mock.Anything, requestID).Return(pending, nil).Once()
		m.blockRequestRepo.On("UpdateBlockRequest", ctx, mock.Anything, mock.MatchedBy(func(r *domain.BlockRequest) bool {
			return r.Status == domain.BlockRequestStatusRejected
		})).Return(nil).Once()
		m.txController.On("Commit").Return(nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe()

		result, err := service.RejectRequest(ctx, requestID, adminID, "card in use")

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, domain.BlockRequestStatusRejected, result.Status)
		m.cardRepo.AssertNotCalled(t, "UpdateCardStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.cardRepo.AssertNotCalled(t, "GetCardByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})
}

func TestCancelBlockRequest(t *testing.T) {
	requestID := int64(5)
	requesterID := int64(7)

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		pending := &domain.BlockRequest{ID: requestID, CardID: 10, RequestedByID: requesterID, Status: domain.BlockRequestStatusPending}
		m.blockRequestRepo.On("GetBlockRequestByID", ctx, mock.Anything, requestID).Return(pending, nil).Once()
		m.blockRequestRepo.On("UpdateBlockRequest", ctx, mock.Anything, mock.MatchedBy(func(r *domain.BlockRequest) bool {
			return r.Status == domain.BlockRequestStatusCancelled && r.ProcessedByID == nil && r.AdminComment == nil
		})).Return(nil).Once()
		m.txController.On("Commit").Return(nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe()

		result, err := service.CancelRequest(ctx, requestID, requesterID)

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, domain.BlockRequestStatusCancelled, result.Status)
		assert.NotNil(t, result.ProcessedAt)
		m.assertExpectations(t)
	})

	t.Run("NotRequester", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		pending := &domain.BlockRequest{ID: requestID, CardID: 10, RequestedByID: requesterID, Status: domain.BlockRequestStatusPending}
		m.blockRequestRepo.On("GetBlockRequestByID", ctx, mock.Anything, requestID).Return(pending, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		result, err := service.CancelRequest(ctx, requestID, int64(42))

		assert.ErrorIs(t, err, util.ErrNotRequester)
		assert.Nil(t, result)
		m.blockRequestRepo.AssertNotCalled(t, "UpdateBlockRequest", mock.Anything, mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("AlreadyProcessed", func(t *testing.T) {
		ctx := context.Background()
		service, m := newBlockRequestServiceWithMocks(t)

		approved := &domain.BlockRequest{ID: requestID, CardID: 10, RequestedByID: requesterID, Status: domain.BlockRequestStatusApproved}
		m.blockRequestRepo.On("GetBlockRequestByID", ctx, mock.Anything, requestID).Return(approved, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		result, err := service.CancelRequest(ctx, requestID, requesterID)

		assert.ErrorIs(t, err, util.ErrRequestNotPending)
		assert.Nil(t, result)
		m.assertExpectations(t)
	})
}
