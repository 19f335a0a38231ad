// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"
	"time"

	"cardvault/internal/domain"
	"cardvault/internal/repository"
	"cardvault/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, q repository.DBExecutor, limit, offset int) ([]domain.User, int64, error) {
	args := m.Called(ctx, q, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) SetUserActive(ctx context.Context, q repository.DBExecutor, userID int64, active bool) error {
	args := m.Called(ctx, q, userID, active)
	return args.Error(0)
}

// MockCardRepository is a mock implementation of repository.CardRepository.
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) CreateCard(ctx context.Context, q repository.DBExecutor, card *domain.Card) error {
	args := m.Called(ctx, q, card)
	return args.Error(0)
}

func (m *MockCardRepository) GetCardByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Card, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardRepository) GetCardByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Card, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardRepository) GetCardByNumberHash(ctx context.Context, q repository.DBExecutor, numberHash string) (*domain.Card, error) {
	args := m.Called(ctx, q, numberHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardRepository) ListCardsByOwner(ctx context.Context, q repository.DBExecutor, ownerID int64, status *domain.CardStatus, search string, limit, offset int) ([]domain.Card, int64, error) {
	args := m.Called(ctx, q, ownerID, status, search, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Card), args.Get(1).(int64), args.Error(2)
}

func (m *MockCardRepository) ListAllCards(ctx context.Context, q repository.DBExecutor, limit, offset int) ([]domain.Card, int64, error) {
	args := m.Called(ctx, q, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Card), args.Get(1).(int64), args.Error(2)
}

func (m *MockCardRepository) UpdateCardStatus(ctx context.Context, q repository.DBExecutor, cardID int64, status domain.CardStatus) error {
	args := m.Called(ctx, q, cardID, status)
	return args.Error(0)
}

func (m *MockCardRepository) AdjustCardBalance(ctx context.Context, q repository.DBExecutor, cardID int64, delta decimal.Decimal) error {
	args := m.Called(ctx, q, cardID, delta)
	return args.Error(0)
}

func (m *MockCardRepository) DeleteCard(ctx context.Context, q repository.DBExecutor, cardID int64) error {
	args := m.Called(ctx, q, cardID)
	return args.Error(0)
}

func (m *MockCardRepository) MarkExpiredCards(ctx context.Context, q repository.DBExecutor, now time.Time) (int64, error) {
	args := m.Called(ctx, q, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockBlockRequestRepository is a mock implementation of repository.BlockRequestRepository.
type MockBlockRequestRepository struct {
	mock.Mock
}

func (m *MockBlockRequestRepository) CreateBlockRequest(ctx context.Context, q repository.DBExecutor, request *domain.BlockRequest) error {
	args := m.Called(ctx, q, request)
	return args.Error(0)
}

func (m *MockBlockRequestRepository) GetBlockRequestByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.BlockRequest, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlockRequest), args.Error(1)
}

func (m *MockBlockRequestRepository) GetPendingBlockRequestForCard(ctx context.Context, q repository.DBExecutor, cardID int64) (*domain.BlockRequest, error) {
	args := m.Called(ctx, q, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlockRequest), args.Error(1)
}

func (m *MockBlockRequestRepository) UpdateBlockRequest(ctx context.Context, q repository.DBExecutor, request *domain.BlockRequest) error {
	args := m.Called(ctx, q, request)
	return args.Error(0)
}

func (m *MockBlockRequestRepository) ListBlockRequests(ctx context.Context, q repository.DBExecutor, status *domain.BlockRequestStatus, limit, offset int) ([]domain.BlockRequest, int64, error) {
	args := m.Called(ctx, q, status, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.BlockRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockBlockRequestRepository) ListBlockRequestsByRequester(ctx context.Context, q repository.DBExecutor, requesterID int64, limit, offset int) ([]domain.BlockRequest, int64, error) {
	args := m.Called(ctx, q, requesterID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.BlockRequest), args.Get(1).(int64), args.Error(2)
}

// MockTransferRepository is a mock implementation of repository.TransferRepository.
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) CreateTransfer(ctx context.Context, q repository.DBExecutor, transfer *domain.Transfer) error {
	args := m.Called(ctx, q, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) GetTransferByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transfer, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}

func (m *MockTransferRepository) GetTransferByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transfer, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}

func (m *MockTransferRepository) UpdateTransferStatus(ctx context.Context, q repository.DBExecutor, transferID int64, status domain.TransferStatus) error {
	args := m.Called(ctx, q, transferID, status)
	return args.Error(0)
}

func (m *MockTransferRepository) ListTransfersByUser(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Transfer, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Transfer), args.Get(1).(int64), args.Error(2)
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController.
// It also implicitly implements repository.DBExecutor for testing purposes
// by embedding MockDBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor // Embed MockDBExecutor to satisfy repository.DBExecutor interface
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// testTxFuncs wires a MockTxController into the injected transaction
// function slots so services run against mocks.
func testTxFuncs(txController *MockTxController) (db.BeginTxFunc, db.CommitTxFunc, db.RollbackTxFunc) {
	beginTx := func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
		return txController, nil
	}
	commitTx := func(tx db.TxController) error {
		return txController.Commit()
	}
	rollbackTx := func(tx db.TxController) {
		_ = txController.Rollback()
	}
	return beginTx, commitTx, rollbackTx
}
