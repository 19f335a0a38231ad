// internal/service/auth_service_test.go
package service

import (
	"context"
	"testing"

	"cardvault/internal/domain"
	"cardvault/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-jwt-secret"

type authServiceMocks struct {
	userRepo     *MockUserRepository
	dbBeginner   *MockDBBeginner
	dbExecutor   *MockDBExecutor
	txController *MockTxController
}

func newAuthServiceWithMocks(t *testing.T) (AuthService, authServiceMocks) {
	t.Helper()

	m := authServiceMocks{
		userRepo:     new(MockUserRepository),
		dbBeginner:   new(MockDBBeginner),
		dbExecutor:   new(MockDBExecutor),
		txController: new(MockTxController),
	}

	beginTx, commitTx, rollbackTx := testTxFuncs(m.txController)
	service := NewAuthService(
		m.dbBeginner,
		m.dbExecutor,
		m.userRepo,
		testJWTSecret,
		beginTx,
		commitTx,
		rollbackTx,
	)
	return service, m
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		service, m := newAuthServiceWithMocks(t)

		m.userRepo.On("GetUserByUsername", ctx, mock.Anything, "alice").Return(nil, util.ErrNotFound).Once()
		m.userRepo.On("CreateUser", ctx, mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Username == "alice" && u.Active && u.PasswordHash != "secret"
		})).Return(nil).Once()
		m.txController.On("Commit").Return(nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe()

		user, err := service.Register(ctx, "alice", "alice@example.com", "Alice Smith", "secret")

		assert.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "alice", user.Username)
		assert.Contains(t, []string(user.Roles), domain.RoleUser)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")))
		mock.AssertExpectationsForObjects(t, m.userRepo, m.txController)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		ctx := context.Background()
		service, m := newAuthServiceWithMocks(t)

		m.userRepo.On("GetUserByUsername", ctx, mock.Anything, "alice").Return(&domain.User{ID: 1, Username: "alice"}, nil).Once()
		m.txController.On("Rollback").Return(nil).Once()

		user, err := service.Register(ctx, "alice", "alice@example.com", "Alice Smith", "secret")

		assert.ErrorIs(t, err, util.ErrDuplicateUsername)
		assert.Nil(t, user)
		m.userRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
		m.txController.AssertNotCalled(t, "Commit")
		mock.AssertExpectationsForObjects(t, m.userRepo, m.txController)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	storedUser := func() *domain.User {
		return &domain.User{
			ID:           7,
			Username:     "alice",
			PasswordHash: string(hash),
			Roles:        []string{domain.RoleUser},
			Active:       true,
		}
	}

	t.Run("IssuesTokenWithSubjectAndRoles", func(t *testing.T) {
		ctx := context.Background()
		service, m := newAuthServiceWithMocks(t)

		m.userRepo.On("GetUserByUsername", ctx, m.dbExecutor, "alice").Return(storedUser(), nil).Once()

		tokenString, err := service.Login(ctx, "alice", "secret")

		require.NoError(t, err)
		require.NotEmpty(t, tokenString)

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(testJWTSecret), nil
		})
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, "7", claims.Subject)
		assert.Contains(t, claims.Roles, domain.RoleUser)
		mock.AssertExpectationsForObjects(t, m.userRepo)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		ctx := context.Background()
		service, m := newAuthServiceWithMocks(t)

		m.userRepo.On("GetUserByUsername", ctx, m.dbExecutor, "alice").Return(storedUser(), nil).Once()

		tokenString, err := service.Login(ctx, "alice", "wrong")

		assert.ErrorIs(t, err, util.ErrInvalidCredentials)
		assert.Empty(t, tokenString)
	})

	t.Run("UnknownUsername", func(t *testing.T) {
		ctx := context.Background()
		service, m := newAuthServiceWithMocks(t)

		m.userRepo.On("GetUserByUsername", ctx, m.dbExecutor, "bob").Return(nil, util.ErrNotFound).Once()

		tokenString, err := service.Login(ctx, "bob", "secret")

		assert.ErrorIs(t, err, util.ErrInvalidCredentials)
		assert.Empty(t, tokenString)
	})

	t.Run("BlockedUser", func(t *testing.T) {
		ctx := context.Background()
		service, m := newAuthServiceWithMocks(t)

		user := storedUser()
		user.Active = false
		m.userRepo.On("GetUserByUsername", ctx, m.dbExecutor, "alice").Return(user, nil).Once()

		tokenString, err := service.Login(ctx, "alice", "secret")

		assert.ErrorIs(t, err, util.ErrUserNotActive)
		assert.Empty(t, tokenString)
	})
}
