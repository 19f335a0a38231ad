// internal/service/auth_service.go
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cardvault/internal/domain"
	"cardvault/internal/repository"
	"cardvault/internal/util"
	"cardvault/pkg/db"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims carried by issued access tokens.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthService registers users and exchanges credentials for JWTs.
type AuthService interface {
	Register(ctx context.Context, username, email, fullName, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type authService struct {
	txRunner
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	jwtSecret  string
	tokenTTL   time.Duration
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	jwtSecret string,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) AuthService {
	return &authService{
		txRunner:   txRunner{dbBeginner: dbBeginner, beginTx: beginTx, commitTx: commitTx, rollbackTx: rollbackTx},
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		jwtSecret:  jwtSecret,
		tokenTTL:   24 * time.Hour,
	}
}

// Register creates a new user with a bcrypt password hash and the USER
// role.
func (s *authService) Register(ctx context.Context, username, email, fullName, password string) (*domain.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: failed to hash password: %w", err)
	}

	txController, txExecutor, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	defer s.rollbackTx(txController)

	if _, err := s.userRepo.GetUserByUsername(ctx, txExecutor, username); err == nil {
		return nil, util.ErrDuplicateUsername
	} else if !util.IsError(err, util.ErrNotFound) {
		return nil, fmt.Errorf("register: failed to check existing user: %w", err)
	}

	user := domain.NewUser(username, email, fullName, string(hashedPassword))
	if err := s.userRepo.CreateUser(ctx, txExecutor, user); err != nil {
		return nil, fmt.Errorf("register: failed to create user: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("register: failed to commit transaction: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns a signed JWT whose subject is
// the user ID and whose roles claim drives admin checks downstream.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, s.dbExecutor, username)
	if err != nil {
		return "", util.ErrInvalidCredentials
	}
	if !user.Active {
		return "", util.ErrUserNotActive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Roles: user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("login: failed to sign token: %w", err)
	}

	return tokenString, nil
}
