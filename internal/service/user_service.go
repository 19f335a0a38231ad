// internal/service/user_service.go
package service

import (
	"context"
	"fmt"

	"cardvault/internal/domain"
	"cardvault/internal/repository"
	"cardvault/internal/util"
)

// UserService is the admin surface for managing user accounts.
type UserService interface {
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int64, error)
	BlockUser(ctx context.Context, userID int64) error
	ActivateUser(ctx context.Context, userID int64) error
}

type userService struct {
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(dbExecutor repository.DBExecutor, userRepo repository.UserRepository) UserService {
	return &userService{dbExecutor: dbExecutor, userRepo: userRepo}
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	users, totalCount, err := s.userRepo.ListUsers(ctx, s.dbExecutor, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, totalCount, nil
}

func (s *userService) BlockUser(ctx context.Context, userID int64) error {
	return s.setActive(ctx, userID, false)
}

func (s *userService) ActivateUser(ctx context.Context, userID int64) error {
	return s.setActive(ctx, userID, true)
}

func (s *userService) setActive(ctx context.Context, userID int64, active bool) error {
	if err := s.userRepo.SetUserActive(ctx, s.dbExecutor, userID, active); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return util.ErrUserNotFound
		}
		return fmt.Errorf("set user active: %w", err)
	}
	return nil
}
