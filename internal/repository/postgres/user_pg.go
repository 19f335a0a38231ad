// internal/repository/postgres/user_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cardvault/internal/domain"
	"cardvault/internal/repository"
	"cardvault/internal/util"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, full_name, password_hash, roles, active, created_at, updated_at`

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user using the provided DBExecutor.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `INSERT INTO users (username, email, full_name, password_hash, roles, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, user.PasswordHash,
		user.Roles, user.Active, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID using the provided
// DBExecutor.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := q.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by their username using the
// provided DBExecutor.
func (r *UserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	err := q.GetContext(ctx, &user, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username '%s': %w", username, err)
	}
	return &user, nil
}

// ListUsers retrieves users using the provided DBExecutor.
func (r *UserRepository) ListUsers(ctx context.Context, q repository.DBExecutor, limit, offset int) ([]domain.User, int64, error) {
	users := []domain.User{}
	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`
	if err := q.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, totalCount, nil
}

// SetUserActive flips the active flag on a user using the provided
// DBExecutor.
func (r *UserRepository) SetUserActive(ctx context.Context, q repository.DBExecutor, userID int64, active bool) error {
	result, err := q.ExecContext(ctx,
		`UPDATE users SET active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to set active=%t for user %d: %w", active, userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating user %d: %w", userID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
