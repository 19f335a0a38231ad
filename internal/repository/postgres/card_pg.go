// internal/repository/postgres/card_pg.go
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
	"github.com/shopspring/decimal"
)

const cardColumns = `id, owner_id, number_encrypted, number_hash, last_four, holder_name,
	expiration_date, status, balance, cvv_encrypted, created_at, updated_at`

// CardRepository implements repository.CardRepository for PostgreSQL.
type CardRepository struct{}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(db *sqlx.DB) repository.CardRepository {
	return &CardRepository{}
}

// CreateCard inserts a new card using the provided DBExecutor.
func (r *CardRepository) CreateCard(ctx context.Context, q repository.DBExecutor, card *domain.Card) error {
	query := `INSERT INTO cards (owner_id, number_encrypted, number_hash, last_four, holder_name,
			expiration_date, status, balance, cvv_encrypted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		card.OwnerID, card.NumberEncrypted, card.NumberHash, card.LastFour, card.HolderName,
		card.ExpirationDate, card.Status, card.Balance, card.CVVEncrypted, card.CreatedAt, card.UpdatedAt,
	).Scan(&card.ID)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// GetCardByID retrieves a card by its ID using the provided DBExecutor.
func (r *CardRepository) GetCardByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Card, error) {
	var card domain.Card
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	err := q.GetContext(ctx, &card, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card by ID %d: %w", id, err)
	}
	return &card, nil
}

// GetCardByIDForUpdate retrieves a card and locks its row until the
// surrounding transaction commits or rolls back. Callers locking more
// than one card must lock in ascending card ID order.
func (r *CardRepository) GetCardByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Card, error) {
	var card domain.Card
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &card, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock card %d: %w", id, err)
	}
	return &card, nil
}

// GetCardByNumberHash retrieves a card by the deterministic hash of its
// number using the provided DBExecutor.
func (r *CardRepository) GetCardByNumberHash(ctx context.Context, q repository.DBExecutor, numberHash string) (*domain.Card, error) {
	var card domain.Card
	query := `SELECT ` + cardColumns + ` FROM cards WHERE number_hash = $1`
	err := q.GetContext(ctx, &card, query, numberHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card by number hash: %w", err)
	}
	return &card, nil
}

// ListCardsByOwner retrieves an owner's cards with optional stored
// status filter and search over holder name and last four digits.
func (r *CardRepository) ListCardsByOwner(ctx context.Context, q repository.DBExecutor, ownerID int64, status *domain.CardStatus, search string, limit, offset int) ([]domain.Card, int64, error) {
	cards := []domain.Card{}
	where := `owner_id = $1`
	args := []interface{}{ownerID}
	if status != nil {
		args = append(args, *status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (holder_name ILIKE $%d OR last_four LIKE $%d)`, len(args), len(args))
	}

	countQuery := `SELECT COUNT(*) FROM cards WHERE ` + where
	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count cards for owner %d: %w", ownerID, err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT `+cardColumns+` FROM cards WHERE `+where+
		` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	if err := q.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch cards for owner %d: %w", ownerID, err)
	}

	return cards, totalCount, nil
}

// ListAllCards retrieves all cards using the provided DBExecutor.
func (r *CardRepository) ListAllCards(ctx context.Context, q repository.DBExecutor, limit, offset int) ([]domain.Card, int64, error) {
	cards := []domain.Card{}
	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM cards`); err != nil {
		return nil, 0, fmt.Errorf("failed to count cards: %w", err)
	}
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := q.SelectContext(ctx, &cards, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch cards: %w", err)
	}
	return cards, totalCount, nil
}

// UpdateCardStatus sets the stored status of a card using the provided
// DBExecutor.
func (r *CardRepository) UpdateCardStatus(ctx context.Context, q repository.DBExecutor, cardID int64, status domain.CardStatus) error {
	query := `UPDATE cards SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, status, time.Now().UTC(), cardID)
	if err != nil {
		return fmt.Errorf("failed to update status for card %d: %w", cardID, err)
	}
	return requireRowsAffected(result, cardID)
}

// AdjustCardBalance applies a signed delta to a card's balance using
// the provided DBExecutor.
func (r *CardRepository) AdjustCardBalance(ctx context.Context, q repository.DBExecutor, cardID int64, delta decimal.Decimal) error {
	query := `UPDATE cards SET balance = balance + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), cardID)
	if err != nil {
		return fmt.Errorf("failed to adjust balance for card %d: %w", cardID, err)
	}
	return requireRowsAffected(result, cardID)
}

// DeleteCard removes a card permanently using the provided DBExecutor.
func (r *CardRepository) DeleteCard(ctx context.Context, q repository.DBExecutor, cardID int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, cardID)
	if err != nil {
		return fmt.Errorf("failed to delete card %d: %w", cardID, err)
	}
	return requireRowsAffected(result, cardID)
}

// MarkExpiredCards sets stored status EXPIRED on every card past its
// expiration date in a single statement. Idempotent: rerunning it
// matches nothing new.
func (r *CardRepository) MarkExpiredCards(ctx context.Context, q repository.DBExecutor, now time.Time) (int64, error) {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	query := `UPDATE cards SET status = $1, updated_at = $2
		WHERE expiration_date < $3 AND status != $1`
	result, err := q.ExecContext(ctx, query, domain.CardStatusExpired, now.UTC(), today)
	if err != nil {
		return 0, fmt.Errorf("failed to mark expired cards: %w", err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected after marking expired cards: %w", err)
	}
	return updated, nil
}

func requireRowsAffected(result sql.Result, cardID int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for card %d: %w", cardID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
