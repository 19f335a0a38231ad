// internal/repository/card_repo.go
package repository

import (
	"context"
	"time"

	"cardvault/internal/domain"

	"github.com/shopspring/decimal"
)

// CardRepository defines the interface for card data operations.
type CardRepository interface {
	// CreateCard inserts a new card and fills in its generated ID.
	CreateCard(ctx context.Context, q DBExecutor, card *domain.Card) error
	// GetCardByID retrieves a card by its ID.
	GetCardByID(ctx context.Context, q DBExecutor, id int64) (*domain.Card, error)
	// GetCardByIDForUpdate retrieves a card and takes a row-level lock
	// on it for the duration of the surrounding transaction.
	GetCardByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Card, error)
	// GetCardByNumberHash retrieves a card by the deterministic hash of
	// its number.
	GetCardByNumberHash(ctx context.Context, q DBExecutor, numberHash string) (*domain.Card, error)
	// ListCardsByOwner retrieves an owner's cards with optional stored
	// status filter and holder-name/last-four search, newest first.
	ListCardsByOwner(ctx context.Context, q DBExecutor, ownerID int64, status *domain.CardStatus, search string, limit, offset int) ([]domain.Card, int64, error)
	// ListAllCards retrieves all cards, newest first.
	ListAllCards(ctx context.Context, q DBExecutor, limit, offset int) ([]domain.Card, int64, error)
	// UpdateCardStatus sets the stored status of a card.
	UpdateCardStatus(ctx context.Context, q DBExecutor, cardID int64, status domain.CardStatus) error
	// AdjustCardBalance applies a signed delta to a card's balance.
	AdjustCardBalance(ctx context.Context, q DBExecutor, cardID int64, delta decimal.Decimal) error
	// DeleteCard removes a card permanently.
	DeleteCard(ctx context.Context, q DBExecutor, cardID int64) error
	// MarkExpiredCards sets stored status EXPIRED on every card whose
	// expiration date is before now and whose stored status is not
	// already EXPIRED. Returns the number of cards updated.
	MarkExpiredCards(ctx context.Context, q DBExecutor, now time.Time) (int64, error)
}
