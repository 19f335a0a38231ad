// internal/domain/card.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardStatus is the stored lifecycle status of a card.
type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
	CardStatusExpired CardStatus = "EXPIRED"
)

// Card represents a bank card. The plaintext number and CVV are never
// stored: only the AES ciphertext, the deterministic lookup hash and the
// last four digits for display.
type Card struct {
	ID              int64           `db:"id" json:"id"`
	OwnerID         int64           `db:"owner_id" json:"owner_id"`
	NumberEncrypted string          `db:"number_encrypted" json:"-"`
	NumberHash      string          `db:"number_hash" json:"-"`
	LastFour        string          `db:"last_four" json:"last_four"`
	HolderName      string          `db:"holder_name" json:"holder_name"`
	ExpirationDate  time.Time       `db:"expiration_date" json:"expiration_date"` // date only, UTC midnight
	Status          CardStatus      `db:"status" json:"status"`
	Balance         decimal.Decimal `db:"balance" json:"balance"` // NUMERIC(15, 2) in DB
	CVVEncrypted    string          `db:"cvv_encrypted" json:"-"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// NewCard creates a new Card instance in ACTIVE status.
func NewCard(ownerID int64, numberEncrypted, numberHash, lastFour, holderName string, expirationDate time.Time, cvvEncrypted string, balance decimal.Decimal) *Card {
	now := time.Now().UTC()
	return &Card{
		OwnerID:         ownerID,
		NumberEncrypted: numberEncrypted,
		NumberHash:      numberHash,
		LastFour:        lastFour,
		HolderName:      holderName,
		ExpirationDate:  expirationDate,
		Status:          CardStatusActive,
		Balance:         balance,
		CVVEncrypted:    cvvEncrypted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsExpired reports whether the card is past its expiration date.
// Comparison is at date granularity: a card expiring today is still
// usable until the end of the day.
func (c *Card) IsExpired(now time.Time) bool {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return today.After(c.ExpirationDate)
}

// ActualStatus overlays expiration onto the stored status. Every read
// path and precondition check goes through this; the stored field itself
// is only rewritten by the expiration sweep.
func (c *Card) ActualStatus(now time.Time) CardStatus {
	if c.IsExpired(now) {
		return CardStatusExpired
	}
	return c.Status
}

// IsActive reports whether the card can take part in operations:
// stored status ACTIVE and not past expiration.
func (c *Card) IsActive(now time.Time) bool {
	return c.Status == CardStatusActive && !c.IsExpired(now)
}
