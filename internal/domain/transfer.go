// internal/domain/transfer.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the state of a fund movement between two cards.
type TransferStatus string

const (
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// Transfer records an atomic fund movement between two cards of the
// same owner. It is created COMPLETED together with the two balance
// mutations and may transition once to CANCELLED within the
// cancellation window.
type Transfer struct {
	ID           int64           `db:"id" json:"id"`
	FromCardID   int64           `db:"from_card_id" json:"from_card_id"`
	ToCardID     int64           `db:"to_card_id" json:"to_card_id"`
	Amount       decimal.Decimal `db:"amount" json:"amount"` // NUMERIC(15, 2) in DB
	Status       TransferStatus  `db:"status" json:"status"`
	TransferDate time.Time       `db:"transfer_date" json:"transfer_date"`
	Description  *string         `db:"description" json:"description"`

	// Last four digits of both cards, carried for masked display only.
	FromCardLastFour string `db:"from_card_last_four" json:"-"`
	ToCardLastFour   string `db:"to_card_last_four" json:"-"`
}

// NewTransfer creates a new Transfer instance in COMPLETED status.
func NewTransfer(fromCardID, toCardID int64, amount decimal.Decimal, description *string) *Transfer {
	return &Transfer{
		FromCardID:   fromCardID,
		ToCardID:     toCardID,
		Amount:       amount,
		Status:       TransferStatusCompleted,
		TransferDate: time.Now().UTC(),
		Description:  description,
	}
}
