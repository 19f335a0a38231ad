// internal/api/types/response_test.go
package types

import (
	"testing"
	"time"

	"cardvault/internal/crypto"
	"cardvault/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewCardResponse(t *testing.T) {
	masker := crypto.NewMasker("")

	t.Run("MasksNumberAndFormatsDate", func(t *testing.T) {
		card := &domain.Card{
			ID:             10,
			OwnerID:        7,
			LastFour:       "1111",
			HolderName:     "JOHN DOE",
			ExpirationDate: time.Date(2028, time.January, 31, 0, 0, 0, 0, time.UTC),
			Status:         domain.CardStatusActive,
			Balance:        decimal.NewFromFloat(500.00),
		}

		resp := NewCardResponse(card, masker)

		assert.Equal(t, "**** **** **** 1111", resp.MaskedCardNumber)
		assert.Equal(t, "2028-01-31", resp.ExpirationDate)
		assert.Equal(t, domain.CardStatusActive, resp.Status)
	})

	t.Run("ReportsExpiredForStaleCard", func(t *testing.T) {
		card := &domain.Card{
			ID:             11,
			LastFour:       "4242",
			ExpirationDate: time.Date(2020, time.January, 31, 0, 0, 0, 0, time.UTC),
			Status:         domain.CardStatusActive,
		}

		resp := NewCardResponse(card, masker)

		assert.Equal(t, domain.CardStatusExpired, resp.Status)
	})
}

func TestNewTransferResponse(t *testing.T) {
	masker := crypto.NewMasker("")

	t.Run("MasksBothCardNumbers", func(t *testing.T) {
		transfer := &domain.Transfer{
			ID:               33,
			FromCardID:       1,
			ToCardID:         2,
			Amount:           decimal.NewFromFloat(100.00),
			Status:           domain.TransferStatusCompleted,
			FromCardLastFour: "1111",
			ToCardLastFour:   "2222",
		}

		resp := NewTransferResponse(transfer, masker)

		assert.Equal(t, "**** **** **** 1111", resp.FromCardMasked)
		assert.Equal(t, "**** **** **** 2222", resp.ToCardMasked)
		assert.Equal(t, int64(1), resp.FromCardID)
		assert.Equal(t, int64(2), resp.ToCardID)
	})
}
