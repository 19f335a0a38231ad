// internal/util/errors.go
package util

import "errors"

// Not-found errors.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrCardNotFound         = errors.New("card not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrTransferNotFound     = errors.New("transfer not found")
	ErrBlockRequestNotFound = errors.New("block request not found")
)

// Validation errors.
var (
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAmountTooLarge      = errors.New("maximum transfer amount exceeded")
	ErrInvalidExpiration   = errors.New("expiration date must be at least 1 month in the future")
	ErrDuplicateCardNumber = errors.New("card with this number already exists")
	ErrBalanceExceedsMax   = errors.New("initial balance exceeds maximum allowed")
	ErrSameCard            = errors.New("cannot transfer to the same card")
)

// State-conflict errors.
var (
	ErrCardAlreadyActive         = errors.New("card is already active")
	ErrCardAlreadyBlocked        = errors.New("card is already blocked")
	ErrCardExpired               = errors.New("card is expired")
	ErrCardNotActive             = errors.New("card is not active")
	ErrRequestNotPending         = errors.New("block request is not pending")
	ErrPendingRequestExists      = errors.New("there is already a pending block request for this card")
	ErrNotCancellable            = errors.New("only completed transfers can be cancelled")
	ErrCancellationWindowExpired = errors.New("transfer cannot be cancelled after the cancellation window")
	ErrNonZeroBalance            = errors.New("cannot delete card with positive balance")
	ErrPendingBlockRequestExists = errors.New("cannot delete card with pending block request")
)

// Access-denied errors.
var (
	ErrAccessDenied  = errors.New("access denied")
	ErrCardNotOwned  = errors.New("card does not belong to user")
	ErrNotAdmin      = errors.New("only admin can process block requests")
	ErrNotRequester  = errors.New("only the requester can cancel the request")
	ErrNotInitiator  = errors.New("only transfer initiator can cancel transfer")
	ErrUserNotActive = errors.New("user account is deactivated")
)

// Insufficient-funds errors.
var (
	ErrInsufficientFunds          = errors.New("insufficient funds")
	ErrInsufficientFundsToReverse = errors.New("insufficient funds on destination card to cancel transfer")
)

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already taken")
)

// IsError reports whether err matches target via errors.Is. Kept as a
// helper so handlers read as a plain switch over sentinels.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
