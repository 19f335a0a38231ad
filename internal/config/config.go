// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"cardvault/internal/crypto"
	"cardvault/pkg/db"

	"github.com/shopspring/decimal"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config

	// Key material. EncryptionKey protects stored card numbers and
	// CVVs; HMACSecret keys the deterministic card-number hash;
	// JWTSecret signs access tokens.
	EncryptionKey string
	HMACSecret    string
	JWTSecret     string

	// Business ceilings and windows.
	MaxInitialBalance decimal.Decimal
	MaxTransferAmount decimal.Decimal
	CancelWindowHours int

	// Presentation and scheduling.
	MaskPattern   string
	SweepSchedule string // cron expression for the expiration sweep
}

// LoadConfig loads configuration from environment variables. It returns
// an AppConfig instance or an error if any required variable is missing
// or invalid.
func LoadConfig() (*AppConfig, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxInitialBalance, err := decimal.NewFromString(getEnv("MAX_INITIAL_BALANCE", "1000000.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_INITIAL_BALANCE: %w", err)
	}
	maxTransferAmount, err := decimal.NewFromString(getEnv("MAX_TRANSFER_AMOUNT", "1000000.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_TRANSFER_AMOUNT: %w", err)
	}
	cancelWindowHours, err := strconv.Atoi(getEnv("TRANSFER_CANCEL_WINDOW_HOURS", "24"))
	if err != nil || cancelWindowHours <= 0 {
		return nil, fmt.Errorf("invalid TRANSFER_CANCEL_WINDOW_HOURS: %q", getEnv("TRANSFER_CANCEL_WINDOW_HOURS", "24"))
	}

	cfg := &AppConfig{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "cardvault"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		EncryptionKey:     os.Getenv("ENCRYPTION_KEY"),
		HMACSecret:        os.Getenv("HMAC_SECRET"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		MaxInitialBalance: maxInitialBalance,
		MaxTransferAmount: maxTransferAmount,
		CancelWindowHours: cancelWindowHours,
		MaskPattern:       getEnv("CARD_MASK_PATTERN", crypto.DefaultMaskPattern),
		SweepSchedule:     getEnv("SWEEP_SCHEDULE", "0 0 * * *"), // daily at midnight
	}

	if cfg.EncryptionKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if cfg.HMACSecret == "" {
		return nil, fmt.Errorf("HMAC_SECRET is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
