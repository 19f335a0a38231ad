// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	router "cardvault/internal/api"
	"cardvault/internal/api/handler"
	"cardvault/internal/config"
	"cardvault/internal/crypto"
	"cardvault/internal/repository"
	"cardvault/internal/repository/postgres"
	"cardvault/internal/scheduler"
	"cardvault/internal/service"
	"cardvault/internal/util"
	"cardvault/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository         repository.UserRepository
	CardRepository         repository.CardRepository
	BlockRequestRepository repository.BlockRequestRepository
	TransferRepository     repository.TransferRepository

	// Services
	AuthService         service.AuthService
	CardService         service.CardService
	BlockRequestService service.BlockRequestService
	TransferService     service.TransferService
	UserService         service.UserService

	// Background jobs
	Sweeper *scheduler.Sweeper

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Key material
	codec, err := crypto.NewCodec(app.Config.EncryptionKey, app.Config.HMACSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize card codec: %w", err)
	}
	masker := crypto.NewMasker(app.Config.MaskPattern)

	// 5. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.CardRepository = postgres.NewCardRepository(app.DB)
	app.BlockRequestRepository = postgres.NewBlockRequestRepository(app.DB)
	app.TransferRepository = postgres.NewTransferRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.AuthService = service.NewAuthService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.UserRepository,
		app.Config.JWTSecret,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.CardService = service.NewCardService(
		app.DB,
		app.DB,
		app.CardRepository,
		app.UserRepository,
		app.BlockRequestRepository,
		codec,
		app.Config.MaxInitialBalance,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.BlockRequestService = service.NewBlockRequestService(
		app.DB,
		app.DB,
		app.BlockRequestRepository,
		app.CardRepository,
		app.UserRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.TransferService = service.NewTransferService(
		app.DB,
		app.DB,
		app.TransferRepository,
		app.CardRepository,
		codec,
		app.Config.MaxTransferAmount,
		time.Duration(app.Config.CancelWindowHours)*time.Hour,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.UserService = service.NewUserService(app.DB, app.UserRepository)
	app.Logger.Info("Services initialized.")

	// 7. Background expiration sweep
	app.Sweeper = scheduler.NewSweeper(app.CardService, app.Logger, app.Config.SweepSchedule)
	if err := app.Sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start expiration sweeper: %w", err)
	}

	// 8. Initialize HTTP Handlers and Router
	app.HTTPHandler = router.NewRouter(router.RouterDeps{
		Auth:          handler.NewAuthHandler(app.AuthService, app.Logger),
		Cards:         handler.NewCardHandler(app.CardService, masker, app.Logger),
		BlockRequests: handler.NewBlockRequestHandler(app.BlockRequestService, app.Logger),
		Transfers:     handler.NewTransferHandler(app.TransferService, masker, app.Logger),
		Users:         handler.NewUserHandler(app.UserService, app.Logger),
		JWTSecret:     app.Config.JWTSecret,
	}, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Sweeper != nil {
		app.Sweeper.Stop()
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
