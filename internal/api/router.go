// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"cardvault/internal/api/handler"
	"cardvault/internal/api/middleware"
)

// RouterDeps bundles the handlers the router wires up.
type RouterDeps struct {
	Auth          *handler.AuthHandler
	Cards         *handler.CardHandler
	BlockRequests *handler.BlockRequestHandler
	Transfers     *handler.TransferHandler
	Users         *handler.UserHandler
	JWTSecret     string
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(deps RouterDeps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Public auth endpoints
	r.Post("/auth/register", deps.Auth.Register)
	r.Post("/auth/login", deps.Auth.Login)

	// Everything below requires a valid token
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.JWTSecret))

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", deps.Cards.ListMyCards)
			r.Get("/{cardID}", deps.Cards.GetCard)
			r.Get("/{cardID}/balance", deps.Cards.GetCardBalance)
		})

		r.Route("/block-requests", func(r chi.Router) {
			r.Post("/", deps.BlockRequests.Create)
			r.Get("/", deps.BlockRequests.ListMine)
			r.Post("/{requestID}/cancel", deps.BlockRequests.Cancel)
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", deps.Transfers.Transfer)
			r.Get("/", deps.Transfers.ListMine)
			r.Get("/{transferID}", deps.Transfers.Get)
			r.Post("/{transferID}/cancel", deps.Transfers.Cancel)
		})

		// Admin-only surface
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Route("/cards", func(r chi.Router) {
				r.Post("/", deps.Cards.IssueCard)
				r.Get("/", deps.Cards.ListAllCards)
				r.Post("/{cardID}/activate", deps.Cards.ActivateCard)
				r.Post("/{cardID}/block", deps.Cards.BlockCard)
				r.Delete("/{cardID}", deps.Cards.DeleteCard)
			})

			r.Route("/block-requests", func(r chi.Router) {
				r.Get("/", deps.BlockRequests.ListAll)
				r.Post("/{requestID}/approve", deps.BlockRequests.Approve)
				r.Post("/{requestID}/reject", deps.BlockRequests.Reject)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", deps.Users.List)
				r.Post("/{userID}/block", deps.Users.Block)
				r.Post("/{userID}/activate", deps.Users.Activate)
			})
		})
	})

	return r
}
