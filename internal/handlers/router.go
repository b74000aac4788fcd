package handlers

import (
	"context"
	"net/http"
	"time"

	"crowdfund-ledger/internal/middleware"
	"crowdfund-ledger/internal/models"
	"crowdfund-ledger/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Pinger reports database health
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterConfig carries everything the API router wires together
type RouterConfig struct {
	Logger   zerolog.Logger
	Tokens   TokenService
	Ledger   services.LedgerServiceInterface
	Accounts services.AccountServiceInterface
	Queries  services.QueryServiceInterface
	DB       Pinger

	// MutationLimiter caps mutating requests per principal; nil disables it
	MutationLimiter *middleware.RateLimiter
	// TokenLimiter caps registration and token requests per client address
	TokenLimiter *middleware.RateLimiter
	CORSOrigins  []string
}

// NewRouter builds the JSON API
func NewRouter(cfg RouterConfig) chi.Router {
	authHandler := NewAuthHandler(cfg.Accounts, cfg.Tokens)
	ledgerHandler := NewLedgerHandler(cfg.Ledger, cfg.Queries)
	adminHandler := NewAdminHandler(cfg.Ledger, cfg.Queries)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins...)))
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", healthHandler(cfg.DB))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.TokenLimiter != nil {
				r.Use(middleware.RateLimit(cfg.TokenLimiter))
			}
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/token", authHandler.Token)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.Tokens))
			if cfg.MutationLimiter != nil {
				r.Use(middleware.RateLimit(cfg.MutationLimiter))
			}

			r.Get("/me", ledgerHandler.Me)

			r.Get("/campaigns", ledgerHandler.ListCampaigns)
			r.Get("/campaigns/{id}", ledgerHandler.GetCampaign)
			r.Post("/campaigns/{id}/donations", ledgerHandler.Donate)
			r.Get("/donations", ledgerHandler.ListDonations)

			r.Get("/topups", ledgerHandler.ListTopUps)
			r.Post("/topups", ledgerHandler.RequestTopUp)
			r.Get("/withdrawals", ledgerHandler.ListWithdrawals)

			r.Route("/fundraiser/campaigns", func(r chi.Router) {
				r.Get("/", ledgerHandler.ListFundraiserCampaigns)
				r.Post("/", ledgerHandler.CreateCampaign)
				r.Post("/{id}/withdrawals", ledgerHandler.RequestWithdrawal)
				r.Post("/{id}/stop", ledgerHandler.StopCampaign)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/topups", ledgerHandler.ListTopUps)
				r.Put("/topups", adminHandler.VerifyRecord(models.RecordTopUp))
				r.Get("/withdrawals", ledgerHandler.ListWithdrawals)
				r.Put("/withdrawals", adminHandler.VerifyRecord(models.RecordWithdrawal))
				r.Get("/proposals", adminHandler.ListProposals)
				r.Put("/proposals", adminHandler.VerifyRecord(models.RecordCampaign))
				r.Get("/fundraisers", adminHandler.ListPendingFundraisers)
				r.Put("/fundraisers", adminHandler.VerifyFundraiser)
				r.Get("/audit", adminHandler.ListAuditLog)
			})
		})
	})

	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
