package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crowdfund-ledger/internal/auth"
	"crowdfund-ledger/internal/config"
	"crowdfund-ledger/internal/database"
	"crowdfund-ledger/internal/handlers"
	"crowdfund-ledger/internal/logging"
	"crowdfund-ledger/internal/middleware"
	"crowdfund-ledger/internal/services"
	"crowdfund-ledger/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Bootstrap().Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.Server.Env, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := database.NewConnection(ctx, database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	logger.Info().Str("database", cfg.Database.DBName).Msg("database connection established")

	if err := db.RunMigrations(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Initialize services
	txRunner := services.NewSQLTxRunner(database.NewTxRunner(db.DB, cfg.Ledger.TxMaxAttempts, cfg.Ledger.TxRetryBase, logger))
	hasher := utils.DefaultPasswordHasher()
	repos := services.NewRepositories(db.DB)

	ledgerService := services.NewLedgerService(txRunner, hasher, cfg.Ledger.MinTopUpAmount, logger)
	accountService := services.NewAccountService(txRunner, repos.Users, hasher, logger)
	queryService := services.NewQueryService(repos)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	routerCfg := handlers.RouterConfig{
		Logger:      logger,
		Tokens:      tokens,
		Ledger:      ledgerService,
		Accounts:    accountService,
		Queries:     queryService,
		DB:          db,
		CORSOrigins: cfg.Server.CORSOrigins,
	}
	if cfg.Ledger.MutationsPerMinute > 0 {
		routerCfg.MutationLimiter = middleware.NewRateLimiter(cfg.Ledger.MutationsPerMinute, time.Minute)
		defer routerCfg.MutationLimiter.Stop()
	}
	if cfg.Auth.TokenRequestsPerMinute > 0 {
		routerCfg.TokenLimiter = middleware.NewRateLimiter(cfg.Auth.TokenRequestsPerMinute, time.Minute)
		defer routerCfg.TokenLimiter.Stop()
	}

	server := newHTTPServer(cfg, handlers.NewRouter(routerCfg))

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Str("env", cfg.Server.Env).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

// newHTTPServer builds the listener config. Request contexts derive from
// context.Background so a shutdown signal lets in-flight ledger transactions
// finish while Shutdown drains them.
func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
