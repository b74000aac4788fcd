package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"crowdfund-ledger/internal/config"
	"crowdfund-ledger/internal/database"
	"crowdfund-ledger/internal/logging"
)

func main() {
	var (
		statusFlag = flag.Bool("status", false, "Show migration status")
		upFlag     = flag.Bool("up", false, "Run pending migrations")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Bootstrap().Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.New(cfg.Server.Env, cfg.Log.Level)
	ctx := context.Background()

	// Connect to database
	dbConfig := database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}

	db, err := database.NewConnection(ctx, dbConfig, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	switch {
	case *statusFlag:
		states, err := db.GetMigrationStatus(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to get migration status")
		}
		fmt.Println("Migration Status:")
		for _, s := range states {
			status := "pending"
			if s.Applied {
				status = "applied"
			}
			fmt.Printf("  %03d_%s: %s\n", s.Version, s.Name, status)
		}
	case *upFlag:
		if err := db.RunMigrations(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
		fmt.Println("All migrations completed successfully!")
	default:
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/migrate -status   # Show migration status")
		fmt.Println("  go run ./cmd/migrate -up       # Run pending migrations")
		os.Exit(1)
	}
}
