package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"crowdfund-ledger/internal/config"
	"crowdfund-ledger/internal/database"
	"crowdfund-ledger/internal/logging"
	"crowdfund-ledger/internal/models"
	"crowdfund-ledger/internal/repositories"
	"crowdfund-ledger/internal/utils"
)

func main() {
	var (
		email     = flag.String("email", "admin@example.com", "Admin email")
		firstName = flag.String("first-name", "Admin", "Admin first name")
		lastName  = flag.String("last-name", "User", "Admin last name")
	)
	flag.Parse()
	*email = strings.ToLower(strings.TrimSpace(*email))

	// The password comes from the environment so it never lands in shell history
	password := os.Getenv("ADMIN_PASSWORD")
	if len(password) < 8 {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD must be set to at least 8 characters")
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Bootstrap().Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := logging.New(cfg.Server.Env, cfg.Log.Level)
	ctx := context.Background()

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

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to hash password")
	}

	userRepo := repositories.NewUserRepository(db.DB)

	// Check if the account already exists
	existing, err := userRepo.GetByEmail(ctx, *email)
	switch {
	case err == nil:
		if err := userRepo.UpdatePassword(ctx, existing.ID, passwordHash); err != nil {
			logger.Fatal().Err(err).Msg("failed to update admin password")
		}
		if err := userRepo.SetRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			logger.Fatal().Err(err).Msg("failed to set admin role")
		}
		fmt.Printf("Admin user %s (ID %d) updated\n", *email, existing.ID)
		return
	case !errors.Is(err, models.ErrNotFound):
		logger.Fatal().Err(err).Msg("failed to look up admin")
	}

	user, err := userRepo.Create(ctx, &models.User{
		Email:        *email,
		PasswordHash: passwordHash,
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create admin user")
	}

	fmt.Printf("Admin user created successfully!\n")
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("User ID: %d\n", user.ID)
}
