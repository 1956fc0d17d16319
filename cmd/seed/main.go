package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/shubhamprakash681/truefeed/config"
	"github.com/shubhamprakash681/truefeed/internal/domain/repository"
	pginfra "github.com/shubhamprakash681/truefeed/internal/infrastructure/postgres"
	"github.com/shubhamprakash681/truefeed/pkg/helpers"
)

// seed inserts a verified demo account so the dashboard can be exercised locally
// without a working mail provider.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Hour)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	email := "demo@truefeed.dev"
	password := "password123"
	username := "demoUser"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		logger.Fatalf("failed to hash password: %v", err)
	}
	code, err := helpers.GenVerificationCode()
	if err != nil {
		logger.Fatalf("failed to generate code: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		u, err = users.UpsertUnverified(ctx, repository.PendingSignup{
			Username:               username,
			Email:                  email,
			PasswordHash:           hash,
			VerificationCode:       code,
			VerificationCodeExpiry: time.Now().Add(helpers.VerificationCodeTTL),
		})
		if err != nil {
			logger.Fatalf("failed to seed user: %v", err)
		}
	}
	if !u.IsUserVerified {
		if err := users.MarkVerified(ctx, u.ID); err != nil {
			logger.Fatalf("failed to verify seeded user: %v", err)
		}
	}
	fmt.Printf("seeded user: id=%s username=%s email=%s password=%s\n", u.ID, u.Username, email, password)
}
