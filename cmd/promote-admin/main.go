package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/database"
	"github.com/myadmit/admit-backend/internal/logger"
	"github.com/myadmit/admit-backend/internal/repository"
)

func main() {
	var (
		email  string
		revoke bool
	)
	flag.StringVar(&email, "email", "", "Email of the user to promote")
	flag.BoolVar(&revoke, "revoke", false, "Remove admin rights instead of granting them")
	flag.Parse()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		fmt.Println("Usage: promote-admin -email user@example.com [-revoke]")
		return
	}

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	if err := userRepo.SetAdmin(ctx, email, !revoke); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fmt.Printf("Error: no user with email %s\n", email)
			return
		}
		log.Fatal().Err(err).Msg("Failed to update admin flag")
	}

	if revoke {
		fmt.Printf("Success! %s is no longer an admin. Existing tokens keep their claims until they expire.\n", email)
		return
	}
	fmt.Printf("Success! %s is now an admin. The user must sign in again to pick up the new role.\n", email)
}
