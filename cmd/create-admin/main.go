package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/database"
	"github.com/myadmit/admit-backend/internal/logger"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
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
	profileRepo := repository.NewProfileRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	fmt.Print("Enter First Name: ")
	firstName, _ := reader.ReadString('\n')
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		fmt.Println("Error: First name is required")
		return
	}

	fmt.Print("Enter Last Name: ")
	lastName, _ := reader.ReadString('\n')
	lastName = strings.TrimSpace(lastName)

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println()
	if len(password) < 5 {
		fmt.Println("Error: Password must be at least 5 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}
	hash := string(hashedPassword)

	user := &model.User{
		Name:            strings.TrimSpace(firstName + " " + lastName),
		Email:           email,
		PasswordHash:    &hash,
		IsAdmin:         true,
		IsEmailVerified: true,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	profile := model.NewProfile(user.ID, user.Email)
	profile.PersonalInfo["firstName"] = firstName
	profile.PersonalInfo["lastName"] = lastName
	if err := profileRepo.Create(ctx, profile); err != nil {
		log.Warn().Err(err).Msg("Admin created without a profile")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %s\n", user.Name, user.Email, user.ID)
}
