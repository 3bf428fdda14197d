package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/myadmit/admit-backend/internal/billing"
	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/database"
	"github.com/myadmit/admit-backend/internal/handler"
	"github.com/myadmit/admit-backend/internal/llm"
	"github.com/myadmit/admit-backend/internal/logger"
	"github.com/myadmit/admit-backend/internal/mailer"
	"github.com/myadmit/admit-backend/internal/repository"
	"github.com/myadmit/admit-backend/internal/router"
	"github.com/myadmit/admit-backend/internal/service"
	"github.com/myadmit/admit-backend/internal/storage"
	"github.com/myadmit/admit-backend/internal/validator"
	"github.com/myadmit/admit-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Strs("services", cfg.EnabledServices).
		Msg("Starting admit backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── External Adapters ─────────────────────────────────────────────
	store, err := storage.NewS3Store(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 store")
	}
	llmClient := llm.NewOpenAIClient(cfg)
	billingProvider := billing.NewStripeProvider(cfg.StripeSecretKey)
	mailSender := mailer.NewSendGridSender(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName)

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	profileQuestionRepo := repository.NewProfileQuestionRepository(pool)
	universityRepo := repository.NewUniversityRepository(pool)
	programRepo := repository.NewProgramRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	mailService := service.NewMailService(cfg, rdb, log)
	authService := service.NewAuthService(cfg, rdb, userRepo, profileRepo, mailService, service.NewGoogleVerifier(cfg.GoogleClientID), log)
	profileService := service.NewProfileService(profileRepo, userRepo, profileQuestionRepo, store, log)
	fileService := service.NewFileService(cfg, profileService, profileRepo, store, log)
	catalogService := service.NewCatalogService(cfg, rdb, universityRepo, programRepo, profileQuestionRepo, applicationRepo, store, log)
	applicationService := service.NewApplicationService(cfg, applicationRepo, programRepo, userRepo, subscriptionRepo, store, log)
	essayService := service.NewEssayService(cfg, rdb, llmClient, applicationService, applicationRepo, profileRepo, profileQuestionRepo, log)
	recommendationService := service.NewRecommendationService(llmClient, profileService, log)
	subscriptionService := service.NewSubscriptionService(cfg, billingProvider, userRepo, subscriptionRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:           handler.NewAuthHandler(authService, cfg.GoogleClientID),
		Profile:        handler.NewProfileHandler(profileService),
		File:           handler.NewFileHandler(fileService),
		Catalog:        handler.NewCatalogHandler(catalogService),
		Admin:          handler.NewAdminHandler(catalogService, fileService),
		Application:    handler.NewApplicationHandler(applicationService),
		Essay:          handler.NewEssayHandler(essayService),
		Subscription:   handler.NewSubscriptionHandler(subscriptionService),
		Recommendation: handler.NewRecommendationHandler(recommendationService),
		Mail:           handler.NewMailHandler(authService, mailService),
		WS:             handler.NewWSHandler(rdb, applicationService, log, cfg.AllowedOrigins),
		System:         handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	mailWorker := worker.NewMailWorker(rdb, mailSender, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		mailWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the mail queue to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
