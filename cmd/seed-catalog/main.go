package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/database"
	"github.com/myadmit/admit-backend/internal/logger"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/repository"
	"github.com/myadmit/admit-backend/internal/service"
)

// seedUniversity is one entry of the seed file. UniversityID of the nested
// programs is filled in after the university is created or found.
type seedUniversity struct {
	model.UniversityRequest
	Programs []model.ProgramRequest `json:"programs"`
}

func main() {
	var path string
	flag.StringVar(&path, "file", "seed/catalog.json", "Path to the catalog JSON file")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to read seed file")
	}
	var seed []seedUniversity
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse seed file")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	universityRepo := repository.NewUniversityRepository(pool)
	programRepo := repository.NewProgramRepository(pool)
	// Seeding never signs logos, so no blob store is needed.
	catalogService := service.NewCatalogService(cfg, rdb, universityRepo, programRepo,
		repository.NewProfileQuestionRepository(pool), repository.NewApplicationRepository(pool), nil, log)

	fmt.Printf("=== Seeding %d universities ===\n", len(seed))

	programCount, skipped := 0, 0
	for _, entry := range seed {
		uni, err := universityRepo.GetByName(ctx, entry.Name)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			uni, err = catalogService.CreateUniversity(ctx, &entry.UniversityRequest)
			if err != nil {
				log.Fatal().Err(err).Str("university", entry.Name).Msg("Failed to create university")
			}
			fmt.Printf("Created university %s\n", uni.Name)
		case err != nil:
			log.Fatal().Err(err).Str("university", entry.Name).Msg("Failed to look up university")
		default:
			fmt.Printf("Found existing university %s\n", uni.Name)
		}

		for i := range entry.Programs {
			req := &entry.Programs[i]
			req.UniversityID = uni.ID
			if _, err := catalogService.CreateProgram(ctx, req); err != nil {
				if errors.Is(err, service.ErrDuplicateEntry) {
					skipped++
					continue
				}
				fmt.Printf("Error creating program %s (%s): %v\n", req.ProgramName, uni.Name, err)
				continue
			}
			programCount++
		}
	}

	fmt.Printf("\nSeed completed! Added %d programs, skipped %d existing.\n", programCount, skipped)
}
