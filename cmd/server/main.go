package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/originlens/backend/config"
	httpDelivery "github.com/originlens/backend/internal/delivery/http"
	"github.com/originlens/backend/internal/infrastructure/cache"
	"github.com/originlens/backend/internal/infrastructure/gemini"
	"github.com/originlens/backend/internal/infrastructure/hscode"
	"github.com/originlens/backend/internal/usecase"
)

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Server.Environment)

	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("model", cfg.Gemini.Model).
		Msg("Starting OriginLens Backend")

	// Initialize infrastructure dependencies
	hsIndex, err := hscode.NewLookup()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load HS code dataset")
	}
	logger.Info().Int("items", hsIndex.TotalItems()).Msg("HS code dataset loaded")

	resultCache := cache.NewLRU(cfg.Cache.MaxEntries)
	logger.Info().Int("max_entries", cfg.Cache.MaxEntries).Msg("Result cache initialized")

	detector := gemini.NewClient(gemini.Config{
		APIKey:        cfg.Gemini.APIKey,
		Model:         cfg.Gemini.Model,
		BaseURL:       cfg.Gemini.BaseURL,
		Timeout:       cfg.Gemini.Timeout,
		MaxInputChars: cfg.Gemini.MaxInputChars,
		ModelRPS:      cfg.RateLimit.ModelRPS,
		Logger:        logger,
	})

	// Initialize usecase layer
	detectionService := usecase.NewDetectionService(
		detector,
		resultCache,
		hsIndex,
		usecase.DetectionConfig{
			MinConfidence:  cfg.Cache.MinConfidence,
			MaxConcurrency: cfg.Batch.MaxConcurrency,
			CallTimeout:    cfg.Gemini.Timeout,
		},
		logger,
	)

	logger.Info().
		Float64("min_confidence", cfg.Cache.MinConfidence).
		Int("max_concurrency", cfg.Batch.MaxConcurrency).
		Msg("Detection service configured")

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(detectionService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("Server listening")

	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// newLogger builds the process logger. Development gets human-readable
// console output, everything else gets JSON.
func newLogger(environment string) zerolog.Logger {
	zerolog.DurationFieldUnit = time.Millisecond

	if environment == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
