package main

import (
	"os"

	"github.com/Rrens/aura-chat/internal/config"
	"github.com/Rrens/aura-chat/internal/logging"
	"github.com/Rrens/aura-chat/internal/repository/memory"
	"github.com/Rrens/aura-chat/internal/repository/mongo"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if _, err := logging.Setup(cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if cfg.Database.URI == memory.URI {
		log.Info().Msg("In-memory store has no indexes to migrate")
		return
	}

	source := os.Getenv("MIGRATIONS_SOURCE")
	if source == "" {
		source = "file://migrations"
	}

	log.Info().Str("source", source).Str("database", cfg.Database.Name).Msg("Applying migrations")

	if err := mongo.RunMigrations(cfg.Database, source); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
