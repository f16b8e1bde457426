package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/aura-chat/internal/api"
	"github.com/Rrens/aura-chat/internal/api/handler"
	customMiddleware "github.com/Rrens/aura-chat/internal/api/middleware"
	"github.com/Rrens/aura-chat/internal/config"
	"github.com/Rrens/aura-chat/internal/domain"
	"github.com/Rrens/aura-chat/internal/llm"
	"github.com/Rrens/aura-chat/internal/llm/gemini"
	"github.com/Rrens/aura-chat/internal/llm/openai"
	"github.com/Rrens/aura-chat/internal/logging"
	"github.com/Rrens/aura-chat/internal/repository/memory"
	"github.com/Rrens/aura-chat/internal/repository/mongo"
	"github.com/Rrens/aura-chat/internal/repository/redis"
	"github.com/Rrens/aura-chat/internal/security"
	"github.com/Rrens/aura-chat/internal/service"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logFile, err := logging.Setup(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer logFile.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting Aura chat server")

	ctx := context.Background()

	// Initialize storage
	var (
		userRepo    domain.UserRepository
		sessionRepo domain.SessionRepository
		pinger      handler.Pinger
	)
	if cfg.Database.URI == memory.URI {
		log.Warn().Msg("Using in-memory store; data is lost on restart")
		sessions := memory.NewSessionRepository()
		userRepo, sessionRepo, pinger = memory.NewUserRepository(), sessions, sessions
	} else {
		db, err := mongo.NewDB(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close(context.Background())
		log.Info().Str("database", cfg.Database.Name).Msg("MongoDB connected")

		userRepo, sessionRepo, pinger = mongo.NewUserRepository(db), mongo.NewSessionRepository(db), db
	}

	// Initialize Redis
	var limiter customMiddleware.Limiter
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		limiter = redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
	}

	// Initialize LLM Router with providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)
	defer llmRouter.Close()

	if cfg.LLM.Gemini.APIKey != "" {
		provider, err := gemini.NewProvider(ctx, cfg.LLM.Gemini)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Gemini provider")
		} else {
			llmRouter.RegisterProvider(provider)
		}
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI))
	}

	if llmRouter.Available() {
		log.Info().
			Str("default", llmRouter.DefaultProvider()).
			Strs("providers", llmRouter.ListProviders()).
			Msg("AI gateway ready")
	} else {
		log.Warn().
			Str("default", cfg.LLM.DefaultProvider).
			Msg("AI gateway is not configured; message requests will return 503")
	}

	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set; using an ephemeral secret, tokens will not survive a restart")
		cfg.Auth.JWTSecret = uuid.NewString() + uuid.NewString()
	}
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Initialize router
	router := api.NewRouter(cfg, api.Dependencies{
		Chat:        service.NewChatService(userRepo, sessionRepo, llmRouter, llm.DefaultPersona()),
		Auth:        service.NewAuthService(userRepo, jwtManager),
		JWT:         jwtManager,
		DB:          pinger,
		RateLimiter: limiter,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
