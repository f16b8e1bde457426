package api

import (
	"net/http"

	"github.com/Rrens/aura-chat/internal/api/handler"
	customMiddleware "github.com/Rrens/aura-chat/internal/api/middleware"
	"github.com/Rrens/aura-chat/internal/config"
	"github.com/Rrens/aura-chat/internal/security"
	"github.com/Rrens/aura-chat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Dependencies are the services the HTTP layer routes to
type Dependencies struct {
	Chat *service.ChatService
	Auth *service.AuthService
	JWT  *security.JWTManager
	DB   handler.Pinger
	// RateLimiter is optional; nil disables limiting on chat routes
	RateLimiter customMiddleware.Limiter
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	r.Use(customMiddleware.SecureHeaders)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authHandler := handler.NewAuthHandler(deps.Auth)
	chatHandler := handler.NewChatHandler(deps.Chat)
	authMiddleware := customMiddleware.NewAuthMiddleware(deps.JWT)

	r.Get("/", handler.Root)
	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(deps.DB))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(authMiddleware.Identify)
			if deps.RateLimiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(deps.RateLimiter).Limit)
			}

			r.Post("/session", chatHandler.CreateSession)
			r.Post("/{sessionId}/message", chatHandler.SendMessage)
			r.Get("/{sessionId}", chatHandler.GetSession)
		})
	})

	return r
}
