package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Rrens/aura-chat/internal/api/response"
)

var startedAt = time.Now()

// Routes advertised by the root banner
var availableRoutes = []string{
	"GET /health",
	"GET /ready",
	"POST /api/auth/register",
	"POST /api/auth/login",
	"POST /api/auth/refresh",
	"POST /api/chat/session",
	"POST /api/chat/:sessionId/message",
	"GET /api/chat/:sessionId",
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Root returns the service banner
func Root(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{
		"message":         "AI Therapist Backend Server is running!",
		"status":          "success",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"availableRoutes": availableRoutes,
	})
}

// HealthCheck returns process liveness with uptime in seconds
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{
		"status":    "healthy",
		"uptime":    time.Since(startedAt).Seconds(),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// ReadyCheck returns readiness status including database connectivity
func ReadyCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.ServiceUnavailable(w, "database not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
