package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Rrens/aura-chat/internal/api/response"
	"github.com/rs/zerolog/log"
)

// RateDecision is the outcome of one rate limit check
type RateDecision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key
type Limiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	limiter Limiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(limiter Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit applies rate limiting keyed by the authenticated user, or by client
// address for anonymous requests.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + r.RemoteAddr
		if userID, ok := GetUserID(r.Context()); ok {
			key = "user:" + userID
		}

		decision, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			// If rate limiter fails, allow the request but log the error
			log.Ctx(r.Context()).Warn().Err(err).Msg("Rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", decision.ResetAt.UTC().Format(time.RFC3339))

		if !decision.Allowed {
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
