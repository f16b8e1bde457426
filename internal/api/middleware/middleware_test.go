package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/aura-chat/internal/api/middleware"
	"github.com/Rrens/aura-chat/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		userID = "anonymous"
	}
	w.Write([]byte(userID))
}

func TestIdentify(t *testing.T) {
	jwtManager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute, time.Hour)
	h := middleware.NewAuthMiddleware(jwtManager).Identify(http.HandlerFunc(echoUser))

	token, err := jwtManager.GenerateAccessToken("u1", "u1@example.com")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "no header falls through", header: "", wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "valid bearer token", header: "Bearer " + token, wantStatus: http.StatusOK, wantBody: "u1"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

type stubLimiter struct {
	decision middleware.RateDecision
	err      error
	keys     []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (middleware.RateDecision, error) {
	l.keys = append(l.keys, key)
	return l.decision, l.err
}

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	t.Run("allowed", func(t *testing.T) {
		limiter := &stubLimiter{decision: middleware.RateDecision{Allowed: true, Remaining: 7, ResetAt: time.Now()}}
		h := middleware.NewRateLimitMiddleware(limiter).Limit(ok)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(middleware.WithUser(req.Context(), "u1", ""))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "7", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, []string{"user:u1"}, limiter.keys)
	})

	t.Run("rejected", func(t *testing.T) {
		limiter := &stubLimiter{decision: middleware.RateDecision{Allowed: false}}
		h := middleware.NewRateLimitMiddleware(limiter).Limit(ok)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Len(t, limiter.keys, 1)
		assert.Contains(t, limiter.keys[0], "ip:")
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		limiter := &stubLimiter{err: errors.New("redis down")}
		h := middleware.NewRateLimitMiddleware(limiter).Limit(ok)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestSecureHeaders(t *testing.T) {
	h := middleware.SecureHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
}
