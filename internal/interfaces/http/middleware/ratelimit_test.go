package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	allowed   bool
	remaining int
	err       error
}

func (l *stubLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return l.allowed, l.err
}

func (l *stubLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	return l.remaining, l.err
}

func newRateLimitRouter(cfg RateLimitConfig, limiter RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(cfg, limiter))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestRateLimitSetsQuotaHeaders(t *testing.T) {
	r := newRateLimitRouter(
		RateLimitConfig{Enabled: true, RequestsPerSecond: 5},
		&stubLimiter{allowed: true, remaining: 4},
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitDeniesOverQuota(t *testing.T) {
	r := newRateLimitRouter(
		RateLimitConfig{Enabled: true, RequestsPerSecond: 5},
		&stubLimiter{allowed: false, remaining: 0},
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	r := newRateLimitRouter(RateLimitConfig{Enabled: false}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitFailsOpenOnLimiterError(t *testing.T) {
	r := newRateLimitRouter(
		RateLimitConfig{Enabled: true, RequestsPerSecond: 5},
		&stubLimiter{err: context.DeadlineExceeded},
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
}
