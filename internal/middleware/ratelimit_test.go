package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmdb/contribution-service/internal/config"
)

func rateLimitTestConfig(capacity int) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       capacity,
		RefillInterval: time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
}

func newLimitedEcho(cfg config.RateLimitConfig, mw echo.MiddlewareFunc, calls *int) *echo.Echo {
	e := echo.New()
	e.Use(mw)
	e.GET("/ping", func(c echo.Context) error {
		*calls++
		return c.String(http.StatusOK, "pong")
	})
	return e
}

func TestRateLimitBlocksOverCapacity(t *testing.T) {
	mr, rdb := newTestRedis(t)
	cfg := rateLimitTestConfig(2)

	calls := 0
	e := newLimitedEcho(cfg, RateLimit(cfg, rdb), &calls)

	first := serveGET(e, "/ping")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := serveGET(e, "/ping")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := serveGET(e, "/ping")
	require.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.NotEmpty(t, third.Header().Get("Retry-After"))
	assert.Contains(t, third.Body.String(), "too_many_requests")
	assert.Equal(t, 2, calls, "blocked requests must not reach the handler")

	// A new window starts once the counter expires.
	mr.FastForward(2 * time.Minute)
	fourth := serveGET(e, "/ping")
	require.Equal(t, http.StatusOK, fourth.Code)
	assert.Equal(t, "1", fourth.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, 3, calls)
}

func TestRateLimitFailsOpenOnRedisError(t *testing.T) {
	mr, rdb := newTestRedis(t)
	cfg := rateLimitTestConfig(1)

	calls := 0
	e := newLimitedEcho(cfg, RateLimit(cfg, rdb), &calls)

	mr.Close()

	rec := serveGET(e, "/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls, "a Redis outage must not block requests")
}

func TestRateLimitPassThroughWhenDisabled(t *testing.T) {
	_, rdb := newTestRedis(t)
	cfg := rateLimitTestConfig(1)
	cfg.Enabled = false

	calls := 0
	e := newLimitedEcho(cfg, RateLimit(cfg, rdb), &calls)

	for i := 0; i < 3; i++ {
		rec := serveGET(e, "/ping")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
	assert.Equal(t, 3, calls)
}
