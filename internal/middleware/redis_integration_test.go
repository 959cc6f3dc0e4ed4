package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/carbon-footprint-tracker/internal/config"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	pool.MaxWait = time.Minute

	res, err := pool.Run("redis", "7-alpine", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(res) })

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("localhost:%s", res.GetPort("6379/tcp"))})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, pool.Retry(func() error { return rdb.Ping(context.Background()).Err() }))
	return rdb
}

func TestRedisCache_HitMissInvalidate(t *testing.T) {
	rdb := startRedis(t)
	cfg := config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "lb-test", MaxBodyBytes: 1 << 20}

	calls := 0
	e := echo.New()
	e.GET("/board", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, []int{calls})
	}, NewRedisCache(cfg, rdb, nil))

	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/board", nil))
		return rec
	}

	first := get()
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := get()
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Contains(t, second.Header().Get(echo.HeaderContentType), "application/json")
	assert.Equal(t, 1, calls)

	require.NoError(t, NewCacheInvalidator(rdb, cfg.Prefix).Invalidate(context.Background()))

	third := get()
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}
