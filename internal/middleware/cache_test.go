package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/creator-storefront/internal/config"
	"github.com/iliyamo/creator-storefront/internal/viewerstate"
)

func cacheTestConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		KeyStrategy: "route_query",
		Prefix:      "cache",
	}
}

func newCacheEnv(t *testing.T) (*redis.Client, *viewerstate.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, viewerstate.New(rdb, 0)
}

// providersStub mimics the provider listing: a shared directory payload
// plus the viewer's remembered email when one exists.
func providersStub(vs *viewerstate.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := echo.Map{"providers": []string{"prov-1"}}
		if email, ok := vs.KnownEmail(c.Request().Context(), "ip:"+c.RealIP()); ok {
			resp["known_email"] = email
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func cacheGet(t *testing.T, e *echo.Echo, ip string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/checkout/providers?amount=10&currency=USD", nil)
	req.RemoteAddr = ip + ":40000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRedisCache_NeverSharesEntriesAcrossViewers(t *testing.T) {
	rdb, vs := newCacheEnv(t)
	vs.SetKnownEmail(context.Background(), "ip:1.1.1.1", "alice@example.com")

	e := echo.New()
	e.GET("/v1/checkout/providers", providersStub(vs), NewRedisCache(cacheTestConfig(), rdb))

	first := cacheGet(t, e, "1.1.1.1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Contains(t, first.Body.String(), "alice@example.com")

	// Same route and query from another viewer: their own entry, no
	// remembered email from anyone else.
	other := cacheGet(t, e, "2.2.2.2")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.NotContains(t, other.Body.String(), "alice@example.com")

	// Repeat requests by the same viewer do hit the cache.
	again := cacheGet(t, e, "1.1.1.1")
	assert.Equal(t, "HIT", again.Header().Get("X-Cache"))
	assert.Contains(t, again.Body.String(), "alice@example.com")
}

func TestRedisCache_DisabledPassesThrough(t *testing.T) {
	rdb, vs := newCacheEnv(t)

	cfg := cacheTestConfig()
	cfg.Enabled = false
	e := echo.New()
	e.GET("/v1/checkout/providers", providersStub(vs), NewRedisCache(cfg, rdb))

	rec := cacheGet(t, e, "1.1.1.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
