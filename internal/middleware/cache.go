package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/creator-storefront/internal/config"
)

// cachedResponse is the stored form of one response: status, headers and
// body, so a hit replays exactly what the handler produced.
type cachedResponse struct {
    Status int         `json:"status"`
    Header http.Header `json:"header"`
    Body   []byte      `json:"body"`
}

// responseRecorder tees the handler's output into a buffer while writing it
// through to the client. Bodies past the limit stream to the client but are
// not cached.
type responseRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    written  int64
    limit    int64
    overflow bool
}

func (rr *responseRecorder) WriteHeader(code int) {
    rr.status = code
    rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
    rr.written += int64(len(b))
    if rr.limit > 0 && rr.written > rr.limit {
        rr.overflow = true
    } else {
        rr.buf.Write(b)
    }
    return rr.ResponseWriter.Write(b)
}

// viewerIdentity is the identity dimension shared by the response cache and
// the rate limiter. Cached routes may embed viewer-local state (the checkout
// email prefill), so entries must never be shared across viewers. The rule
// mirrors how viewer state itself is keyed: authenticated creator id when
// the auth middleware ran, client IP otherwise.
func viewerIdentity(c echo.Context) string {
    // The JWT middleware stores the raw subject claim, whose concrete type
    // depends on how the token was decoded.
    if v := c.Get("user_id"); v != nil {
        return fmt.Sprintf("creator:%v", v)
    }
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    return "ip:" + ip
}

// cacheKey builds the Redis key. The viewer dimension is unconditional;
// KeyStrategy only decides whether the query string participates.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    parts := []string{"viewer", viewerIdentity(c), "route", c.Path()}
    if strings.ToLower(cfg.KeyStrategy) != "route" {
        parts = append(parts, "q", c.Request().URL.RawQuery)
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum)
}

// NewRedisCache caches full responses (status, headers, body) per viewer.
// Only successful responses to the configured methods are stored; a nil
// client or a disabled config passes everything through untouched.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }

            ctx := c.Request().Context()
            key := cacheKey(cfg, c)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(raw, &hit) == nil && hit.Status != 0 {
                    for k, vals := range hit.Header {
                        if strings.EqualFold(k, "Content-Length") {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(hit.Status)
                    _, werr := c.Response().Write(hit.Body)
                    return werr
                }
            }

            rr := &responseRecorder{
                ResponseWriter: c.Response().Writer,
                status:         http.StatusOK,
                limit:          int64(cfg.MaxBodyBytes),
            }
            c.Response().Writer = rr
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            if rr.status != http.StatusOK || rr.overflow {
                return nil
            }
            hdr := make(http.Header, len(c.Response().Header()))
            for k, vals := range c.Response().Header() {
                hdr[k] = append([]string(nil), vals...)
            }
            payload, err := json.Marshal(cachedResponse{Status: rr.status, Header: hdr, Body: rr.buf.Bytes()})
            if err == nil {
                // The request context may already be done; the write is
                // best-effort bookkeeping, not part of the response.
                _ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
            }
            return nil
        }
    }
}
