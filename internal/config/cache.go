package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// CacheConfig drives the per-viewer response cache middleware. Entries are
// always scoped to the requesting viewer; KeyStrategy chooses whether the
// query string also participates ("route_query", the default) or only the
// route does ("route"). Caching is skipped entirely when Enabled is false
// or no Redis client is available.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig builds a CacheConfig from the environment, with defaults
// suited to the provider listing: short TTL, GET only, modest body cap.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
        TTL:          parseDur(getenv("CACHE_TTL", "30s")),
        KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       getenv("CACHE_PREFIX", "cache"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(strings.ToUpper(p)); p != "" {
            m[p] = true
        }
    }
    return m
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
