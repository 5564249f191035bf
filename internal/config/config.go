package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs, slices for ordered endpoint lists.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign creator session JWTs
    AccessTTLMin   int    // session token time-to-live in minutes
    RefreshTTLDays int    // refresh token time-to-live in days
    BcryptCost     int    // bcrypt cost for password hashing

    SecureIDKey      string   // server-side key for the identifier obfuscation
    VerifyBaseURL    string   // verification authority base address
    SessionBaseURL   string   // payment session service base address
    EngagementURL    string   // engagement service base address
    ProviderBaseURLs []string // provider directory base addresses, primary first
    SafeRedirectURL  string   // manual escape destination on redirect failure
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),      // environment (dev/test/prod)
        Port:           must("APP_PORT"),     // port to bind the HTTP server
        DBUser:         must("DB_USER"),      // database user
        DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:         must("DB_HOST"),      // database host
        DBPort:         must("DB_PORT"),      // database port
        DBName:         must("DB_NAME"),      // database name
        JWTSecret:      must("JWT_SECRET"),   // secret used for signing JWTs
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),

        SecureIDKey:      must("SECURE_ID_KEY"),        // key behind the public alias mapping
        VerifyBaseURL:    must("VERIFY_BASE_URL"),      // verification authority
        SessionBaseURL:   must("SESSION_BASE_URL"),     // payment session service
        EngagementURL:    must("ENGAGEMENT_BASE_URL"),  // engagement counters service
        ProviderBaseURLs: mustList("PROVIDER_BASE_URLS"), // ordered, comma-separated
        SafeRedirectURL:  getenvDefault("SAFE_REDIRECT_URL", "/"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("env var %s must be an integer: %v", key, err)
    }
    return n
}

// mustList splits a required comma-separated variable into an ordered,
// trimmed list. Order matters: fallback endpoints are tried in the order
// given here.
func mustList(key string) []string {
    raw := must(key)
    var out []string
    for _, p := range strings.Split(raw, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    if len(out) == 0 {
        log.Fatalf("env var %s must contain at least one entry", key)
    }
    return out
}

func getenvDefault(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}
