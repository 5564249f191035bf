package handler // handler defines http handlers

import (
    "errors"  // errors provides sentinel values used in getCreatorID
    "strconv" // strconv converts strings to numeric types
    "strings" // strings parses the Authorization header

    "github.com/golang-jwt/jwt/v5"  // jwt parses optional bearer tokens
    "github.com/labstack/echo/v4"   // echo defines request context types
)

// getCreatorID extracts the authenticated creator id from echo.Context and
// converts it to uint64. The JWT middleware stores the raw claim, whose
// concrete type depends on how the token was decoded.
func getCreatorID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// viewerKey identifies an anonymous viewer for reveal state and viewer
// state purposes. Authenticated creators key by id; everyone else keys by
// client IP, which is deliberately coarse: reveal state is a convenience,
// not an entitlement.
func viewerKey(c echo.Context) string {
    if id, err := getCreatorID(c); err == nil {
        return "creator:" + strconv.FormatUint(id, 10)
    }
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    return "ip:" + ip
}

// optionalCreatorID parses the Authorization header without requiring it.
// Content routes are public; a creator browsing their own storefront still
// carries a session, and the access gate uses it for the preview bypass.
// Any parse failure simply means "anonymous".
func optionalCreatorID(c echo.Context, secret string) (uint64, bool) {
    if id, err := getCreatorID(c); err == nil {
        return id, true
    }
    authHeader := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(authHeader, "Bearer ") {
        return 0, false
    }
    raw := strings.TrimPrefix(authHeader, "Bearer ")
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, errors.New("unexpected signing method")
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, false
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, false
    }
    sub, ok := claims["sub"].(float64)
    if !ok {
        return 0, false
    }
    return uint64(sub), true
}
