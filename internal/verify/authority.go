// Package verify wraps the verification authority, the external backend
// that authoritatively decides whether a bearer token grants access to
// content. The service only ever sends well-formed tokens here; shape
// validation happens at the callers.
package verify

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "net/url"
    "time"

    "github.com/iliyamo/creator-storefront/internal/model"
)

// ErrDenied is returned when the authority answered but did not grant.
// Callers treat transport failures and denials identically (no partial
// trust), but the sentinel keeps logs readable.
var ErrDenied = errors.New("verification denied")

// Client talks JSON-over-HTTP to the verification authority.
type Client struct {
    BaseURL string
    HTTP    *http.Client
}

// NewClient builds a Client for the given base URL. The HTTP client carries
// a timeout so a hung authority resolves to a denial instead of pinning the
// request forever.
func NewClient(baseURL string) *Client {
    return &Client{
        BaseURL: baseURL,
        HTTP:    &http.Client{Timeout: 10 * time.Second},
    }
}

// Verify asks whether the token proves a completed purchase of the content.
// The boolean is only meaningful when err is nil.
func (c *Client) Verify(ctx context.Context, contentID, token string) (bool, error) {
    body, _ := json.Marshal(map[string]string{"content_id": contentID, "token": token})
    var out struct {
        Valid bool `json:"valid"`
    }
    if err := c.postJSON(ctx, "/v1/verify", body, &out); err != nil {
        return false, err
    }
    return out.Valid, nil
}

// ExchangeForRedirect resolves a returning access token into the destination
// URL for the now-unlocked content. The indirection keeps the internal
// identifier mapping out of any client-visible response.
func (c *Client) ExchangeForRedirect(ctx context.Context, contentID, token string) (string, error) {
    body, _ := json.Marshal(map[string]string{"content_id": contentID, "token": token})
    var out struct {
        Success     bool   `json:"success"`
        RedirectURL string `json:"redirect_url"`
    }
    if err := c.postJSON(ctx, "/v1/redirect", body, &out); err != nil {
        return "", err
    }
    if !out.Success || out.RedirectURL == "" {
        return "", ErrDenied
    }
    return out.RedirectURL, nil
}

// ResolveOwner fetches the display identity of a content owner by content id
// or username. Best-effort: callers must tolerate failure.
func (c *Client) ResolveOwner(ctx context.Context, ref string) (model.CreatorProfile, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet,
        c.BaseURL+"/v1/owners/"+url.PathEscape(ref), nil)
    if err != nil {
        return model.CreatorProfile{}, err
    }
    resp, err := c.HTTP.Do(req)
    if err != nil {
        return model.CreatorProfile{}, err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return model.CreatorProfile{}, fmt.Errorf("resolve owner: status %d", resp.StatusCode)
    }
    var p model.CreatorProfile
    if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
        return model.CreatorProfile{}, err
    }
    return p, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte, out interface{}) error {
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
    if err != nil {
        return err
    }
    req.Header.Set("Content-Type", "application/json")
    resp, err := c.HTTP.Do(req)
    if err != nil {
        return err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return fmt.Errorf("verification authority: status %d", resp.StatusCode)
    }
    return json.NewDecoder(resp.Body).Decode(out)
}
