// Package engagement keeps like/share/view counters in step with the
// external engagement service. User actions apply an optimistic local
// update immediately; the authoritative response reconciles or rolls the
// update back.
package engagement

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/url"
    "time"

    "github.com/iliyamo/creator-storefront/internal/model"
)

// Service is the engagement collaborator contract. Every mutation returns
// the authoritative updated counters.
type Service interface {
    Fetch(ctx context.Context, kind, id string) (model.EngagementCounters, error)
    SetLike(ctx context.Context, kind, id string, liked bool) (model.EngagementCounters, error)
    RegisterShare(ctx context.Context, kind, id string) (model.EngagementCounters, error)
    RegisterView(ctx context.Context, kind, id string) (model.EngagementCounters, error)
}

// Client talks JSON-over-HTTP to the engagement service.
type Client struct {
    BaseURL string
    HTTP    *http.Client
}

// NewClient builds a Client for the given base URL.
func NewClient(baseURL string) *Client {
    return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) Fetch(ctx context.Context, kind, id string) (model.EngagementCounters, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.counterURL(kind, id, ""), nil)
    if err != nil {
        return model.EngagementCounters{}, err
    }
    return c.do(req)
}

func (c *Client) SetLike(ctx context.Context, kind, id string, liked bool) (model.EngagementCounters, error) {
    body, _ := json.Marshal(map[string]bool{"liked": liked})
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.counterURL(kind, id, "/like"), bytes.NewReader(body))
    if err != nil {
        return model.EngagementCounters{}, err
    }
    req.Header.Set("Content-Type", "application/json")
    return c.do(req)
}

func (c *Client) RegisterShare(ctx context.Context, kind, id string) (model.EngagementCounters, error) {
    return c.post(ctx, kind, id, "/share")
}

func (c *Client) RegisterView(ctx context.Context, kind, id string) (model.EngagementCounters, error) {
    return c.post(ctx, kind, id, "/view")
}

func (c *Client) post(ctx context.Context, kind, id, action string) (model.EngagementCounters, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.counterURL(kind, id, action), nil)
    if err != nil {
        return model.EngagementCounters{}, err
    }
    return c.do(req)
}

func (c *Client) counterURL(kind, id, action string) string {
    return c.BaseURL + "/v1/counters/" + url.PathEscape(kind) + "/" + url.PathEscape(id) + action
}

func (c *Client) do(req *http.Request) (model.EngagementCounters, error) {
    resp, err := c.HTTP.Do(req)
    if err != nil {
        return model.EngagementCounters{}, err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return model.EngagementCounters{}, fmt.Errorf("engagement service: status %d", resp.StatusCode)
    }
    var out model.EngagementCounters
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return model.EngagementCounters{}, err
    }
    return out, nil
}
