// Package payment wraps the external payment collaborators: the provider
// directory (which payment rails are available for an amount) and the
// session service (which turns a validated purchase intent into an external
// payment link).
package payment

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "net/url"
    "time"

    "github.com/iliyamo/creator-storefront/internal/model"
)

// Directory fetches available payment providers. The same API contract is
// served from an ordered list of base addresses; endpoints are tried
// strictly in sequence and the first success is authoritative. When every
// endpoint fails, the last error is what the user sees.
type Directory struct {
    Endpoints []string
    HTTP      *http.Client
}

// NewDirectory builds a Directory over the given base addresses, primary
// first.
func NewDirectory(endpoints []string) *Directory {
    return &Directory{
        Endpoints: endpoints,
        HTTP:      &http.Client{Timeout: 10 * time.Second},
    }
}

// List returns the providers available for the amount and currency.
// Attempts are sequential, never parallel, so a late fallback response can
// never overwrite an earlier success.
func (d *Directory) List(ctx context.Context, amount float64, currency string) ([]model.PaymentProvider, error) {
    if len(d.Endpoints) == 0 {
        return nil, errors.New("payment directory: no endpoints configured")
    }
    var lastErr error
    for _, base := range d.Endpoints {
        providers, err := d.listFrom(ctx, base, amount, currency)
        if err == nil {
            return providers, nil
        }
        lastErr = err
    }
    return nil, lastErr
}

func (d *Directory) listFrom(ctx context.Context, base string, amount float64, currency string) ([]model.PaymentProvider, error) {
    q := url.Values{}
    q.Set("amount", fmt.Sprintf("%.2f", amount))
    q.Set("currency", currency)
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/v1/providers?"+q.Encode(), nil)
    if err != nil {
        return nil, err
    }
    resp, err := d.HTTP.Do(req)
    if err != nil {
        return nil, err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return nil, fmt.Errorf("provider directory %s: status %d", base, resp.StatusCode)
    }
    var out struct {
        Success   bool                    `json:"success"`
        Providers []model.PaymentProvider `json:"providers"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return nil, err
    }
    if !out.Success {
        return nil, fmt.Errorf("provider directory %s: unsuccessful response", base)
    }
    return out.Providers, nil
}
