package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// SessionRequest is the payload for creating a payment session. It mirrors
// the session service contract.
type SessionRequest struct {
	ContentID string  `json:"content_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Provider  string  `json:"provider"`
	Email     string  `json:"email"`
}

// Sessions creates single-use checkout sessions at the session service.
type Sessions struct {
	BaseURL string
	HTTP    *http.Client
}

// NewSessions builds a Sessions client for the given base URL.
func NewSessions(baseURL string) *Sessions {
	return &Sessions{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Create requests a payment session and returns the external payment link
// the browser must be redirected to. The session is single use; the caller
// must not retry automatically on failure.
func (s *Sessions) Create(ctx context.Context, req SessionRequest) (string, error) {
	body, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := s.HTTP.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("session service: status %d", resp.StatusCode)
	}
	var out struct {
		Success     bool   `json:"success"`
		PaymentLink string `json:"payment_link"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if !out.Success || out.PaymentLink == "" {
		return "", errors.New("session service: unsuccessful response")
	}
	return out.PaymentLink, nil
}
