package model

import "time"

// Purchase records a completed token redemption in the `purchases` table.
// It exists for owner dashboards and audit; access decisions always go
// through the verification authority, never through this table.
type Purchase struct {
    ID          uint64    // purchases.id
    ContentID   string    // purchases.content_id
    TokenHash   string    // purchases.token_hash (SHA-256 of the access token)
    Email       string    // purchases.email
    AmountCents uint32    // purchases.amount_cents
    Currency    string    // purchases.currency
    Provider    string    // purchases.provider
    CreatedAt   time.Time // purchases.created_at
}

// PaymentProvider is one payment rail offered by the provider directory for
// a given amount. Cards lists the card networks the rail accepts.
type PaymentProvider struct {
    ID    string   `json:"id"`
    Name  string   `json:"name"`
    Cards []string `json:"cards"`
}
