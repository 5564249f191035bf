// Package queue defines message payloads exchanged over the message broker.
package queue

// PurchaseCompletedEvent is published when a returning access token is
// successfully exchanged for a destination URL. It carries enough for
// downstream consumers to log, notify, or feed dashboards without querying
// the primary database. The raw token never appears here, only its hash.
type PurchaseCompletedEvent struct {
    EventID     string `json:"event_id"`
    ContentID   string `json:"content_id"`
    TokenHash   string `json:"token_hash"`
    Email       string `json:"email,omitempty"`
    AmountCents uint32 `json:"amount_cents,omitempty"`
    Currency    string `json:"currency,omitempty"`
    Provider    string `json:"provider,omitempty"`
    CompletedAt string `json:"completed_at"`
}

// PurchaseInitiatedEvent is published when a payment session is created and
// the visitor is handed the external payment link. Not every initiation
// completes; consumers pair it with PurchaseCompletedEvent for funnel
// numbers.
type PurchaseInitiatedEvent struct {
    EventID     string  `json:"event_id"`
    ContentID   string  `json:"content_id"`
    Provider    string  `json:"provider"`
    Amount      float64 `json:"amount"`
    Currency    string  `json:"currency"`
    InitiatedAt string  `json:"initiated_at"`
}

// EngagementEvent is published for reconciled share and view actions so the
// analytics side sees engagement without polling the engagement service.
type EngagementEvent struct {
    EventID    string `json:"event_id"`
    Action     string `json:"action"` // share | view
    EntityKind string `json:"entity_kind"`
    EntityID   string `json:"entity_id"`
    OccurredAt string `json:"occurred_at"`
}
