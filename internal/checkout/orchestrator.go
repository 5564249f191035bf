// Package checkout drives the purchase flow end to end: validating a
// purchase intent, listing payment rails, creating the external payment
// session, and, on return from the processor, exchanging the one-time
// access token for a destination URL.
//
// Two rules shape everything here. Validation failures never become network
// calls, and nothing is retried automatically: payment actions that fail are
// terminal for that attempt and the user must re-trigger them.
package checkout

import (
    "context"
    "crypto/sha256"
    "encoding/hex"
    "fmt"
    "log"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/creator-storefront/internal/model"
    "github.com/iliyamo/creator-storefront/internal/payment"
    "github.com/iliyamo/creator-storefront/internal/secureid"
)

// BundleContentID is the literal identifier of the all-content bundle
// product, accepted anywhere a content identifier is.
const BundleContentID = "all"

// MaxAmount is the upper bound on a purchase amount. Amounts must satisfy
// 0 < amount <= MaxAmount.
const MaxAmount = 10000

// RedirectDelay is the fixed visual delay before the post-payment redirect,
// long enough for the success animation to register before navigation away.
const RedirectDelay = 1500 * time.Millisecond

// submitGuardTTL bounds how long a submit guard can stay held if the
// process dies mid-request.
const submitGuardTTL = 30 * time.Second

// Intent is a client-declared purchase request parsed from route
// parameters. It is not a session; it either validates and gets promoted or
// is discarded.
type Intent struct {
    ContentID string
    Amount    float64
    Currency  string
    Email     string
}

// Validate checks everything except the email, which the visitor supplies
// later in the flow. Any failure is terminal for the intent.
func (i Intent) Validate() error {
    if i.Amount <= 0 || i.Amount > MaxAmount {
        return fmt.Errorf("%w: amount out of bounds", ErrSessionExpired)
    }
    if i.ContentID != BundleContentID && !secureid.IsValidContentID(i.ContentID) {
        return fmt.Errorf("%w: bad content identifier", ErrSessionExpired)
    }
    if i.Currency == "" {
        return fmt.Errorf("%w: missing currency", ErrSessionExpired)
    }
    return nil
}

// Redemption is the outcome of a successful token exchange.
type Redemption struct {
    RedirectURL string
    Delay       time.Duration
}

// ProviderLister is the provider directory surface.
type ProviderLister interface {
    List(ctx context.Context, amount float64, currency string) ([]model.PaymentProvider, error)
}

// SessionCreator is the session service surface.
type SessionCreator interface {
    Create(ctx context.Context, req payment.SessionRequest) (string, error)
}

// Exchanger resolves a returning token into a destination URL.
type Exchanger interface {
    ExchangeForRedirect(ctx context.Context, contentID, token string) (string, error)
}

// PurchaseRecorder persists completed redemptions. Optional.
type PurchaseRecorder interface {
    Record(ctx context.Context, p model.Purchase) (uint64, error)
}

// Orchestrator wires the checkout collaborators together. Guard may be nil
// (the duplicate-submit check is then skipped); Purchases and the publish
// hooks may be nil (recording and events are then skipped).
type Orchestrator struct {
    Directory ProviderLister
    Sessions  SessionCreator
    Authority Exchanger
    Purchases PurchaseRecorder
    Guard     *redis.Client
    // PublishInitiated fires after a payment session is created.
    PublishInitiated func(ctx context.Context, intent Intent, providerID string)
    // Publish fires after a successful redemption.
    Publish func(ctx context.Context, contentID, tokenHash string)
}

// Providers validates the intent and fetches the payment rails available
// for its amount. An invalid intent short-circuits with ErrSessionExpired
// before any endpoint is contacted; when every endpoint fails the last
// error is surfaced wrapped in ErrProviderDirectoryUnavailable.
func (o *Orchestrator) Providers(ctx context.Context, intent Intent) ([]model.PaymentProvider, error) {
    if err := intent.Validate(); err != nil {
        return nil, err
    }
    providers, err := o.Directory.List(ctx, intent.Amount, intent.Currency)
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrProviderDirectoryUnavailable, err)
    }
    return providers, nil
}

// Submit promotes a fully validated intent into a payment session and
// returns the external payment link. Exactly one session is created per
// submit action: while a creation for the same intent is in flight, further
// submits are refused with ErrSubmitInFlight. Failures are terminal; the
// guard is released so the user can re-trigger manually.
func (o *Orchestrator) Submit(ctx context.Context, intent Intent, providerID string) (string, error) {
    if err := intent.Validate(); err != nil {
        return "", err
    }
    if providerID == "" {
        return "", fmt.Errorf("%w: no provider selected", ErrSessionExpired)
    }
    if !ValidEmail(intent.Email) {
        return "", fmt.Errorf("%w: invalid email", ErrSessionExpired)
    }

    guardKey := submitKey(intent, providerID)
    if !o.acquire(ctx, guardKey) {
        return "", ErrSubmitInFlight
    }
    defer o.release(ctx, guardKey)

    link, err := o.Sessions.Create(ctx, payment.SessionRequest{
        ContentID: intent.ContentID,
        Amount:    intent.Amount,
        Currency:  intent.Currency,
        Provider:  providerID,
        Email:     intent.Email,
    })
    if err != nil {
        return "", fmt.Errorf("create payment session: %w", err)
    }
    if o.PublishInitiated != nil {
        o.PublishInitiated(ctx, intent, providerID)
    }
    return link, nil
}

// Redeem handles the return leg from the external processor: it shape-gates
// the one-time token, exchanges it for a destination URL and records the
// purchase. The destination is never guessed; on exchange failure the
// caller renders an explicit failure state with a manual way back.
func (o *Orchestrator) Redeem(ctx context.Context, contentID, rawToken string) (Redemption, error) {
    if contentID != BundleContentID && !secureid.IsValidContentID(contentID) {
        return Redemption{}, ErrInvalidIdentifier
    }
    if !secureid.IsValidAccessToken(rawToken) {
        return Redemption{}, ErrMalformedToken
    }

    dest, err := o.Authority.ExchangeForRedirect(ctx, contentID, rawToken)
    if err != nil {
        return Redemption{}, fmt.Errorf("%w: %v", ErrRedirectResolutionFailure, err)
    }

    tokenHash := hashToken(rawToken)
    if o.Purchases != nil {
        if _, err := o.Purchases.Record(ctx, model.Purchase{
            ContentID: contentID,
            TokenHash: tokenHash,
        }); err != nil {
            // Recording is bookkeeping; the user already paid. Log and move on.
            log.Printf("checkout: record purchase for content %s failed: %v", contentID, err)
        }
    }
    if o.Publish != nil {
        o.Publish(ctx, contentID, tokenHash)
    }
    return Redemption{RedirectURL: dest, Delay: RedirectDelay}, nil
}

// submitKey derives the guard key from the intent's identity. Two submits
// of the same intent collide; distinct intents never do.
func submitKey(intent Intent, providerID string) string {
    sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%.2f|%s|%s|%s",
        intent.ContentID, intent.Amount, intent.Currency, intent.Email, providerID)))
    return "checkout:submit:" + hex.EncodeToString(sum[:16])
}

func (o *Orchestrator) acquire(ctx context.Context, key string) bool {
    if o.Guard == nil {
        return true
    }
    ok, err := o.Guard.SetNX(ctx, key, "1", submitGuardTTL).Result()
    if err != nil {
        // A broken guard store must not block purchases.
        log.Printf("checkout: submit guard unavailable: %v", err)
        return true
    }
    return ok
}

func (o *Orchestrator) release(ctx context.Context, key string) {
    if o.Guard == nil {
        return
    }
    if err := o.Guard.Del(ctx, key).Err(); err != nil {
        log.Printf("checkout: submit guard release failed: %v", err)
    }
}

func hashToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}
