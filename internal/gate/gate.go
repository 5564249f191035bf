// Package gate decides whether a caller may see the unobfuscated media list
// of a content bundle. It is the single choke point every content route goes
// through: blurred preview, full detail and gallery all ask the gate first.
//
// The decision pipeline is strictly ordered. Shape validation happens before
// any lookup, local facts (ungated content, owner preview) before any
// network call, and at most one verification authority call is made per
// evaluation. There is no partial-trust state: anything that is not a
// positive grant is a denial.
package gate

import (
    "context"
    "log"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/creator-storefront/internal/model"
    "github.com/iliyamo/creator-storefront/internal/secureid"
)

// Decision is the gate state machine outcome.
type Decision int

const (
    Init Decision = iota // not yet evaluated
    Verifying            // waiting on the verification authority
    Granted              // caller may see the real media list
    Denied               // caller is routed to checkout
)

func (d Decision) String() string {
    switch d {
    case Verifying:
        return "VERIFYING"
    case Granted:
        return "GRANTED"
    case Denied:
        return "DENIED"
    default:
        return "INIT"
    }
}

// Reason explains a denial (or the bypass that granted access). It is safe
// to expose: it never distinguishes "bad token" from "no such content" in
// user-facing copy, handlers map reasons to generic states.
type Reason string

const (
    ReasonNone               Reason = ""
    ReasonInvalidIdentifier  Reason = "invalid_identifier"
    ReasonNoProof            Reason = "no_proof"
    ReasonMalformedToken     Reason = "malformed_token"
    ReasonVerificationFailed Reason = "verification_failed"
    ReasonUngated            Reason = "ungated"
    ReasonOwnerPreview       Reason = "owner_preview"
    ReasonVerified           Reason = "verified"
)

// OwnerSession carries the authenticated creator making the request, if any.
// Preview is the explicit preview flag: ownership alone never elevates
// access on a production route. ConsumePreview, when set, is the one-shot
// dashboard flag; the gate calls it only after ownership of the resolved
// content is established, so the flag is never burned by a request that
// could not have used it.
type OwnerSession struct {
    CreatorID      uint64
    Preview        bool
    ConsumePreview func(ctx context.Context) bool
}

func (o *OwnerSession) previewing(ctx context.Context) bool {
    if o.Preview {
        return true
    }
    return o.ConsumePreview != nil && o.ConsumePreview(ctx)
}

// Request is one content access request.
type Request struct {
    Ref      string        // secure alias, or raw identifier on owner/preview flows
    RawToken string        // optional bearer proof from the query string
    Owner    *OwnerSession // optional authenticated creator session
}

// Result is the gate's answer. Content is populated whenever the reference
// resolved; Owner is the best-effort display identity, only set on grants.
type Result struct {
    Decision Decision
    Reason   Reason
    Content  model.Content
    Owner    *model.CreatorProfile
}

// Verifier is the verification authority surface the gate needs.
type Verifier interface {
    Verify(ctx context.Context, contentID, token string) (bool, error)
    ResolveOwner(ctx context.Context, ref string) (model.CreatorProfile, error)
}

// ContentResolver resolves a route reference into a content row.
type ContentResolver interface {
    Resolve(ctx context.Context, ref string) (model.Content, error)
}

// Gate evaluates access requests. Cache may be nil; positive verification
// results are then simply not reused across requests.
type Gate struct {
    Contents ContentResolver
    Verifier Verifier
    Cache    *redis.Client
    CacheTTL time.Duration
}

// New constructs a Gate. A zero CacheTTL defaults to 15 minutes.
func New(contents ContentResolver, verifier Verifier, cache *redis.Client, ttl time.Duration) *Gate {
    if ttl <= 0 {
        ttl = 15 * time.Minute
    }
    return &Gate{Contents: contents, Verifier: verifier, Cache: cache, CacheTTL: ttl}
}

// Evaluate runs the decision pipeline for one request. The rules, in
// priority order:
//
//  1. a reference that fails shape validation is denied with no lookup
//  2. ungated (legacy/local) content is granted with no authority call
//  3. the owner bypass grants only with the preview flag and verified
//     ownership, with no authority call; the one-shot dashboard flag is
//     consumed only once ownership has matched
//  4. no token means denial
//  5. a token that fails shape validation is denied with no authority call
//  6. a well-formed token goes to the authority exactly once; anything but
//     a positive answer, including transport failure, is a denial
func (g *Gate) Evaluate(ctx context.Context, req Request) Result {
    if !secureid.IsValidSecureID(req.Ref) && !secureid.IsValidContentID(req.Ref) {
        return Result{Decision: Denied, Reason: ReasonInvalidIdentifier}
    }

    content, err := g.Contents.Resolve(ctx, req.Ref)
    if err != nil {
        return Result{Decision: Denied, Reason: ReasonInvalidIdentifier}
    }

    if !content.Gated {
        return g.granted(ctx, content, ReasonUngated)
    }

    if req.Owner != nil && req.Owner.CreatorID == content.CreatorID && req.Owner.previewing(ctx) {
        return g.granted(ctx, content, ReasonOwnerPreview)
    }

    if req.RawToken == "" {
        return Result{Decision: Denied, Reason: ReasonNoProof, Content: content}
    }
    if !secureid.IsValidAccessToken(req.RawToken) {
        return Result{Decision: Denied, Reason: ReasonMalformedToken, Content: content}
    }

    if g.cachedGrant(ctx, content.ID, req.RawToken) {
        return g.granted(ctx, content, ReasonVerified)
    }

    ok, err := g.Verifier.Verify(ctx, content.ID, req.RawToken)
    if err != nil || !ok {
        if err != nil {
            log.Printf("gate: verification call failed for content %s: %v", content.ID, err)
        }
        return Result{Decision: Denied, Reason: ReasonVerificationFailed, Content: content}
    }

    g.storeGrant(ctx, content.ID, req.RawToken)
    return g.granted(ctx, content, ReasonVerified)
}

// granted builds the positive result and resolves the owner display
// identity. The secondary lookup is best-effort: its failure degrades
// attribution, never the grant.
func (g *Gate) granted(ctx context.Context, content model.Content, reason Reason) Result {
    res := Result{Decision: Granted, Reason: reason, Content: content}
    profile, err := g.Verifier.ResolveOwner(ctx, content.ID)
    if err != nil {
        log.Printf("gate: owner lookup failed for content %s: %v", content.ID, err)
        return res
    }
    res.Owner = &profile
    return res
}

func grantKey(contentID, token string) string {
    return "gate:verified:" + contentID + ":" + token
}

func (g *Gate) cachedGrant(ctx context.Context, contentID, token string) bool {
    if g.Cache == nil {
        return false
    }
    v, err := g.Cache.Get(ctx, grantKey(contentID, token)).Result()
    return err == nil && v == "1"
}

func (g *Gate) storeGrant(ctx context.Context, contentID, token string) {
    if g.Cache == nil {
        return
    }
    // Only positive results are cached; denials must always re-consult the
    // authority in case the purchase completes later.
    if err := g.Cache.Set(ctx, grantKey(contentID, token), "1", g.CacheTTL).Err(); err != nil {
        log.Printf("gate: grant cache write failed: %v", err)
    }
}
