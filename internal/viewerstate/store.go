// Package viewerstate is the typed key-value store for viewer-local
// persisted state: the bearer token proving a purchase, the last known-good
// checkout email, and the one-shot owner preview flag. All writes happen at
// well-defined mutation points (successful redemption, checkout submit,
// dashboard preview) and reads at well-defined gate points; the accessors
// here are the only place the underlying keys appear.
package viewerstate

import (
    "context"
    "log"
    "time"

    "github.com/redis/go-redis/v9"
)

// Store wraps Redis with typed accessors. A nil client degrades every
// accessor to a miss/no-op, matching how the rest of the service treats an
// unavailable Redis.
type Store struct {
    rdb *redis.Client
    ttl time.Duration
}

// New builds a Store. A zero TTL defaults to 30 days: viewer state is
// convenience, not authority, so letting it lapse only costs a re-verify.
func New(rdb *redis.Client, ttl time.Duration) *Store {
    if ttl <= 0 {
        ttl = 30 * 24 * time.Hour
    }
    return &Store{rdb: rdb, ttl: ttl}
}

// SetAccessToken remembers the bearer token that unlocked a content bundle
// for a viewer. Last writer wins.
func (s *Store) SetAccessToken(ctx context.Context, viewer, contentID, token string) {
    s.set(ctx, "vs:token:"+viewer+":"+contentID, token)
}

// AccessToken returns the remembered bearer token, if any.
func (s *Store) AccessToken(ctx context.Context, viewer, contentID string) (string, bool) {
    return s.get(ctx, "vs:token:"+viewer+":"+contentID)
}

// SetKnownEmail remembers an email that passed checkout validation, so the
// next checkout can prefill it.
func (s *Store) SetKnownEmail(ctx context.Context, viewer, email string) {
    s.set(ctx, "vs:email:"+viewer, email)
}

// KnownEmail returns the remembered checkout email, if any.
func (s *Store) KnownEmail(ctx context.Context, viewer string) (string, bool) {
    return s.get(ctx, "vs:email:"+viewer)
}

// ArmPreview arms the one-shot preview flag for a creator and one content
// bundle. TakePreview consumes it. The flag is scoped per bundle so a
// request for any other content can never burn it.
func (s *Store) ArmPreview(ctx context.Context, creatorID, contentRef string) {
    s.set(ctx, previewKey(creatorID, contentRef), "1")
}

// TakePreview consumes the preview flag: it reports whether the flag was
// armed for this creator and bundle and clears it atomically, so the flag
// elevates at most one request.
func (s *Store) TakePreview(ctx context.Context, creatorID, contentRef string) bool {
    if s.rdb == nil {
        return false
    }
    v, err := s.rdb.GetDel(ctx, previewKey(creatorID, contentRef)).Result()
    return err == nil && v == "1"
}

func previewKey(creatorID, contentRef string) string {
    return "vs:preview:" + creatorID + ":" + contentRef
}

func (s *Store) set(ctx context.Context, key, val string) {
    if s.rdb == nil {
        return
    }
    if err := s.rdb.Set(ctx, key, val, s.ttl).Err(); err != nil {
        log.Printf("viewerstate: write %s failed: %v", key, err)
    }
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
    if s.rdb == nil {
        return "", false
    }
    v, err := s.rdb.Get(ctx, key).Result()
    if err != nil {
        return "", false
    }
    return v, v != ""
}
