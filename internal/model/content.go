package model

import "time"

// Content source values. Legacy/local content predates the backend catalog
// and is served ungated; backend content requires a purchase.
const (
    SourceLocal   = "LOCAL"
    SourceBackend = "BACKEND"
)

// Content represents a purchasable content bundle as stored in the
// `contents` table. The internal identifier is either a legacy short
// numeric form or a 24-hex backend form; it never appears in a public URL.
// SecureID is the 11-digit obfuscated alias written at authoring time.
//
// Fields:
//  ID         – internal content identifier (contents.id).
//  SecureID   – public-facing obfuscated alias (contents.secure_id).
//  CreatorID  – owner of the content (contents.creator_id).
//  Title      – display title.
//  Source     – LOCAL or BACKEND; LOCAL content is ungated.
//  Gated      – whether access requires a verified purchase.
//  PriceCents – unlock price in cents.
//  Currency   – ISO currency code for the price.
//  MediaCount – number of media items in the bundle.
//  CreatedAt  – timestamp of creation.
type Content struct {
    ID         string    // contents.id
    SecureID   string    // contents.secure_id
    CreatorID  uint64    // contents.creator_id
    Title      string    // contents.title
    Source     string    // contents.source
    Gated      bool      // contents.gated
    PriceCents uint32    // contents.price_cents
    Currency   string    // contents.currency
    MediaCount int       // contents.media_count
    CreatedAt  time.Time // contents.created_at
}

// Media item kinds.
const (
    MediaImage = "IMAGE"
    MediaVideo = "VIDEO"
)

// MediaItem is one asset inside a content bundle, stored in `media_items`.
// Position is the stable ordering used both for display and for the
// deterministic fallback aspect-ratio rotation.
type MediaItem struct {
    ID        uint64 // media_items.id
    ContentID string // media_items.content_id
    URL       string // media_items.url
    Kind      string // media_items.kind (IMAGE | VIDEO)
    Position  int    // media_items.position, 0-based
}
