// Package reveal discloses a content bundle's media list progressively once
// the access gate has granted, bounding network use on very large bundles
// while keeping layout stable. Every item entering the revealed window gets
// its natural dimensions measured up front; when measurement fails, a
// deterministic fallback aspect ratio keyed to the item's position keeps the
// layout from collapsing to a zero-size box.
package reveal

import (
    "context"
    "encoding/json"
    "log"
    "sync"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/creator-storefront/internal/model"
)

// Reveal batch sizes per route kind.
const (
    DetailBatch  = 16 // single-item detail pages
    GalleryBatch = 24 // multi-collection gallery pages
)

// Dimensions are natural pixel dimensions, or an aspect ratio when used as
// a fallback preset.
type Dimensions struct {
    Width  int `json:"w"`
    Height int `json:"h"`
}

// fallbackAspects is the fixed rotation of aspect-ratio presets assigned to
// items whose preload failed, indexed by item position. The list is ordered;
// changing it reshuffles every fallback layout.
var fallbackAspects = []Dimensions{
    {Width: 4, Height: 5},
    {Width: 1, Height: 1},
    {Width: 3, Height: 4},
    {Width: 16, Height: 9},
    {Width: 4, Height: 3},
}

// Measurement is the tagged outcome of one preload: either measured real
// dimensions or a fallback preset chosen by position. Both count as loaded;
// an item is probed at most once per mount.
type Measurement struct {
    Measured      bool       `json:"measured"`
    Dims          Dimensions `json:"dims"`
    FallbackIndex int        `json:"fallback_index,omitempty"`
}

// FallbackFor returns the deterministic fallback measurement for an item at
// the given position.
func FallbackFor(position int) Measurement {
    idx := position % len(fallbackAspects)
    if position < 0 {
        idx = 0
    }
    return Measurement{Measured: false, Dims: fallbackAspects[idx], FallbackIndex: idx}
}

// State is the pagination/preload state for one viewer on one content
// bundle. RevealedCount only ever grows, clamped to the media count; the
// measurement cache is keyed by media URL and never invalidated within a
// mount.
type State struct {
    RevealedCount int                    `json:"revealed_count"`
    Dimensions    map[string]Measurement `json:"dimensions"`
}

// NewState initializes a state revealing the first batch.
func NewState(batch, total int) *State {
    s := &State{Dimensions: make(map[string]Measurement)}
    s.Reveal(batch, total)
    return s
}

// Reveal grows the revealed window by one batch, clamped to [0, total].
// The count never decreases, even if total shrank underneath us.
func (s *State) Reveal(batch, total int) {
    if batch < 0 {
        batch = 0
    }
    next := s.RevealedCount + batch
    if next > total {
        next = total
    }
    if next > s.RevealedCount {
        s.RevealedCount = next
    }
}

// Loaded reports whether a preload outcome exists for the URL.
func (s *State) Loaded(url string) bool {
    _, ok := s.Dimensions[url]
    return ok
}

// Item is one revealed media item with its layout measurement.
type Item struct {
    URL         string      `json:"url"`
    Kind        string      `json:"kind"`
    Position    int         `json:"position"`
    Measurement Measurement `json:"measurement"`
}

// Prober measures the natural dimensions of one media item.
type Prober interface {
    Measure(ctx context.Context, item model.MediaItem) (Dimensions, error)
}

// Controller manages reveal state across requests. Store may be nil, in
// which case every request starts from a fresh first batch.
type Controller struct {
    Prober Prober
    Store  *redis.Client
    TTL    time.Duration
}

// NewController builds a Controller. A zero TTL defaults to an hour, which
// approximates a browsing session.
func NewController(prober Prober, store *redis.Client, ttl time.Duration) *Controller {
    if ttl <= 0 {
        ttl = time.Hour
    }
    return &Controller{Prober: prober, Store: store, TTL: ttl}
}

// Window returns the currently revealed slice of items for the viewer,
// measuring any items that entered the window since the last request. When
// loadMore is set the window first grows by one batch.
func (c *Controller) Window(ctx context.Context, viewerKey string, items []model.MediaItem, batch int, loadMore bool) (*State, []Item, error) {
    state := c.load(ctx, viewerKey)
    if state == nil {
        state = NewState(batch, len(items))
    } else if state.RevealedCount < batch {
        // A persisted state from a smaller route (or an older total) still
        // reveals at least one full batch here.
        state.Reveal(batch-state.RevealedCount, len(items))
    }
    if loadMore {
        state.Reveal(batch, len(items))
    }

    window := items
    if state.RevealedCount < len(items) {
        window = items[:state.RevealedCount]
    }
    c.measure(ctx, state, window)
    c.save(ctx, viewerKey, state)

    out := make([]Item, 0, len(window))
    for _, it := range window {
        out = append(out, Item{
            URL:         it.URL,
            Kind:        it.Kind,
            Position:    it.Position,
            Measurement: state.Dimensions[it.URL],
        })
    }
    return state, out, nil
}

// measure probes every not-yet-loaded item in the window. Probes within a
// batch run concurrently; each outcome is written under its own URL key, so
// completion order does not matter.
func (c *Controller) measure(ctx context.Context, state *State, window []model.MediaItem) {
    var (
        wg sync.WaitGroup
        mu sync.Mutex
    )
    for _, it := range window {
        if state.Loaded(it.URL) {
            continue
        }
        wg.Add(1)
        go func(it model.MediaItem) {
            defer wg.Done()
            m := FallbackFor(it.Position)
            if c.Prober != nil {
                if dims, err := c.Prober.Measure(ctx, it); err == nil {
                    m = Measurement{Measured: true, Dims: dims}
                }
            }
            mu.Lock()
            state.Dimensions[it.URL] = m
            mu.Unlock()
        }(it)
    }
    wg.Wait()
}

func stateKey(viewerKey string) string { return "reveal:" + viewerKey }

func (c *Controller) load(ctx context.Context, viewerKey string) *State {
    if c.Store == nil {
        return nil
    }
    raw, err := c.Store.Get(ctx, stateKey(viewerKey)).Bytes()
    if err != nil {
        return nil
    }
    var s State
    if err := json.Unmarshal(raw, &s); err != nil {
        return nil
    }
    if s.Dimensions == nil {
        s.Dimensions = make(map[string]Measurement)
    }
    return &s
}

func (c *Controller) save(ctx context.Context, viewerKey string, s *State) {
    if c.Store == nil {
        return
    }
    raw, err := json.Marshal(s)
    if err != nil {
        return
    }
    if err := c.Store.Set(ctx, stateKey(viewerKey), raw, c.TTL).Err(); err != nil {
        log.Printf("reveal: state write failed: %v", err)
    }
}
