package handler

import (
    "context"  // request-scoped contexts with timeouts
    "net/http" // HTTP status codes
    "strconv"  // creator id formatting for preview flag keys
    "time"     // DB call timeouts

    "github.com/labstack/echo/v4" // Echo framework

    "github.com/iliyamo/creator-storefront/internal/config"      // app configuration
    "github.com/iliyamo/creator-storefront/internal/gate"        // access gate
    "github.com/iliyamo/creator-storefront/internal/model"       // domain models
    "github.com/iliyamo/creator-storefront/internal/reveal"      // progressive media disclosure
    "github.com/iliyamo/creator-storefront/internal/secureid"    // identifier shape checks
    "github.com/iliyamo/creator-storefront/internal/viewerstate" // viewer-local persisted state
)

// MediaLister returns the ordered media list of a content bundle.
// *repository.ContentRepo satisfies it.
type MediaLister interface {
	MediaByContent(ctx context.Context, contentID string) ([]model.MediaItem, error)
}

// ContentHandler serves the public content surface: blurred preview, gated
// detail and the progressive media window. Every route that can show real
// media URLs goes through the access gate first.
type ContentHandler struct {
	Cfg      config.Config
	Gate     *gate.Gate
	Library  MediaLister
	Resolver gate.ContentResolver
	Reveal   *reveal.Controller
	Viewers  *viewerstate.Store
}

func NewContentHandler(cfg config.Config, g *gate.Gate, media MediaLister, res gate.ContentResolver, rc *reveal.Controller, vs *viewerstate.Store) *ContentHandler {
	return &ContentHandler{Cfg: cfg, Gate: g, Library: media, Resolver: res, Reveal: rc, Viewers: vs}
}

// contentPart is the content metadata shared by every content response.
// The internal identifier never appears here; routes and payloads use the
// secure alias exclusively.
type contentPart struct {
	SecureID   string `json:"secure_id"`
	Title      string `json:"title"`
	Gated      bool   `json:"gated"`
	PriceCents uint32 `json:"price_cents"`
	Currency   string `json:"currency"`
	MediaCount int    `json:"media_count"`
}

type ownerPart struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

func toContentPart(ct model.Content) contentPart {
	return contentPart{
		SecureID:   ct.SecureID,
		Title:      ct.Title,
		Gated:      ct.Gated,
		PriceCents: ct.PriceCents,
		Currency:   ct.Currency,
		MediaCount: ct.MediaCount,
	}
}

func toOwnerPart(p *model.CreatorProfile) *ownerPart {
	if p == nil {
		return nil
	}
	return &ownerPart{Username: p.Username, DisplayName: p.DisplayName, AvatarURL: p.AvatarURL}
}

// Preview serves the blurred teaser card for a content bundle. It never
// evaluates the gate and never includes media URLs: the only data exposed is
// what a locked card legitimately shows (title, price, item count).
func (h *ContentHandler) Preview(c echo.Context) error {
	sid := c.Param("sid")
	if !secureid.IsValidSecureID(sid) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "content not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ct, err := h.Resolver.Resolve(ctx, sid)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "content not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"content": toContentPart(ct),
		"blurred": true,
	})
}

type armPreviewReq struct {
	ContentID string `json:"content_id"`
}

// ArmPreview arms the one-shot preview flag for the authenticated creator
// and one content bundle. The dashboard calls this right before opening
// that bundle's production page; the next gate evaluation by the same
// creator on the same bundle consumes the flag.
func (h *ContentHandler) ArmPreview(c echo.Context) error {
	if _, err := getCreatorID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req armPreviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !secureid.IsValidSecureID(req.ContentID) && !secureid.IsValidContentID(req.ContentID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid content id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	h.Viewers.ArmPreview(ctx, viewerKey(c), req.ContentID)
	return c.NoContent(http.StatusNoContent)
}

// gateRequest assembles the access gate request for the current HTTP
// request: the route reference, the bearer proof (explicit ?access= wins
// over the remembered viewer token) and the optional owner session. The
// one-shot preview flag from the dashboard counts the same as ?preview=1,
// but it is handed to the gate as a deferred consume so only the owner
// bypass itself can burn it.
func (h *ContentHandler) gateRequest(ctx context.Context, c echo.Context, ref string) gate.Request {
	req := gate.Request{Ref: ref, RawToken: c.QueryParam("access")}

	if creatorID, ok := optionalCreatorID(c, h.Cfg.JWTSecret); ok {
		owner := &gate.OwnerSession{CreatorID: creatorID, Preview: c.QueryParam("preview") == "1"}
		if h.Viewers != nil {
			// ArmPreview runs on the authenticated dashboard, so the flag
			// is keyed by creator id rather than by the request's viewer key.
			key := "creator:" + strconv.FormatUint(creatorID, 10)
			owner.ConsumePreview = func(ctx context.Context) bool {
				return h.Viewers.TakePreview(ctx, key, ref)
			}
		}
		req.Owner = owner
	}

	if req.RawToken == "" && h.Viewers != nil {
		// Remembered token from an earlier redemption. It still goes
		// through the full verification pipeline; remembering is a
		// convenience, never a grant.
		if tok, ok := h.Viewers.AccessToken(ctx, viewerKey(c), ref); ok {
			req.RawToken = tok
		}
	}
	return req
}

// deniedPayload builds the locked detail response. The content metadata is
// included whenever the reference resolved so the page can render the
// checkout call-to-action; nothing about the media list leaks.
func deniedPayload(res gate.Result) echo.Map {
	body := echo.Map{
		"state":  res.Decision.String(),
		"locked": true,
	}
	if res.Content.SecureID != "" {
		body["content"] = toContentPart(res.Content)
	}
	return body
}

// Detail serves the content detail page: gate evaluation plus, on a grant,
// the first revealed media batch.
func (h *ContentHandler) Detail(c echo.Context) error {
	ref := c.Param("ref")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	res := h.Gate.Evaluate(ctx, h.gateRequest(ctx, c, ref))
	if res.Decision != gate.Granted {
		return c.JSON(http.StatusOK, deniedPayload(res))
	}

	items, err := h.mediaWindow(ctx, c, res.Content, reveal.DetailBatch, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load media failed"})
	}

	body := echo.Map{
		"state":   res.Decision.String(),
		"locked":  false,
		"content": toContentPart(res.Content),
		"owner":   toOwnerPart(res.Owner),
		"media":   items,
	}
	if res.Reason == gate.ReasonOwnerPreview {
		// The one-shot flag is spent; the page keeps previewing by adding
		// ?preview=1 to its follow-up media calls.
		body["preview"] = true
	}
	return c.JSON(http.StatusOK, body)
}

// Media serves the currently revealed media window without growing it.
// ?view=gallery switches to the larger gallery batch size.
func (h *ContentHandler) Media(c echo.Context) error {
	return h.media(c, false)
}

// MediaMore grows the revealed window by one batch and returns it.
func (h *ContentHandler) MediaMore(c echo.Context) error {
	return h.media(c, true)
}

func (h *ContentHandler) media(c echo.Context, loadMore bool) error {
	ref := c.Param("ref")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	res := h.Gate.Evaluate(ctx, h.gateRequest(ctx, c, ref))
	if res.Decision != gate.Granted {
		return c.JSON(http.StatusForbidden, deniedPayload(res))
	}

	batch := reveal.DetailBatch
	if c.QueryParam("view") == "gallery" {
		batch = reveal.GalleryBatch
	}

	items, err := h.mediaWindow(ctx, c, res.Content, batch, loadMore)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load media failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"state":    res.Decision.String(),
		"content":  toContentPart(res.Content),
		"media":    items,
		"revealed": len(items),
		"total":    res.Content.MediaCount,
		"pager":    reveal.PagerFor(len(items), res.Content.MediaCount, batch),
	})
}

// mediaWindow loads the media list and runs it through the reveal
// controller. Reveal state is keyed per viewer and per bundle so browsing
// two bundles never shares a window.
func (h *ContentHandler) mediaWindow(ctx context.Context, c echo.Context, ct model.Content, batch int, loadMore bool) ([]reveal.Item, error) {
	media, err := h.Library.MediaByContent(ctx, ct.ID)
	if err != nil {
		return nil, err
	}
	key := viewerKey(c) + ":" + ct.SecureID
	_, items, err := h.Reveal.Window(ctx, key, media, batch, loadMore)
	return items, err
}
