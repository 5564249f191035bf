package handler

import (
    "context"  // request-scoped contexts with timeouts
    "errors"   // sentinel matching for repository errors
    "net/http" // HTTP status codes
    "strings"  // input trimming
    "time"     // timeouts

    "github.com/labstack/echo/v4" // Echo framework

    "github.com/iliyamo/creator-storefront/internal/config"     // app configuration
    "github.com/iliyamo/creator-storefront/internal/model"      // content models
    "github.com/iliyamo/creator-storefront/internal/repository" // persistence layer
    "github.com/iliyamo/creator-storefront/internal/secureid"   // alias generation
)

// OwnerHandler serves the authenticated creator dashboard: registering
// content in the storefront catalog and reading purchase stats. The public
// alias is minted here, at authoring time, so every later lookup can go
// through the secure_id column.
type OwnerHandler struct {
    Cfg       config.Config
    Contents  *repository.ContentRepo
    Purchases *repository.PurchaseRepo
    Mapper    *secureid.Mapper
}

func NewOwnerHandler(cfg config.Config, contents *repository.ContentRepo, purchases *repository.PurchaseRepo, mapper *secureid.Mapper) *OwnerHandler {
    return &OwnerHandler{Cfg: cfg, Contents: contents, Purchases: purchases, Mapper: mapper}
}

// createContentReq is the authoring payload. ID is the internal identifier
// assigned by the backend catalog (or a legacy numeric id); it never leaves
// this surface.
type createContentReq struct {
    ID         string `json:"id"`
    Title      string `json:"title"`
    Source     string `json:"source"`
    Gated      bool   `json:"gated"`
    PriceCents uint32 `json:"price_cents"`
    Currency   string `json:"currency"`
}

// CreateContent registers a content bundle and mints its public alias.
// POST /v1/me/content
func (h *OwnerHandler) CreateContent(c echo.Context) error {
    creatorID, err := getCreatorID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var req createContentReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    req.ID = strings.TrimSpace(req.ID)
    req.Title = strings.TrimSpace(req.Title)

    if !secureid.IsValidContentID(req.ID) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid content id"})
    }
    if req.Title == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
    }
    source := strings.ToUpper(strings.TrimSpace(req.Source))
    if source != model.SourceLocal && source != model.SourceBackend {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "source must be LOCAL or BACKEND"})
    }

    alias, err := h.Mapper.Alias(req.ID)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid content id"})
    }

    ct := model.Content{
        ID:         req.ID,
        SecureID:   alias,
        CreatorID:  creatorID,
        Title:      req.Title,
        Source:     source,
        Gated:      req.Gated,
        PriceCents: req.PriceCents,
        Currency:   strings.ToUpper(strings.TrimSpace(req.Currency)),
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Contents.Create(ctx, ct); err != nil {
        if errors.Is(err, repository.ErrContentExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "content already registered"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to register content"})
    }

    return c.JSON(http.StatusCreated, echo.Map{
        "content": contentPart{
            SecureID:   ct.SecureID,
            Title:      ct.Title,
            Gated:      ct.Gated,
            PriceCents: ct.PriceCents,
            Currency:   ct.Currency,
            MediaCount: ct.MediaCount,
        },
    })
}

// addMediaReq appends one asset to an owned bundle.
type addMediaReq struct {
    URL  string `json:"url"`
    Kind string `json:"kind"`
}

// AddMedia appends a media item to content owned by the caller.
// POST /v1/me/content/:sid/media
func (h *OwnerHandler) AddMedia(c echo.Context) error {
    creatorID, err := getCreatorID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ct, status, errResp := h.ownedContent(ctx, c.Param("sid"), creatorID)
    if errResp != nil {
        return c.JSON(status, errResp)
    }

    var req addMediaReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    req.URL = strings.TrimSpace(req.URL)
    kind := strings.ToUpper(strings.TrimSpace(req.Kind))
    if req.URL == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "url is required"})
    }
    if kind != model.MediaImage && kind != model.MediaVideo {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "kind must be IMAGE or VIDEO"})
    }

    item := model.MediaItem{
        ContentID: ct.ID,
        URL:       req.URL,
        Kind:      kind,
        Position:  ct.MediaCount,
    }
    if err := h.Contents.AddMedia(ctx, item); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add media"})
    }

    return c.JSON(http.StatusCreated, echo.Map{"media_count": ct.MediaCount + 1})
}

// PurchaseStats reports how many purchases were redeemed for an owned bundle.
// GET /v1/me/content/:sid/purchases
func (h *OwnerHandler) PurchaseStats(c echo.Context) error {
    creatorID, err := getCreatorID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ct, status, errResp := h.ownedContent(ctx, c.Param("sid"), creatorID)
    if errResp != nil {
        return c.JSON(status, errResp)
    }

    count, err := h.Purchases.CountByContent(ctx, ct.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load purchase stats"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "secure_id": ct.SecureID,
        "purchases": count,
    })
}

// ownedContent resolves an alias and enforces that the caller owns the
// bundle. Ownership failures look identical to missing content so the
// dashboard does not leak other creators' aliases.
func (h *OwnerHandler) ownedContent(ctx context.Context, sid string, creatorID uint64) (model.Content, int, echo.Map) {
    if !secureid.IsValidSecureID(sid) {
        return model.Content{}, http.StatusNotFound, echo.Map{"error": "content not found"}
    }
    ct, err := h.Contents.GetBySecureID(ctx, sid)
    if err != nil {
        if errors.Is(err, repository.ErrContentNotFound) {
            return model.Content{}, http.StatusNotFound, echo.Map{"error": "content not found"}
        }
        return model.Content{}, http.StatusInternalServerError, echo.Map{"error": "failed to load content"}
    }
    if ct.CreatorID != creatorID {
        return model.Content{}, http.StatusNotFound, echo.Map{"error": "content not found"}
    }
    return ct, 0, nil
}
