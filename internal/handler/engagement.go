package handler

import (
    "context"  // request-scoped contexts with timeouts
    "net/http" // HTTP status codes
    "time"     // timeouts

    "github.com/labstack/echo/v4" // Echo framework

    "github.com/iliyamo/creator-storefront/internal/engagement" // counter reconciliation
    "github.com/iliyamo/creator-storefront/internal/model"      // domain models
)

// EngagementHandler exposes like/share/view counters. Mutations carry the
// viewer's current local counters in the body; the response tells the page
// whether the authoritative counters arrived or the optimistic update must
// be rolled back to the echoed locals.
type EngagementHandler struct {
	Flow *engagement.Reconciler
}

func NewEngagementHandler(flow *engagement.Reconciler) *EngagementHandler {
	return &EngagementHandler{Flow: flow}
}

// entityKinds whitelists the addressable counter namespaces.
var entityKinds = map[string]bool{
	"content": true,
	"profile": true,
}

type engagementReq struct {
	Liked bool                     `json:"liked"`
	Local model.EngagementCounters `json:"local"`
}

func engagementParams(c echo.Context) (kind, id string, ok bool) {
	kind, id = c.Param("kind"), c.Param("id")
	return kind, id, entityKinds[kind] && id != ""
}

// Counters returns the authoritative counters for an entity.
func (h *EngagementHandler) Counters(c echo.Context) error {
	kind, id, ok := engagementParams(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown entity"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	counters, err := h.Flow.Fetch(ctx, kind, id)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "engagement service unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"counters": counters})
}

// Like toggles the viewer's like. The response always carries the counters
// the page should display: authoritative on success, the optimistic toggle
// applied to the caller's locals when the reconcile failed (the action
// stays visible and reconciled=false tells the page to retry).
func (h *EngagementHandler) Like(c echo.Context) error {
	return h.mutate(c,
		func(ctx context.Context, kind, id string, req engagementReq) (model.EngagementCounters, error) {
			return h.Flow.Like(ctx, kind, id, req.Local, req.Liked)
		},
		func(req engagementReq) model.EngagementCounters {
			return engagement.Optimistic(req.Local, req.Liked)
		})
}

// Share registers a share.
func (h *EngagementHandler) Share(c echo.Context) error {
	return h.mutate(c,
		func(ctx context.Context, kind, id string, req engagementReq) (model.EngagementCounters, error) {
			return h.Flow.Share(ctx, kind, id, req.Local)
		},
		func(req engagementReq) model.EngagementCounters { return req.Local })
}

// View registers a view.
func (h *EngagementHandler) View(c echo.Context) error {
	return h.mutate(c,
		func(ctx context.Context, kind, id string, req engagementReq) (model.EngagementCounters, error) {
			return h.Flow.View(ctx, kind, id, req.Local)
		},
		func(req engagementReq) model.EngagementCounters { return req.Local })
}

func (h *EngagementHandler) mutate(c echo.Context, apply func(context.Context, string, string, engagementReq) (model.EngagementCounters, error), fallback func(engagementReq) model.EngagementCounters) error {
	kind, id, ok := engagementParams(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown entity"})
	}
	var req engagementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	counters, err := apply(ctx, kind, id, req)
	if err != nil {
		// Reconcile failed: answer with the best local picture so the
		// page still shows something coherent while it retries.
		return c.JSON(http.StatusOK, echo.Map{"counters": fallback(req), "reconciled": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"counters": counters, "reconciled": true})
}
