package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/creator-storefront/internal/config"     // cache and rate-limit configuration
	"github.com/iliyamo/creator-storefront/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/creator-storefront/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware. Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Token lifecycle endpoints need no existing session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh token in the body, or a bearer to revoke
	// every session of the caller.
	g.POST("/logout", a.Logout)

	// Protected group: everything here runs JWTAuth first. Creators are the
	// only authenticated role in the storefront.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(handler.RoleCreator))
	auth.GET("/me", a.Me)

	// Same handler outside the protected group, for clients that only hold
	// a refresh token.
	e.POST("/v1/logout", a.Logout)
}

// RegisterContent registers the public content surface: blurred preview,
// gated detail and the progressive media window. These routes carry no
// required authentication; the access gate decides per request. Read-side
// rate limiting applies to all of them.
func RegisterContent(e *echo.Echo, ch *handler.ContentHandler, rlCfg config.RateLimitConfig, rdb *redis.Client, jwtSecret string) {
	limited := e.Group("/v1/content", middleware.NewTokenBucket(rlCfg, rdb))

	// Blurred teaser card; never gated, never leaks media URLs.
	limited.GET("/:sid/preview", ch.Preview)
	// Gated detail page with the first revealed media batch.
	limited.GET("/:ref", ch.Detail)
	// Current media window; ?view=gallery switches to the larger batch.
	limited.GET("/:ref/media", ch.Media)
	// Grows the revealed window by one batch.
	limited.POST("/:ref/media/more", ch.MediaMore)

	// Arming the one-shot preview flag requires a creator session.
	arm := e.Group("/v1/me")
	arm.Use(middleware.JWTAuth(jwtSecret))
	arm.Use(middleware.RequireRole(handler.RoleCreator))
	arm.POST("/preview", ch.ArmPreview)
}

// RegisterOwner registers the creator dashboard: content authoring and
// purchase stats. Everything here requires a creator session.
func RegisterOwner(e *echo.Echo, oh *handler.OwnerHandler, jwtSecret string) {
	g := e.Group("/v1/me/content")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(handler.RoleCreator))
	g.POST("", oh.CreateContent)
	g.POST("/:sid/media", oh.AddMedia)
	g.GET("/:sid/purchases", oh.PurchaseStats)
}

// RegisterCheckout registers the purchase flow. The provider listing is
// response-cached per viewer: the rails for a given amount and currency
// change rarely and every locked page fetches them, but the response also
// carries the viewer's own email prefill and must never be shared.
func RegisterCheckout(e *echo.Echo, ch *handler.CheckoutHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	e.GET("/v1/checkout/providers", ch.Providers, middleware.NewRedisCache(cacheCfg, rdb))
	e.POST("/v1/checkout/session", ch.Submit)
	e.GET("/v1/checkout/redeem", ch.Redeem)
}

// RegisterEngagement registers the counter endpoints. All public: visitors
// like, share and view without an account.
func RegisterEngagement(e *echo.Echo, eh *handler.EngagementHandler, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/engagement", middleware.NewTokenBucket(rlCfg, rdb))
	g.GET("/:kind/:id", eh.Counters)
	g.POST("/:kind/:id/like", eh.Like)
	g.POST("/:kind/:id/share", eh.Share)
	g.POST("/:kind/:id/view", eh.View)
}
