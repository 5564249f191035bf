package main // Entry point package

import (
	"context" // Context for event publication
	"log"     // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/creator-storefront/internal/checkout"    // Checkout orchestration
	"github.com/iliyamo/creator-storefront/internal/config"      // Internal config loader
	"github.com/iliyamo/creator-storefront/internal/database"    // MySQL connection helper
	"github.com/iliyamo/creator-storefront/internal/engagement"  // Engagement counter reconciliation
	"github.com/iliyamo/creator-storefront/internal/gate"        // Access gate
	"github.com/iliyamo/creator-storefront/internal/handler"     // HTTP handlers
	"github.com/iliyamo/creator-storefront/internal/payment"     // Payment directory and sessions
	"github.com/iliyamo/creator-storefront/internal/queue"       // RabbitMQ consumer
	"github.com/iliyamo/creator-storefront/internal/repository"  // DB repositories
	"github.com/iliyamo/creator-storefront/internal/reveal"      // Progressive media disclosure
	"github.com/iliyamo/creator-storefront/internal/router"      // Internal router setup
	"github.com/iliyamo/creator-storefront/internal/secureid"    // Identifier obfuscation
	queue_publisher "github.com/iliyamo/creator-storefront/internal/service" // Event publication
	"github.com/iliyamo/creator-storefront/internal/verify"      // Verification authority client
	"github.com/iliyamo/creator-storefront/internal/viewerstate" // Viewer-local persisted state
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the grant cache, reveal state, viewer state, rate
	// limiting and the provider response cache. A nil client degrades all
	// of them gracefully.
	rdb := config.NewRedisClient()

	mapper, err := secureid.NewMapper(cfg.SecureIDKey)
	if err != nil {
		log.Fatalf("secureid: %v", err)
	}

	// Repositories.
	creators := repository.NewCreatorRepo(db)
	tokens := repository.NewTokenRepo(db)
	contents := repository.NewContentRepo(db)
	purchases := repository.NewPurchaseRepo(db)
	resolver := &repository.ContentResolver{Repo: contents, Mapper: mapper}

	// External collaborators.
	authority := verify.NewClient(cfg.VerifyBaseURL)
	directory := payment.NewDirectory(cfg.ProviderBaseURLs)
	sessions := payment.NewSessions(cfg.SessionBaseURL)

	accessGate := gate.New(resolver, authority, rdb, 0)
	viewers := viewerstate.New(rdb, 0)
	revealCtl := reveal.NewController(reveal.NewHTTPProber(), rdb, 0)

	flow := &checkout.Orchestrator{
		Directory: directory,
		Sessions:  sessions,
		Authority: authority,
		Purchases: purchases,
		Guard:     rdb,
		PublishInitiated: func(ctx context.Context, intent checkout.Intent, providerID string) {
			_ = queue_publisher.PublishPurchaseInitiated(ctx, queue.PurchaseInitiatedEvent{
				ContentID: intent.ContentID,
				Provider:  providerID,
				Amount:    intent.Amount,
				Currency:  intent.Currency,
			})
		},
		Publish: func(ctx context.Context, contentID, tokenHash string) {
			_ = queue_publisher.PublishPurchaseCompleted(ctx, queue.PurchaseCompletedEvent{
				ContentID: contentID,
				TokenHash: tokenHash,
			})
		},
	}

	reconciler := &engagement.Reconciler{
		Svc: engagement.NewClient(cfg.EngagementURL),
		PublishEvent: func(ctx context.Context, action, kind, id string) {
			_ = queue_publisher.PublishEngagement(ctx, action, kind, id)
		},
	}

	// Consume purchase events in the background. The consumer reconnects on
	// its own; a fatal startup error only disables analytics.
	go func() {
		if err := queue.StartPurchaseConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance

	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, creators, tokens), cfg.JWTSecret)
	router.RegisterContent(e,
		handler.NewContentHandler(cfg, accessGate, contents, resolver, revealCtl, viewers),
		rlCfg, rdb, cfg.JWTSecret)
	router.RegisterOwner(e, handler.NewOwnerHandler(cfg, contents, purchases, mapper), cfg.JWTSecret)
	router.RegisterCheckout(e, handler.NewCheckoutHandler(cfg, flow, viewers), cacheCfg, rdb)
	router.RegisterEngagement(e, handler.NewEngagementHandler(reconciler), rlCfg, rdb)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
