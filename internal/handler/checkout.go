package handler

import (
    "context"  // request-scoped contexts with timeouts
    "errors"   // errors.Is for checkout error taxonomy mapping
    "net/http" // HTTP status codes
    "strconv"  // amount parsing from query parameters
    "strings"  // input trimming
    "time"     // timeouts

    "github.com/labstack/echo/v4" // Echo framework

    "github.com/iliyamo/creator-storefront/internal/checkout"    // checkout orchestration
    "github.com/iliyamo/creator-storefront/internal/config"      // app configuration
    "github.com/iliyamo/creator-storefront/internal/viewerstate" // viewer-local persisted state
)

// CheckoutHandler serves the purchase flow: provider listing, session
// submission and the post-payment redeem leg.
type CheckoutHandler struct {
	Cfg     config.Config
	Flow    *checkout.Orchestrator
	Viewers *viewerstate.Store
}

func NewCheckoutHandler(cfg config.Config, flow *checkout.Orchestrator, vs *viewerstate.Store) *CheckoutHandler {
	return &CheckoutHandler{Cfg: cfg, Flow: flow, Viewers: vs}
}

// intentFromQuery parses the purchase intent declared by the page. A
// missing or unparsable amount becomes zero and fails validation inside the
// orchestrator, so the error taxonomy stays in one place.
func intentFromQuery(c echo.Context) checkout.Intent {
	amount, _ := strconv.ParseFloat(c.QueryParam("amount"), 64)
	return checkout.Intent{
		ContentID: strings.TrimSpace(c.QueryParam("content_id")),
		Amount:    amount,
		Currency:  strings.ToUpper(strings.TrimSpace(c.QueryParam("currency"))),
	}
}

// Providers lists the payment rails available for the declared intent.
// GET /v1/checkout/providers?content_id=&amount=&currency=
func (h *CheckoutHandler) Providers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	providers, err := h.Flow.Providers(ctx, intentFromQuery(c))
	if err != nil {
		if errors.Is(err, checkout.ErrSessionExpired) {
			// Terminal for this attempt; the page restarts checkout.
			return c.JSON(http.StatusGone, echo.Map{"error": "session expired", "state": "expired"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "payment providers unavailable"})
	}

	resp := echo.Map{"providers": providers}
	if email, ok := h.Viewers.KnownEmail(ctx, viewerKey(c)); ok {
		resp["known_email"] = email
	}
	return c.JSON(http.StatusOK, resp)
}

type submitReq struct {
	ContentID string  `json:"content_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Provider  string  `json:"provider"`
	Email     string  `json:"email"`
}

// Submit promotes an intent into a payment session and returns the external
// payment link. POST /v1/checkout/session
func (h *CheckoutHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	intent := checkout.Intent{
		ContentID: strings.TrimSpace(req.ContentID),
		Amount:    req.Amount,
		Currency:  strings.ToUpper(strings.TrimSpace(req.Currency)),
		Email:     strings.TrimSpace(req.Email),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	link, err := h.Flow.Submit(ctx, intent, strings.TrimSpace(req.Provider))
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrSubmitInFlight):
			return c.JSON(http.StatusConflict, echo.Map{"error": "submission already in flight"})
		case errors.Is(err, checkout.ErrSessionExpired):
			return c.JSON(http.StatusGone, echo.Map{"error": "session expired", "state": "expired"})
		default:
			// Session creation failed; terminal, no automatic retry.
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment session failed"})
		}
	}

	// The email passed validation; remember it so the next checkout
	// prefills it.
	h.Viewers.SetKnownEmail(ctx, viewerKey(c), intent.Email)

	return c.JSON(http.StatusCreated, echo.Map{"payment_link": link})
}

// Redeem handles the return leg from the payment processor.
// GET /v1/checkout/redeem?content_id=&token=
//
// On success the response carries the destination URL plus the fixed delay
// the page holds the success animation for before navigating. On failure the
// page gets an explicit failure state and the configured safe URL as a
// manual way back; the destination is never guessed.
func (h *CheckoutHandler) Redeem(c echo.Context) error {
	contentID := strings.TrimSpace(c.QueryParam("content_id"))
	rawToken := strings.TrimSpace(c.QueryParam("token"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	red, err := h.Flow.Redeem(ctx, contentID, rawToken)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, checkout.ErrInvalidIdentifier) || errors.Is(err, checkout.ErrMalformedToken) {
			status = http.StatusBadRequest
		}
		return c.JSON(status, echo.Map{
			"state":    "failed",
			"safe_url": h.Cfg.SafeRedirectURL,
		})
	}

	// The raw token is the viewer's proof for future gate checks.
	h.Viewers.SetAccessToken(ctx, viewerKey(c), contentID, rawToken)

	return c.JSON(http.StatusOK, echo.Map{
		"state":        "succeeded",
		"redirect_url": red.RedirectURL,
		"delay_ms":     red.Delay.Milliseconds(),
	})
}
