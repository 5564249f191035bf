package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/creator-storefront/internal/checkout"
	"github.com/iliyamo/creator-storefront/internal/config"
	"github.com/iliyamo/creator-storefront/internal/model"
	"github.com/iliyamo/creator-storefront/internal/payment"
	"github.com/iliyamo/creator-storefront/internal/viewerstate"
)

type fakeDirectory struct {
	providers []model.PaymentProvider
	err       error
	calls     int
}

func (f *fakeDirectory) List(_ context.Context, _ float64, _ string) ([]model.PaymentProvider, error) {
	f.calls++
	return f.providers, f.err
}

type fakeSessions struct {
	link  string
	err   error
	calls int
}

func (f *fakeSessions) Create(_ context.Context, _ payment.SessionRequest) (string, error) {
	f.calls++
	return f.link, f.err
}

type fakeExchanger struct {
	dest string
	err  error
}

func (f *fakeExchanger) ExchangeForRedirect(_ context.Context, _, _ string) (string, error) {
	return f.dest, f.err
}

func newCheckoutHandler(dir *fakeDirectory, sess *fakeSessions, ex *fakeExchanger) *CheckoutHandler {
	flow := &checkout.Orchestrator{Directory: dir, Sessions: sess, Authority: ex}
	return NewCheckoutHandler(config.Config{SafeRedirectURL: "/store"}, flow, viewerstate.New(nil, 0))
}

func checkoutRequest(t *testing.T, h echo.HandlerFunc, method, target, jsonBody string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if jsonBody != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(jsonBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	assert.NoError(t, h(e.NewContext(req, rec)))

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestCheckoutProviders_ValidIntent(t *testing.T) {
	dir := &fakeDirectory{providers: []model.PaymentProvider{{ID: "p1", Name: "CardCo"}}}
	h := newCheckoutHandler(dir, &fakeSessions{}, &fakeExchanger{})

	rec, body := checkoutRequest(t, h.Providers, http.MethodGet,
		"/v1/checkout/providers?content_id=all&amount=49.99&currency=USD", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["providers"], 1)
	assert.Equal(t, 1, dir.calls)
}

func TestCheckoutProviders_InvalidIntentIsTerminal(t *testing.T) {
	dir := &fakeDirectory{}
	h := newCheckoutHandler(dir, &fakeSessions{}, &fakeExchanger{})

	// Amount above the cap: expired-session state, no directory traffic.
	rec, body := checkoutRequest(t, h.Providers, http.MethodGet,
		"/v1/checkout/providers?content_id=all&amount=10001&currency=USD", "")

	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "expired", body["state"])
	assert.Equal(t, 0, dir.calls)
}

func TestCheckoutProviders_DirectoryDown(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("all endpoints failed")}
	h := newCheckoutHandler(dir, &fakeSessions{}, &fakeExchanger{})

	rec, _ := checkoutRequest(t, h.Providers, http.MethodGet,
		"/v1/checkout/providers?content_id=all&amount=10&currency=USD", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCheckoutSubmit_Success(t *testing.T) {
	sess := &fakeSessions{link: "https://pay.example/s/abc"}
	h := newCheckoutHandler(&fakeDirectory{}, sess, &fakeExchanger{})

	rec, body := checkoutRequest(t, h.Submit, http.MethodPost, "/v1/checkout/session",
		`{"content_id":"all","amount":49.99,"currency":"usd","provider":"p1","email":"b@example.com"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "https://pay.example/s/abc", body["payment_link"])
	assert.Equal(t, 1, sess.calls)
}

func TestCheckoutSubmit_BadEmailNeverCreatesSession(t *testing.T) {
	sess := &fakeSessions{link: "https://pay.example/s/abc"}
	h := newCheckoutHandler(&fakeDirectory{}, sess, &fakeExchanger{})

	rec, _ := checkoutRequest(t, h.Submit, http.MethodPost, "/v1/checkout/session",
		`{"content_id":"all","amount":49.99,"currency":"USD","provider":"p1","email":"bad..dots@example.com"}`)

	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, 0, sess.calls)
}

func TestCheckoutSubmit_SessionFailureIsTerminal(t *testing.T) {
	sess := &fakeSessions{err: errors.New("processor down")}
	h := newCheckoutHandler(&fakeDirectory{}, sess, &fakeExchanger{})

	rec, _ := checkoutRequest(t, h.Submit, http.MethodPost, "/v1/checkout/session",
		`{"content_id":"all","amount":49.99,"currency":"USD","provider":"p1","email":"b@example.com"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 1, sess.calls)
}

func TestCheckoutRedeem_Success(t *testing.T) {
	token := strings.Repeat("ab", 32)
	h := newCheckoutHandler(&fakeDirectory{}, &fakeSessions{}, &fakeExchanger{dest: "/content/48291037465"})

	rec, body := checkoutRequest(t, h.Redeem, http.MethodGet,
		"/v1/checkout/redeem?content_id=12345678901&token="+token, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "succeeded", body["state"])
	assert.Equal(t, "/content/48291037465", body["redirect_url"])
	// The success animation holds for the fixed delay before navigating.
	assert.Equal(t, float64(checkout.RedirectDelay.Milliseconds()), body["delay_ms"])
}

func TestCheckoutRedeem_ExchangeFailureNeverGuesses(t *testing.T) {
	token := strings.Repeat("ab", 32)
	h := newCheckoutHandler(&fakeDirectory{}, &fakeSessions{}, &fakeExchanger{err: errors.New("token spent")})

	rec, body := checkoutRequest(t, h.Redeem, http.MethodGet,
		"/v1/checkout/redeem?content_id=12345678901&token="+token, "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "failed", body["state"])
	assert.NotContains(t, body, "redirect_url")
	// The page offers the configured manual way back instead.
	assert.Equal(t, "/store", body["safe_url"])
}

func TestCheckoutRedeem_MalformedToken(t *testing.T) {
	h := newCheckoutHandler(&fakeDirectory{}, &fakeSessions{}, &fakeExchanger{dest: "/x"})

	rec, body := checkoutRequest(t, h.Redeem, http.MethodGet,
		"/v1/checkout/redeem?content_id=12345678901&token=short", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "failed", body["state"])
}
