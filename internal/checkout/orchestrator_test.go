package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/creator-storefront/internal/model"
	"github.com/iliyamo/creator-storefront/internal/payment"
)

const validToken = "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2"

type fakeDirectory struct {
	calls     int
	providers []model.PaymentProvider
	err       error
}

func (f *fakeDirectory) List(_ context.Context, _ float64, _ string) ([]model.PaymentProvider, error) {
	f.calls++
	return f.providers, f.err
}

type fakeSessions struct {
	calls int
	last  payment.SessionRequest
	link  string
	err   error
}

func (f *fakeSessions) Create(_ context.Context, req payment.SessionRequest) (string, error) {
	f.calls++
	f.last = req
	return f.link, f.err
}

type fakeExchanger struct {
	calls int
	url   string
	err   error
}

func (f *fakeExchanger) ExchangeForRedirect(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.url, f.err
}

type fakePurchases struct {
	calls int
	last  model.Purchase
	err   error
}

func (f *fakePurchases) Record(_ context.Context, p model.Purchase) (uint64, error) {
	f.calls++
	f.last = p
	return 1, f.err
}

func validIntent() Intent {
	return Intent{ContentID: "64f1a2b3c4d5e6f708192a3b", Amount: 9.99, Currency: "USD", Email: "buyer@example.com"}
}

func TestIntentValidate_AmountBounds(t *testing.T) {
	t.Parallel()
	for _, amount := range []float64{0, -1, -9.99, 10000.01, 50000} {
		i := validIntent()
		i.Amount = amount
		assert.ErrorIs(t, i.Validate(), ErrSessionExpired, "amount %v", amount)
	}
	for _, amount := range []float64{0.01, 9.99, 10000} {
		i := validIntent()
		i.Amount = amount
		assert.NoError(t, i.Validate(), "amount %v", amount)
	}
}

func TestIntentValidate_Identifier(t *testing.T) {
	t.Parallel()
	i := validIntent()
	i.ContentID = BundleContentID
	assert.NoError(t, i.Validate(), "the bundle literal is a valid identifier")

	for _, id := range []string{"", "some-slug", "007", "123456789012"} {
		i := validIntent()
		i.ContentID = id
		assert.ErrorIs(t, i.Validate(), ErrSessionExpired, "id %q", id)
	}
}

func TestProviders_InvalidIntent_NoDirectoryCall(t *testing.T) {
	t.Parallel()
	dir := &fakeDirectory{}
	o := &Orchestrator{Directory: dir}

	i := validIntent()
	i.Amount = -5
	_, err := o.Providers(context.Background(), i)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, dir.calls, "invalid intents must not reach the directory")
}

func TestProviders_DirectoryFailureWrapped(t *testing.T) {
	t.Parallel()
	dir := &fakeDirectory{err: errors.New("status 503")}
	o := &Orchestrator{Directory: dir}

	_, err := o.Providers(context.Background(), validIntent())
	require.ErrorIs(t, err, ErrProviderDirectoryUnavailable)
	assert.Contains(t, err.Error(), "503", "the last endpoint error is surfaced")
}

func TestSubmit_OneSessionPerSubmit(t *testing.T) {
	t.Parallel()
	sessions := &fakeSessions{link: "https://pay.example.com/s/abc"}
	o := &Orchestrator{Sessions: sessions}

	link, err := o.Submit(context.Background(), validIntent(), "prov-1")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/s/abc", link)
	assert.Equal(t, 1, sessions.calls)
	assert.Equal(t, "prov-1", sessions.last.Provider)
	assert.Equal(t, "buyer@example.com", sessions.last.Email)
}

func TestSubmit_ValidationShortCircuits(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*Intent)
		prov   string
	}{
		{"bad amount", func(i *Intent) { i.Amount = 0 }, "prov-1"},
		{"bad email", func(i *Intent) { i.Email = "not..ok@@x" }, "prov-1"},
		{"missing provider", func(i *Intent) {}, ""},
		{"bad id", func(i *Intent) { i.ContentID = "???" }, "prov-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sessions := &fakeSessions{link: "x"}
			o := &Orchestrator{Sessions: sessions}
			i := validIntent()
			tc.mutate(&i)
			_, err := o.Submit(context.Background(), i, tc.prov)
			assert.ErrorIs(t, err, ErrSessionExpired)
			assert.Equal(t, 0, sessions.calls, "no session may be created for an invalid submit")
		})
	}
}

func TestSubmit_SessionFailureIsTerminal(t *testing.T) {
	t.Parallel()
	sessions := &fakeSessions{err: errors.New("boom")}
	initiated := 0
	o := &Orchestrator{Sessions: sessions,
		PublishInitiated: func(context.Context, Intent, string) { initiated++ }}

	_, err := o.Submit(context.Background(), validIntent(), "prov-1")
	require.Error(t, err)
	assert.Equal(t, 1, sessions.calls, "no automatic retry on session failure")
	assert.Equal(t, 0, initiated, "failed sessions publish nothing")
}

func TestSubmit_PublishesInitiatedEvent(t *testing.T) {
	t.Parallel()
	var gotProvider string
	o := &Orchestrator{
		Sessions: &fakeSessions{link: "https://pay.example.com/s/abc"},
		PublishInitiated: func(_ context.Context, _ Intent, providerID string) {
			gotProvider = providerID
		},
	}

	_, err := o.Submit(context.Background(), validIntent(), "prov-1")
	require.NoError(t, err)
	assert.Equal(t, "prov-1", gotProvider)
}

func TestRedeem_MalformedToken_NoExchangeCall(t *testing.T) {
	t.Parallel()
	ex := &fakeExchanger{url: "https://storefront.example.com/c/12345678901"}
	o := &Orchestrator{Authority: ex}

	for _, tok := range []string{"", "abc", validToken[:63], "Z" + validToken[1:]} {
		_, err := o.Redeem(context.Background(), "64f1a2b3c4d5e6f708192a3b", tok)
		assert.ErrorIs(t, err, ErrMalformedToken, "token %q", tok)
	}
	assert.Equal(t, 0, ex.calls, "malformed tokens must never reach the authority")
}

func TestRedeem_InvalidContentID(t *testing.T) {
	t.Parallel()
	ex := &fakeExchanger{}
	o := &Orchestrator{Authority: ex}

	_, err := o.Redeem(context.Background(), "nope", validToken)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.Equal(t, 0, ex.calls)
}

func TestRedeem_Success(t *testing.T) {
	t.Parallel()
	ex := &fakeExchanger{url: "https://storefront.example.com/c/12345678901"}
	purchases := &fakePurchases{}
	var published int
	o := &Orchestrator{
		Authority: ex,
		Purchases: purchases,
		Publish:   func(context.Context, string, string) { published++ },
	}

	red, err := o.Redeem(context.Background(), "64f1a2b3c4d5e6f708192a3b", validToken)
	require.NoError(t, err)
	assert.Equal(t, "https://storefront.example.com/c/12345678901", red.RedirectURL)
	assert.Equal(t, RedirectDelay, red.Delay)
	assert.Equal(t, 1, purchases.calls)
	assert.NotEqual(t, validToken, purchases.last.TokenHash, "raw tokens are never persisted")
	assert.Equal(t, 1, published)
}

func TestRedeem_ExchangeFailure_NoGuessedDestination(t *testing.T) {
	t.Parallel()
	ex := &fakeExchanger{err: errors.New("exchange refused")}
	o := &Orchestrator{Authority: ex}

	red, err := o.Redeem(context.Background(), BundleContentID, validToken)
	require.ErrorIs(t, err, ErrRedirectResolutionFailure)
	assert.Empty(t, red.RedirectURL, "the destination must never be guessed")
}

func TestRedeem_RecordFailureDoesNotFailRedemption(t *testing.T) {
	t.Parallel()
	ex := &fakeExchanger{url: "https://storefront.example.com/c/1"}
	purchases := &fakePurchases{err: errors.New("db down")}
	o := &Orchestrator{Authority: ex, Purchases: purchases}

	red, err := o.Redeem(context.Background(), "42", validToken)
	require.NoError(t, err)
	assert.NotEmpty(t, red.RedirectURL)
}

func TestValidEmail(t *testing.T) {
	t.Parallel()
	valid := []string{
		"a@b.co",
		"buyer@example.com",
		"first.last@example.com",
		"user+tag@sub.example.org",
	}
	for _, s := range valid {
		assert.True(t, ValidEmail(s), "want valid: %q", s)
	}
	invalid := []string{
		"",
		"plain",
		"@example.com",
		"user@",
		"user@@example.com",
		"a@b@c.com",
		".user@example.com",
		"user.@example.com",
		"us..er@example.com",
		"user@example",
		"user@.example.com",
		"user@example.com.",
		"user@exa..mple.com",
		"us er@example.com",
	}
	for _, s := range invalid {
		assert.False(t, ValidEmail(s), "want invalid: %q", s)
	}
}
