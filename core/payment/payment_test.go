package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func testConfig() Config {
	cfg := Config{StripeSecretKey: "sk_test_123"}
	if err := cfg.Normalize(); err != nil {
		panic(err)
	}
	return cfg
}

func newStripeServer(t *testing.T, h http.HandlerFunc) *Stripe {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripe(testConfig(), &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func TestStripeCreateSession(t *testing.T) {
	p := newStripeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		form := r.PostForm
		assert.Equal(t, "payment", form.Get("mode"))
		assert.Equal(t, "card", form.Get("payment_method_types[0]"))
		assert.Equal(t, "usd", form.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "1000", form.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "Manoya Subscription", form.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "1", form.Get("line_items[0][quantity]"))
		assert.Equal(t, "77", form.Get("client_reference_id"))
		success, err := url.QueryUnescape(form.Get("success_url"))
		require.NoError(t, err)
		assert.Contains(t, success, "{CHECKOUT_SESSION_ID}")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	})

	co, err := p.CreateSession(context.Background(), Order{ChatID: 77})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", co.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", co.URL)
	assert.Equal(t, ProviderStripe, co.Provider)
}

func TestStripeCreateSessionRejected(t *testing.T) {
	p := newStripeServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid API Key provided: sk_test_***123"}}`))
	})

	_, err := p.CreateSession(context.Background(), Order{ChatID: 1})
	require.Error(t, err)
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ProviderStripe, pe.Provider)
	assert.Equal(t, "Invalid API Key provided: sk_test_***123", err.Error())
}

type fakeSnap struct {
	req  *snap.Request
	resp *snap.Response
	err  *midtrans.Error
}

func (f *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	f.req = req
	return f.resp, f.err
}

func TestMidtransCreateSession(t *testing.T) {
	cfg := Config{Provider: ProviderMidtrans, MidtransServerKey: "SB-key", UnitAmount: 150000, Currency: "idr"}
	require.NoError(t, cfg.Normalize())
	fake := &fakeSnap{resp: &snap.Response{Token: "tok", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/tok"}}
	p := &Midtrans{cfg: cfg, snap: fake}

	co, err := p.CreateSession(context.Background(), Order{ChatID: 5, ProductName: "Pro"})
	require.NoError(t, err)
	assert.Equal(t, "https://app.sandbox.midtrans.com/snap/v2/vtweb/tok", co.URL)
	assert.Equal(t, ProviderMidtrans, co.Provider)
	require.NotNil(t, fake.req)
	assert.Equal(t, co.ID, fake.req.TransactionDetails.OrderID)
	assert.Equal(t, int64(150000), fake.req.TransactionDetails.GrossAmt)
	require.NotNil(t, fake.req.Items)
	assert.Equal(t, "Pro", (*fake.req.Items)[0].Name)
	assert.Contains(t, fake.req.Callbacks.Finish, co.ID)
}

func TestMidtransCreateSessionRejected(t *testing.T) {
	cfg := Config{Provider: ProviderMidtrans, MidtransServerKey: "SB-key"}
	require.NoError(t, cfg.Normalize())
	p := &Midtrans{cfg: cfg, snap: &fakeSnap{err: &midtrans.Error{Message: "Access denied", StatusCode: 401}}}

	_, err := p.CreateSession(context.Background(), Order{ChatID: 5})
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ProviderMidtrans, pe.Provider)
	assert.Contains(t, err.Error(), "Access denied")
}

func TestDisabledProvider(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Normalize())
	assert.False(t, cfg.Configured())

	disabled := New(cfg)
	assert.IsType(t, Disabled{}, disabled)
	_, err := disabled.CreateSession(context.Background(), Order{})
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "not configured")
}

func TestNormalizeInfersProvider(t *testing.T) {
	cfg := Config{MidtransServerKey: "k", UnitAmount: 150000}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, ProviderMidtrans, cfg.Provider)
	assert.Equal(t, "idr", cfg.Currency)
	assert.Equal(t, int64(150000), cfg.UnitAmount)
	assert.IsType(t, &Midtrans{}, New(cfg))

	cfg = Config{StripeSecretKey: "k"}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, ProviderStripe, cfg.Provider)
	assert.IsType(t, &Stripe{}, New(cfg))

	cfg = Config{Provider: "paypal"}
	assert.Error(t, cfg.Normalize())
}

func TestNormalizeMidtransAmount(t *testing.T) {
	cfg := Config{Provider: ProviderMidtrans, MidtransServerKey: "k"}
	err := cfg.Normalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit_amount")

	cfg = Config{Provider: ProviderMidtrans, MidtransServerKey: "k", Currency: "usd", UnitAmount: 1000}
	err = cfg.Normalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idr")

	cfg = Config{Provider: ProviderMidtrans, Currency: "IDR", UnitAmount: 150000}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, "idr", cfg.Currency)

	cfg = Config{StripeSecretKey: "k"}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, "usd", cfg.Currency)
	assert.Equal(t, int64(1000), cfg.UnitAmount)
}
