// Package payment creates hosted checkout sessions with an external provider.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// ProviderStripe selects Stripe Checkout.
	ProviderStripe = "stripe"
	// ProviderMidtrans selects Midtrans Snap.
	ProviderMidtrans = "midtrans"
	// ProviderDisabled rejects every request; used when no key is configured.
	ProviderDisabled = "disabled"
)

// ErrNotConfigured is wrapped by the disabled provider.
var ErrNotConfigured = errors.New("payment provider is not configured")

// Order describes what is being paid for.
type Order struct {
	ChatID int64
	// ProductName overrides Config.ProductName when set.
	ProductName string
}

// Checkout is a created hosted payment page.
type Checkout struct {
	ID       string
	URL      string
	Provider string
}

// Initiator creates checkout sessions.
type Initiator interface {
	CreateSession(ctx context.Context, order Order) (*Checkout, error)
}

// ProviderError reports an upstream rejection. Error returns the upstream reason.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return e.Provider + ": unknown error"
	}
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(provider string, err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Err: err}
}

// Config selects a provider and the fixed fee.
type Config struct {
	Provider           string `yaml:"provider" envconfig:"PAYMENT_PROVIDER"`
	StripeSecretKey    string `yaml:"stripe_secret_key" envconfig:"STRIPE_SECRET_KEY"`
	MidtransServerKey  string `yaml:"midtrans_server_key" envconfig:"MIDTRANS_SERVER_KEY"`
	MidtransProduction bool   `yaml:"midtrans_production" envconfig:"MIDTRANS_IS_PRODUCTION"`
	Currency           string `yaml:"currency" envconfig:"PAYMENT_CURRENCY"`
	// UnitAmount is in the smallest currency unit (cents for usd). Midtrans
	// charges whole rupiah and needs it set explicitly.
	UnitAmount  int64  `yaml:"unit_amount" envconfig:"PAYMENT_UNIT_AMOUNT"`
	ProductName string `yaml:"product_name"`
	SuccessURL  string `yaml:"success_url" envconfig:"PAYMENT_SUCCESS_URL"`
	CancelURL   string `yaml:"cancel_url" envconfig:"PAYMENT_CANCEL_URL"`
}

const (
	midtransCurrency   = "idr"
	defaultCurrency    = "usd"
	defaultUnitAmount  = 1000
	defaultProductName = "Manoya Subscription"
	defaultSuccessURL  = "https://example.com/success?session_id={CHECKOUT_SESSION_ID}"
	defaultCancelURL   = "https://example.com/cancel"
)

// Normalize fills defaults and infers the provider from the configured keys.
func (c *Config) Normalize() error {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	if p == "" {
		switch {
		case c.StripeSecretKey != "":
			p = ProviderStripe
		case c.MidtransServerKey != "":
			p = ProviderMidtrans
		default:
			p = ProviderStripe
		}
	}
	switch p {
	case ProviderStripe, ProviderMidtrans:
	default:
		return fmt.Errorf("invalid payment.provider %q; allowed: stripe, midtrans", c.Provider)
	}
	c.Provider = p
	c.Currency = strings.ToLower(strings.TrimSpace(c.Currency))
	if p == ProviderMidtrans {
		if c.Currency == "" {
			c.Currency = midtransCurrency
		}
		if c.Currency != midtransCurrency {
			return fmt.Errorf("payment.currency %q is not supported by midtrans; use idr", c.Currency)
		}
		if c.UnitAmount <= 0 {
			return fmt.Errorf("payment.unit_amount is required for midtrans (whole rupiah)")
		}
	}
	if c.Currency == "" {
		c.Currency = defaultCurrency
	}
	if c.UnitAmount <= 0 {
		c.UnitAmount = defaultUnitAmount
	}
	if c.ProductName == "" {
		c.ProductName = defaultProductName
	}
	if c.SuccessURL == "" {
		c.SuccessURL = defaultSuccessURL
	}
	if c.CancelURL == "" {
		c.CancelURL = defaultCancelURL
	}
	return nil
}

// Configured reports whether the selected provider has a key.
func (c Config) Configured() bool {
	switch c.Provider {
	case ProviderStripe:
		return c.StripeSecretKey != ""
	case ProviderMidtrans:
		return c.MidtransServerKey != ""
	}
	return false
}

// New returns the configured Initiator, or a disabled one when the key is missing.
func New(cfg Config) Initiator {
	if !cfg.Configured() {
		return Disabled{Provider: cfg.Provider}
	}
	switch cfg.Provider {
	case ProviderMidtrans:
		return NewMidtrans(cfg)
	default:
		return NewStripe(cfg, nil)
	}
}

// Disabled fails every request with ErrNotConfigured.
type Disabled struct {
	Provider string
}

// CreateSession always fails.
func (d Disabled) CreateSession(context.Context, Order) (*Checkout, error) {
	name := d.Provider
	if name == "" {
		name = ProviderDisabled
	}
	return nil, &ProviderError{Provider: name, Err: fmt.Errorf("%s: %w", name, ErrNotConfigured)}
}
