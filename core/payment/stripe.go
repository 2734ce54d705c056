package payment

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/RagaBusiness/manoya-tg-bot/core/logger"
)

// Stripe creates Stripe Checkout sessions with a per-instance API client.
type Stripe struct {
	cfg Config
	api *client.API
}

// NewStripe builds the provider. A nil backends selects Stripe's default backends.
func NewStripe(cfg Config, backends *stripe.Backends) *Stripe {
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, backends)
	return &Stripe{cfg: cfg, api: api}
}

// CreateSession creates a one-time card payment session for the fixed fee.
func (s *Stripe) CreateSession(ctx context.Context, order Order) (*Checkout, error) {
	name := s.cfg.ProductName
	if order.ProductName != "" {
		name = order.ProductName
	}
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(s.cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(name),
				},
				UnitAmount: stripe.Int64(s.cfg.UnitAmount),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(strconv.FormatInt(order.ChatID, 10)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	start := time.Now()
	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		err = stripeReason(err)
		logger.LogEvent(ctx, logger.PAY, slog.LevelError, "payment.create",
			slog.String("status", "fail"),
			slog.String("provider", ProviderStripe),
			slog.Duration("duration", logger.Took(start)),
			slog.Any("err", err),
		)
		return nil, providerErr(ProviderStripe, err)
	}
	logger.LogEvent(ctx, logger.PAY, slog.LevelInfo, "payment.create",
		slog.String("status", "ok"),
		slog.String("provider", ProviderStripe),
		slog.String("checkout_id", sess.ID),
		slog.Duration("duration", logger.Took(start)),
	)
	return &Checkout{ID: sess.ID, URL: sess.URL, Provider: ProviderStripe}, nil
}

// stripeReason unwraps *stripe.Error into its human-readable message.
func stripeReason(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return errors.New(se.Msg)
	}
	return err
}
