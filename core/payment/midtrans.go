package payment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/RagaBusiness/manoya-tg-bot/core/logger"
)

type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// Midtrans creates Snap transactions and returns their redirect URL.
type Midtrans struct {
	cfg  Config
	snap snapAPI
}

// NewMidtrans builds a Snap client for the sandbox or production environment.
func NewMidtrans(cfg Config) *Midtrans {
	env := midtrans.Sandbox
	if cfg.MidtransProduction {
		env = midtrans.Production
	}
	var c snap.Client
	c.New(cfg.MidtransServerKey, env)
	return &Midtrans{cfg: cfg, snap: &c}
}

// CreateSession creates a Snap transaction for the fixed fee.
// The Snap client has no context support; ctx is checked before the call.
func (m *Midtrans) CreateSession(ctx context.Context, order Order) (*Checkout, error) {
	if err := ctx.Err(); err != nil {
		return nil, providerErr(ProviderMidtrans, err)
	}
	name := m.cfg.ProductName
	if order.ProductName != "" {
		name = order.ProductName
	}
	orderID := uuid.NewString()
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: m.cfg.UnitAmount,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    "manoya-subscription",
			Name:  name,
			Price: m.cfg.UnitAmount,
			Qty:   1,
		}},
		Callbacks: &snap.Callbacks{
			Finish: strings.ReplaceAll(m.cfg.SuccessURL, "{CHECKOUT_SESSION_ID}", orderID),
		},
	}

	start := time.Now()
	resp, midErr := m.snap.CreateTransaction(req)
	if midErr != nil {
		err := errors.New(midErr.GetMessage())
		logger.LogEvent(ctx, logger.PAY, slog.LevelError, "payment.create",
			slog.String("status", "fail"),
			slog.String("provider", ProviderMidtrans),
			slog.Int("http_code", midErr.GetStatusCode()),
			slog.Duration("duration", logger.Took(start)),
			slog.Any("err", err),
		)
		return nil, providerErr(ProviderMidtrans, err)
	}
	if resp == nil || resp.RedirectURL == "" {
		return nil, providerErr(ProviderMidtrans, errors.New("midtrans returned no redirect url"))
	}
	logger.LogEvent(ctx, logger.PAY, slog.LevelInfo, "payment.create",
		slog.String("status", "ok"),
		slog.String("provider", ProviderMidtrans),
		slog.String("checkout_id", orderID),
		slog.Duration("duration", logger.Took(start)),
	)
	return &Checkout{ID: orderID, URL: resp.RedirectURL, Provider: ProviderMidtrans}, nil
}
