package telegram

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/RagaBusiness/manoya-tg-bot/core/config"
	"github.com/RagaBusiness/manoya-tg-bot/core/logger"
)

const (
	defaultLongPollTimeout = 10 * time.Second
	secretTokenHeader      = "X-Telegram-Bot-Api-Secret-Token"
	maxUpdateBytes         = 1 << 20
)

// BuildPoller returns a long poller or a WebhookPoller depending on run mode.
func BuildPoller(cfg *coreconfig.Config) tele.Poller {
	if cfg.WebhookEnabled() {
		return &WebhookPoller{
			URL:         cfg.Webhook.URL,
			SecretToken: cfg.Webhook.SecretToken,
			DropPending: cfg.Telegram.DropPendingUpdates,
		}
	}
	return &tele.LongPoller{Timeout: longPollTimeout(cfg)}
}

func longPollTimeout(cfg *coreconfig.Config) time.Duration {
	if cfg == nil || cfg.Telegram.LongPollTimeoutSeconds <= 0 {
		return defaultLongPollTimeout
	}
	return time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second
}

// WebhookPoller receives updates through an http.Handler mounted on the
// ingress server instead of a listener owned by telebot. Requests are
// rejected with 503 until Poll attaches the update channel.
type WebhookPoller struct {
	URL         string
	SecretToken string
	DropPending bool

	mu   sync.RWMutex
	dest chan<- tele.Update
	stop chan struct{}
}

// Poll registers the webhook with Telegram and serves updates until stop is closed.
func (p *WebhookPoller) Poll(b *tele.Bot, dest chan tele.Update, stop chan struct{}) {
	hook := &tele.Webhook{
		Endpoint:    &tele.WebhookEndpoint{PublicURL: p.URL},
		SecretToken: p.SecretToken,
		DropUpdates: p.DropPending,
	}
	if err := b.SetWebhook(hook); err != nil {
		logger.TG.LogAttrs(logger.Background(), slog.LevelError, "webhook.set",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	} else {
		logger.TG.LogAttrs(logger.Background(), slog.LevelInfo, "webhook.set",
			slog.String("status", "ok"),
			slog.String("public_url", p.URL),
		)
	}

	done := make(chan struct{})
	p.mu.Lock()
	p.dest = dest
	p.stop = done
	p.mu.Unlock()

	<-stop

	p.mu.Lock()
	p.dest = nil
	p.stop = nil
	close(done)
	p.mu.Unlock()
}

// Ready reports whether updates are currently being accepted.
func (p *WebhookPoller) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dest != nil
}

// ServeHTTP decodes a Telegram update and hands it to the bot.
func (p *WebhookPoller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if p.SecretToken != "" {
		got := r.Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(p.SecretToken)) != 1 {
			logger.TG.LogAttrs(r.Context(), slog.LevelWarn, "webhook.reject",
				slog.String("status", "fail"),
				slog.String("reason", "secret_mismatch"),
			)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	var upd tele.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&upd); err != nil {
		logger.TG.LogAttrs(r.Context(), slog.LevelWarn, "webhook.decode",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	p.mu.RLock()
	dest, done := p.dest, p.stop
	p.mu.RUnlock()
	if dest == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	select {
	case dest <- upd:
		w.WriteHeader(http.StatusOK)
	case <-done:
		w.WriteHeader(http.StatusServiceUnavailable)
	case <-r.Context().Done():
		w.WriteHeader(http.StatusServiceUnavailable)
	}
}
