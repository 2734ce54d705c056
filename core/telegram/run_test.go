package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/RagaBusiness/manoya-tg-bot/core/config"
)

type idlePoller struct{ polled chan struct{} }

func (p *idlePoller) Poll(_ *tele.Bot, _ chan tele.Update, stop chan struct{}) {
	close(p.polled)
	<-stop
}

func testRunConfig(t *testing.T) *coreconfig.Config {
	t.Helper()
	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "123:abc"}}
	require.NoError(t, coreconfig.Normalize(cfg))
	return cfg
}

func TestRunTelegramStopsOnCancel(t *testing.T) {
	poller := &idlePoller{polled: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	var started, stopped bool
	done := make(chan error, 1)
	go func() {
		done <- RunTelegram(ctx, RunOptions{
			Config:                testRunConfig(t),
			Poller:                poller,
			Offline:               true,
			DisableWebhookCleanup: true,
			OnStart: func(context.Context, Runtime) error {
				started = true
				return nil
			},
			OnStop: func(context.Context, Runtime) error {
				stopped = true
				return nil
			},
		})
	}()

	select {
	case <-poller.polled:
	case <-time.After(2 * time.Second):
		t.Fatal("poller not started")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunTelegram did not return")
	}
	assert.True(t, started)
	assert.True(t, stopped)
}

func TestRunTelegramOnStartError(t *testing.T) {
	boom := errors.New("boom")
	err := RunTelegram(context.Background(), RunOptions{
		Config:                testRunConfig(t),
		Poller:                &idlePoller{polled: make(chan struct{})},
		Offline:               true,
		DisableWebhookCleanup: true,
		OnStart:               func(context.Context, Runtime) error { return boom },
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunTelegramNilConfig(t *testing.T) {
	assert.Error(t, RunTelegram(context.Background(), RunOptions{}))
}
