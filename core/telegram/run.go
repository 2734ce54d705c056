package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/RagaBusiness/manoya-tg-bot/core/config"
	"github.com/RagaBusiness/manoya-tg-bot/core/httpserver"
	"github.com/RagaBusiness/manoya-tg-bot/core/logger"
	"github.com/RagaBusiness/manoya-tg-bot/core/netutil"
	tghelpers "github.com/RagaBusiness/manoya-tg-bot/core/telegram/helpers"
	tgsender "github.com/RagaBusiness/manoya-tg-bot/core/telegram/sender"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	// Poller overrides the poller selected from Config.
	Poller tele.Poller
	// APIURL overrides the Telegram Bot API base URL.
	APIURL string
	// Offline skips the getMe call during bot construction.
	Offline bool

	DisableWebhookCleanup   bool
	DisableHelperDispatcher bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram composes and runs a Telegram bot until the provided context is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}

	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	poller := opts.Poller
	if poller == nil {
		poller = BuildPoller(cfg)
	}

	pollTimeout := longPollTimeout(cfg)
	settings := tele.Settings{
		URL:    opts.APIURL,
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: netutil.BuildHTTPClient(netutil.ClientOptions{
			Timeout:         pollTimeout + 15*time.Second,
			ResponseTimeout: pollTimeout + 10*time.Second,
		}),
		OnError: logBotError,
		Offline: opts.Offline,
	}

	buildStart := time.Now()
	bot, err := tele.NewBot(settings)
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	buildTook := time.Since(buildStart)

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	useHelperDispatcher := !opts.DisableHelperDispatcher
	if useHelperDispatcher {
		tghelpers.SetDispatcher(dispatcher)
	}
	release := func() {
		dispatcher.Close()
		if useHelperDispatcher {
			tghelpers.SetDispatcher(nil)
		}
	}

	rt := Runtime{
		Bot:        bot,
		Dispatcher: dispatcher,
		Registry:   reg,
	}

	webhook, isWebhook := poller.(*WebhookPoller)
	if isWebhook {
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "mode",
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("public_url", webhook.URL),
			slog.String("path", cfg.Webhook.Path),
			slog.Bool("secret_token", webhook.SecretToken != ""),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
	} else {
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "mode",
			slog.String("mode", "polling"),
			slog.Int("timeout_seconds", int(pollTimeout/time.Second)),
			slog.Bool("webhook_url_set", cfg.Webhook.URL != ""),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
		if !opts.DisableWebhookCleanup {
			if err := bot.RemoveWebhook(cfg.Telegram.DropPendingUpdates); err != nil {
				logger.TG.LogAttrs(ctx, slog.LevelWarn, "delete_webhook",
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
			} else {
				logger.TG.LogAttrs(ctx, slog.LevelInfo, "delete_webhook",
					slog.String("status", "ok"),
					slog.Bool("drop_pending", cfg.Telegram.DropPendingUpdates),
				)
			}
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use == nil {
			continue
		}
		bot.Use(mw.Use)
	}

	for _, route := range opts.Routes {
		if route.Endpoint == nil || route.Handler == nil {
			continue
		}
		bot.Handle(route.Endpoint, route.Handler)
	}

	SetupCommands(bot, reg)

	var (
		server    *httpserver.Server
		serverErr <-chan error
	)
	if addr := cfg.HTTPAddr(); addr != "" {
		srvOpts := httpserver.Options{Addr: addr}
		if isWebhook {
			srvOpts.WebhookPath = cfg.Webhook.Path
			srvOpts.Webhook = webhook
		}
		server = httpserver.New(srvOpts)
		if serverErr, err = server.Start(); err != nil {
			release()
			return fmt.Errorf("telegram: ingress server failed to start: %w", err)
		}
	} else if isWebhook {
		release()
		return fmt.Errorf("telegram: webhook mode requires http.port")
	}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			if server != nil {
				_ = server.Shutdown(context.Background())
			}
			release()
			return err
		}
	}

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case err, ok := <-serverErr:
		if ok && err != nil {
			runErr = fmt.Errorf("telegram: ingress server failed: %w", err)
		}
	case <-runDone:
	}

	// Stop the ingress first so no update arrives after the bot loop exits.
	if server != nil {
		if err := server.Shutdown(context.Background()); err != nil {
			logger.HTTP.LogAttrs(ctx, slog.LevelWarn, "http.shutdown", slog.String("err", err.Error()))
		}
	}
	select {
	case <-runDone:
	default:
		bot.Stop()
		<-runDone
	}

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(context.WithoutCancel(ctx), rt)
	}

	release()

	if stopErr != nil {
		return stopErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func logBotError(err error, c tele.Context) {
	ctx := logger.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.TG.LogAttrs(ctx, slog.LevelError, "bot.error",
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 512)),
	)
}
