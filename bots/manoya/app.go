// Package manoya wires the sales-assistant bot: configuration, the dialog
// machine and its Telegram handlers.
package manoya

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RagaBusiness/manoya-tg-bot/bots/manoya/analyzer"
	"github.com/RagaBusiness/manoya-tg-bot/bots/manoya/dialog"
	"github.com/RagaBusiness/manoya-tg-bot/bots/manoya/messages"
	"github.com/RagaBusiness/manoya-tg-bot/core/bootstrap"
	"github.com/RagaBusiness/manoya-tg-bot/core/llm"
	"github.com/RagaBusiness/manoya-tg-bot/core/logger"
	"github.com/RagaBusiness/manoya-tg-bot/core/payment"
	tg "github.com/RagaBusiness/manoya-tg-bot/core/telegram"
	"github.com/RagaBusiness/manoya-tg-bot/core/telegram/commands"
	tghelpers "github.com/RagaBusiness/manoya-tg-bot/core/telegram/helpers"
	"github.com/RagaBusiness/manoya-tg-bot/core/telegram/keyboard"
	"github.com/RagaBusiness/manoya-tg-bot/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

// App is the runnable bot.
type App struct {
	cfg     *Config
	machine *dialog.Machine
	msgs    messages.Catalog
	infra   *bootstrap.Result
}

// NewApp assembles an App from ready components. infra may be nil.
func NewApp(cfg *Config, machine *dialog.Machine, msgs messages.Catalog, infra *bootstrap.Result) *App {
	return &App{cfg: cfg, machine: machine, msgs: msgs, infra: infra}
}

// Bootstrap initializes logging and the session store, then builds the
// LLM client, the payment provider and the dialog machine.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("manoya: nil config")
	}
	infra, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	msgs := messages.For(cfg.Bot.Locale)
	llmCfg := cfg.LLM
	if llmCfg.Apology == "" || llmCfg.Apology == llm.DefaultApology {
		llmCfg.Apology = msgs.LLMApology
	}
	warnMissingKeys(ctx, cfg)

	machine := dialog.New(
		infra.Store,
		analyzer.New(llm.New(llmCfg, nil), msgs),
		payment.New(cfg.Payment),
		msgs,
	)
	return NewApp(cfg, machine, msgs, infra), nil
}

func warnMissingKeys(ctx context.Context, cfg *Config) {
	if !cfg.LLM.Enabled() {
		logger.LogEvent(ctx, logger.LLM, slog.LevelWarn, "config.missing",
			slog.String("key", "LLM_API_KEY"),
			slog.String("effect", "analysis uses the offline fallback"),
		)
	}
	if !cfg.Payment.Configured() {
		key := "STRIPE_SECRET_KEY"
		if cfg.Payment.Provider == payment.ProviderMidtrans {
			key = "MIDTRANS_SERVER_KEY"
		}
		logger.LogEvent(ctx, logger.PAY, slog.LevelWarn, "config.missing",
			slog.String("key", key),
			slog.String("provider", cfg.Payment.Provider),
			slog.String("effect", "payments fail on first use"),
		)
	}
}

// Close releases store connections.
func (a *App) Close() error {
	return a.infra.Close()
}

// TelegramRunOptions registers commands and routes for the runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	defs := []struct {
		name string
		desc string
	}{
		{dialog.CmdStart, a.msgs.CmdStart},
		{dialog.CmdPay, a.msgs.CmdPay},
		{dialog.CmdConnect, a.msgs.CmdConnect},
		{dialog.CmdCancel, a.msgs.CmdCancel},
		{dialog.CmdHelp, a.msgs.CmdHelp},
	}
	for _, d := range defs {
		if err := reg.RegisterCommand(d.name, commands.Command{
			Handler:     a.commandHandler(d.name),
			Description: d.desc,
		}); err != nil {
			return tg.RunOptions{}, err
		}
	}
	reg.SetTextFallback(a.handleText)

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{UnknownMedia: a.handleMedia})...)

	core := a.cfg.CoreConfig()
	return tg.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(core, a.handleLimited),
		Routes:      routes,
	}, nil
}

func (a *App) commandHandler(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return a.handle(c, dialog.Command(name))
	}
}

func (a *App) handleText(c tele.Context) error {
	return a.handle(c, dialog.ParseInput(c.Text()))
}

func (a *App) handleMedia(c tele.Context) error {
	return tghelpers.SendText(c, a.msgs.UnknownMedia)
}

func (a *App) handleLimited(c tele.Context) error {
	return tghelpers.SendText(c, a.msgs.RateLimited)
}

// handle runs in through the machine and sends every reply in order. Replies
// are sent even when the machine reports an error (the apology).
func (a *App) handle(c tele.Context, in dialog.Input) error {
	ctx := tghelpers.BuildContext(c)
	replies, err := a.machine.Handle(ctx, tghelpers.ChatID(c), in)
	for _, r := range replies {
		if sendErr := sendReply(c, r); sendErr != nil {
			return errors.Join(err, sendErr)
		}
	}
	return err
}

func sendReply(c tele.Context, r dialog.Reply) error {
	switch {
	case r.LinkURL != "":
		return tghelpers.SendWithMarkup(c, r.Text, keyboard.URLButton(r.LinkText, r.LinkURL))
	case len(r.Keyboard) > 0:
		return tghelpers.SendWithMarkup(c, r.Text, keyboard.ReplyButtons(r.Keyboard))
	case r.RemoveKeyboard:
		return tghelpers.SendWithMarkup(c, r.Text, keyboard.RemoveKeyboard())
	default:
		return tghelpers.SendText(c, r.Text)
	}
}
