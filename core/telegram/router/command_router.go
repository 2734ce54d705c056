package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/RagaBusiness/manoya-tg-bot/core/logger"
	tg "github.com/RagaBusiness/manoya-tg-bot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes binds every registered command (and its aliases) to a bot endpoint.
// A command followed by more text ("/pay now") is not a command: it is passed
// to the registry text fallback as plain text.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		name := normalizeHandlerName(cmd)
		handler := def.Handler
		h := func(c tele.Context) error {
			start := time.Now()
			if msg := c.Message(); msg != nil && strings.TrimSpace(msg.Payload) != "" {
				if fb := reg.TextFallback(); fb != nil {
					return handleWithSummary(c, "text", start, "", "", func() error { return fb(c) })
				}
				logHandlerSummary(c, name, start, "skip", "ok", nil)
				return nil
			}
			return handleWithSummary(c, name, start, "", "", func() error { return handler(c) })
		}
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: h})
		for _, alias := range def.Aliases {
			if !strings.HasPrefix(alias, "/") {
				alias = "/" + alias
			}
			routes = append(routes, tg.Route{Endpoint: alias, Handler: h})
		}
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("routes", len(routes)),
	)
	return routes
}
