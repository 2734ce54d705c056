package router

import (
	"time"

	tg "github.com/RagaBusiness/manoya-tg-bot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for non-command updates.
type TextOptions struct {
	// UnknownMedia answers photos, documents, voice and other non-text messages.
	UnknownMedia tele.HandlerFunc
}

// TextRoutes routes plain text (including unknown commands) to the registry
// text fallback and media to opts.UnknownMedia.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", start, "", "", func() error {
					return fb(c)
				})
			}
		}
		logHandlerSummary(c, "text", start, "skip", "ok", nil)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnknownMedia != nil {
			return handleWithSummary(c, "unexpected_media", start, "", "", func() error {
				return opts.UnknownMedia(c)
			})
		}
		logHandlerSummary(c, "unexpected_media", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: textHandler},
		{Endpoint: tele.OnMedia, Handler: mediaHandler},
		{Endpoint: tele.OnSticker, Handler: mediaHandler},
	}
}
