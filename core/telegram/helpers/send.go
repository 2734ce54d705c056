package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/RagaBusiness/manoya-tg-bot/core/logger"
	"github.com/RagaBusiness/manoya-tg-bot/core/telegram/format"
	"github.com/RagaBusiness/manoya-tg-bot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("method", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
// Text longer than a Telegram message is split; opts apply to the last part.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	parts := format.SplitMessage(text, format.MaxMessageRunes)
	for i, part := range parts {
		last := i == len(parts)-1
		err := sendAsync(c, "send.text", "sendMessage", func() error {
			if last && sendOpts != nil {
				return c.Send(part, sendOpts)
			}
			return c.Send(part)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// SendWithMarkup sends raw text with a reply markup attached.
func SendWithMarkup(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if markup == nil {
		return SendText(c, text)
	}
	return SendText(c, text, &tele.SendOptions{ReplyMarkup: markup, DisableWebPagePreview: true})
}
