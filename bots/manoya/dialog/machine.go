// Package dialog implements the sales conversation as a state machine over a
// session store. It has no Telegram dependency: inputs are parsed messages
// and outputs are replies to send.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/RagaBusiness/manoya-tg-bot/bots/manoya/messages"
	"github.com/RagaBusiness/manoya-tg-bot/core/logger"
	"github.com/RagaBusiness/manoya-tg-bot/core/payment"
	"github.com/RagaBusiness/manoya-tg-bot/core/telegram/format"
	"github.com/RagaBusiness/manoya-tg-bot/core/telegram/state"
)

// Reply is one outbound message.
type Reply struct {
	Text string
	// LinkText and LinkURL attach an inline URL button.
	LinkText string
	LinkURL  string
	// Keyboard shows a one-row reply keyboard.
	Keyboard       []string
	RemoveKeyboard bool
}

// Analyzer produces the business analysis and clarifying questions.
type Analyzer interface {
	Analyze(ctx context.Context, description string) string
	GenerateQuestions(ctx context.Context, description string) string
}

// Machine runs the conversation. Events of one chat are serialized; different
// chats proceed concurrently.
type Machine struct {
	store    state.Store
	analyzer Analyzer
	payments payment.Initiator
	msgs     messages.Catalog
	locks    *chatLocks
}

// New wires a machine.
func New(store state.Store, analyzer Analyzer, payments payment.Initiator, msgs messages.Catalog) *Machine {
	return &Machine{store: store, analyzer: analyzer, payments: payments, msgs: msgs, locks: newChatLocks()}
}

// State returns the current state of chatID; a chat without a session is Done.
func (m *Machine) State(ctx context.Context, chatID int64) (state.State, error) {
	defer m.locks.lock(chatID)()
	sess, _, err := m.load(ctx, chatID)
	if err != nil {
		return "", err
	}
	return sess.State, nil
}

// Handle applies in to the session of chatID and returns the replies to send.
// On a store failure it returns an apology reply together with the error.
func (m *Machine) Handle(ctx context.Context, chatID int64, in Input) ([]Reply, error) {
	defer m.locks.lock(chatID)()

	sess, stored, err := m.load(ctx, chatID)
	if err != nil {
		return m.apology(), fmt.Errorf("dialog: load session: %w", err)
	}
	from := sess.State

	sess, replies := m.step(ctx, sess, in)

	if err := m.save(ctx, sess, stored); err != nil {
		return m.apology(), fmt.Errorf("dialog: save session: %w", err)
	}

	level := slog.LevelDebug
	if from != sess.State {
		level = slog.LevelInfo
	}
	logger.LogEvent(ctx, logger.DLG, level, "dialog.transition",
		slog.String("from", string(from)),
		slog.String("to", string(sess.State)),
		slog.String("input", inputLabel(in)),
		slog.Int("replies", len(replies)),
		slog.Bool("credential", sess.HasClientToken()),
	)
	return replies, nil
}

func (m *Machine) load(ctx context.Context, chatID int64) (*state.Session, bool, error) {
	sess, err := m.store.Get(ctx, chatID)
	if errors.Is(err, state.ErrNotFound) {
		return state.NewSession(chatID, state.Done), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !sess.State.Valid() {
		logger.LogEvent(ctx, logger.DLG, slog.LevelWarn, "dialog.invalid_state",
			slog.String("state", string(sess.State)),
		)
		sess.State = state.Done
	}
	return sess, true, nil
}

// save deletes the session on reaching Done and stores it otherwise.
func (m *Machine) save(ctx context.Context, sess *state.Session, stored bool) error {
	if sess.State.Terminal() {
		if !stored {
			return nil
		}
		return m.store.Delete(ctx, sess.ChatID)
	}
	return m.store.Put(ctx, sess)
}

func (m *Machine) step(ctx context.Context, sess *state.Session, in Input) (*state.Session, []Reply) {
	switch {
	case in.is(CmdStart):
		return state.NewSession(sess.ChatID, state.AwaitingBusiness), []Reply{{Text: m.msgs.Intro, RemoveKeyboard: true}}
	case in.is(CmdHelp):
		return sess, []Reply{{Text: m.msgs.Help}}
	case in.is(CmdCancel):
		if sess.State.Terminal() {
			return sess, []Reply{{Text: m.msgs.NothingToCancel}}
		}
		sess.State = state.Done
		return sess, []Reply{{Text: m.msgs.Cancelled, RemoveKeyboard: true}}
	}

	switch sess.State {
	case state.AwaitingBusiness:
		if in.Kind == KindText {
			return sess, m.onBusiness(ctx, sess, in.Text)
		}
	case state.AwaitingClarification:
		if in.Kind == KindText {
			return sess, m.onClarification(ctx, sess, in.Text)
		}
	case state.AwaitingPayment:
		if in.is(CmdPay) {
			return sess, m.onPay(ctx, sess)
		}
	case state.AwaitingConnection:
		if in.Kind == KindText {
			return sess, m.onCredential(sess, in.Text)
		}
		if in.is(CmdConnect) {
			return sess, []Reply{{Text: m.msgs.AskToken}}
		}
	}
	return sess, []Reply{{Text: m.hint(sess.State)}}
}

func (m *Machine) onBusiness(ctx context.Context, sess *state.Session, text string) []Reply {
	sess.BusinessDescription = text
	sess.Analysis = m.analyzer.Analyze(ctx, text)
	questions := strings.TrimSpace(m.analyzer.GenerateQuestions(ctx, text))
	if questions != "" {
		sess.State = state.AwaitingClarification
		return []Reply{{Text: fmt.Sprintf(m.msgs.AnalysisQuestions, sess.Analysis, questions)}}
	}
	sess.State = state.AwaitingPayment
	return []Reply{{Text: fmt.Sprintf(m.msgs.AnalysisPay, sess.Analysis), Keyboard: []string{CmdPay}}}
}

func (m *Machine) onClarification(ctx context.Context, sess *state.Session, text string) []Reply {
	sess.BusinessDescription = strings.TrimSpace(sess.BusinessDescription + " " + text)
	sess.Analysis = m.analyzer.Analyze(ctx, sess.BusinessDescription)
	sess.State = state.AwaitingPayment
	return []Reply{{Text: fmt.Sprintf(m.msgs.UpdatedAnalysis, sess.Analysis), Keyboard: []string{CmdPay}}}
}

// onPay leaves the state unchanged when the provider fails so /pay can be retried.
func (m *Machine) onPay(ctx context.Context, sess *state.Session) []Reply {
	checkout, err := m.payments.CreateSession(ctx, payment.Order{ChatID: sess.ChatID})
	if err != nil {
		provider := ""
		var pe *payment.ProviderError
		if errors.As(err, &pe) {
			provider = pe.Provider
		}
		logger.LogEvent(ctx, logger.PAY, slog.LevelWarn, "payment.create",
			slog.String("status", "fail"),
			slog.String("provider", provider),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return []Reply{{Text: fmt.Sprintf(m.msgs.PaymentFailed, err.Error())}}
	}
	sess.CheckoutID = checkout.ID
	sess.State = state.AwaitingConnection
	return []Reply{{
		Text:     fmt.Sprintf(m.msgs.CheckoutLink, checkout.URL),
		LinkText: m.msgs.PayButton,
		LinkURL:  checkout.URL,
	}}
}

func (m *Machine) onCredential(sess *state.Session, text string) []Reply {
	token := strings.TrimSpace(text)
	if token == "" {
		return []Reply{{Text: m.msgs.AskToken}}
	}
	sess.ClientToken = &token
	sess.State = state.Done
	return []Reply{{Text: fmt.Sprintf(m.msgs.Connected, format.MaskSecret(token)), RemoveKeyboard: true}}
}

func (m *Machine) hint(s state.State) string {
	switch s {
	case state.AwaitingBusiness:
		return m.msgs.HintBusiness
	case state.AwaitingClarification:
		return m.msgs.HintClarification
	case state.AwaitingPayment:
		return m.msgs.HintPayment
	case state.AwaitingConnection:
		return m.msgs.HintConnection
	default:
		return m.msgs.HintDone
	}
}

func (m *Machine) apology() []Reply {
	return []Reply{{Text: m.msgs.Apology}}
}

func inputLabel(in Input) string {
	if in.Kind == KindCommand {
		return in.Command
	}
	return "text"
}
