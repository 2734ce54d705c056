package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get when the chat has no session.
var ErrNotFound = errors.New("state: session not found")

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// AwaitingBusiness waits for the free-text business description.
	AwaitingBusiness State = "awaiting_business"
	// AwaitingClarification waits for answers to the clarifying questions.
	AwaitingClarification State = "awaiting_clarification"
	// AwaitingPayment waits for the /pay command.
	AwaitingPayment State = "awaiting_payment"
	// AwaitingConnection waits for the client credential.
	AwaitingConnection State = "awaiting_connection"
	// Done is terminal. A chat without a stored session is in this state.
	Done State = "done"
)

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case AwaitingBusiness, AwaitingClarification, AwaitingPayment, AwaitingConnection, Done:
		return true
	}
	return false
}

// Terminal reports whether s ends the conversation.
func (s State) Terminal() bool { return s == Done }

// Session is the conversation of one chat.
type Session struct {
	ChatID              int64     `json:"chat_id" db:"chat_id"`
	State               State     `json:"state" db:"state"`
	BusinessDescription string    `json:"business_description" db:"business_description"`
	Analysis            string    `json:"analysis" db:"analysis"`
	ClientToken         *string   `json:"client_token,omitempty" db:"client_token"`
	CheckoutID          string    `json:"checkout_id,omitempty" db:"checkout_id"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// NewSession returns an empty session for chatID in state st.
func NewSession(chatID int64, st State) *Session {
	return &Session{ChatID: chatID, State: st}
}

// HasClientToken reports whether a credential has been stored.
func (s *Session) HasClientToken() bool {
	return s != nil && s.ClientToken != nil
}

// Clone returns a deep copy so stores never share memory with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.ClientToken != nil {
		tok := *s.ClientToken
		c.ClientToken = &tok
	}
	return &c
}

// Store persists sessions keyed by chat id.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns ErrNotFound when the chat has no session.
	Get(ctx context.Context, chatID int64) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, chatID int64) error
}

func touch(s *Session) {
	s.UpdatedAt = time.Now().UTC()
}
