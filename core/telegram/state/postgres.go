package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	pgSelectSession = `SELECT chat_id, state, business_description, analysis, client_token, checkout_id, updated_at
FROM dialog_sessions WHERE chat_id = $1`
	pgUpsertSession = `INSERT INTO dialog_sessions
	(chat_id, state, business_description, analysis, client_token, checkout_id, updated_at)
VALUES (:chat_id, :state, :business_description, :analysis, :client_token, :checkout_id, :updated_at)
ON CONFLICT (chat_id) DO UPDATE SET
	state = EXCLUDED.state,
	business_description = EXCLUDED.business_description,
	analysis = EXCLUDED.analysis,
	client_token = EXCLUDED.client_token,
	checkout_id = EXCLUDED.checkout_id,
	updated_at = EXCLUDED.updated_at`
	pgDeleteSession = `DELETE FROM dialog_sessions WHERE chat_id = $1`
)

// PostgresStore keeps sessions in the dialog_sessions table.
// Rows older than ttl are treated as absent and removed on read.
type PostgresStore struct {
	db  *sqlx.DB
	ttl time.Duration
}

// NewPostgresStore wraps an open connection. The table is created by migrations.
func NewPostgresStore(db *sqlx.DB, ttl time.Duration) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl}
}

// Get loads the chat session.
func (p *PostgresStore) Get(ctx context.Context, chatID int64) (*Session, error) {
	var s Session
	if err := p.db.GetContext(ctx, &s, pgSelectSession, chatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	if p.ttl > 0 && time.Since(s.UpdatedAt) > p.ttl {
		if err := p.Delete(ctx, chatID); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return &s, nil
}

// Put upserts the chat session.
func (p *PostgresStore) Put(ctx context.Context, s *Session) error {
	if s == nil {
		return fmt.Errorf("state: nil session")
	}
	touch(s)
	if _, err := p.db.NamedExecContext(ctx, pgUpsertSession, s); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Delete removes the chat session.
func (p *PostgresStore) Delete(ctx context.Context, chatID int64) error {
	if _, err := p.db.ExecContext(ctx, pgDeleteSession, chatID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
