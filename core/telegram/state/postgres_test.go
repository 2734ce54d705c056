package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionColumns = []string{"chat_id", "state", "business_description", "analysis", "client_token", "checkout_id", "updated_at"}

func newPostgresStore(t *testing.T, ttl time.Duration) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresStore(sqlx.NewDb(db, "postgres"), ttl), mock
}

func TestPostgresStoreGet(t *testing.T) {
	st, mock := newPostgresStore(t, 0)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT chat_id, state").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(sessionColumns).
			AddRow(int64(3), "awaiting_connection", "shop", "analysis", "tok", "cs_1", now))

	got, err := st.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, AwaitingConnection, got.State)
	require.NotNil(t, got.ClientToken)
	assert.Equal(t, "tok", *got.ClientToken)
	assert.Equal(t, "cs_1", got.CheckoutID)
}

func TestPostgresStoreGetMissing(t *testing.T) {
	st, mock := newPostgresStore(t, 0)
	mock.ExpectQuery("SELECT chat_id, state").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(sessionColumns))

	_, err := st.Get(context.Background(), 4)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStoreGetExpired(t *testing.T) {
	st, mock := newPostgresStore(t, time.Minute)
	old := time.Now().Add(-time.Hour)
	mock.ExpectQuery("SELECT chat_id, state").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(sessionColumns).
			AddRow(int64(5), "awaiting_payment", "", "", nil, "", old))
	mock.ExpectExec("DELETE FROM dialog_sessions").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := st.Get(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStorePut(t *testing.T) {
	st, mock := newPostgresStore(t, 0)
	mock.ExpectExec("INSERT INTO dialog_sessions").
		WithArgs(int64(6), "awaiting_payment", "candles", "analysis", sqlmock.AnyArg(), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewSession(6, AwaitingPayment)
	s.BusinessDescription = "candles"
	s.Analysis = "analysis"
	require.NoError(t, st.Put(context.Background(), s))
	assert.False(t, s.UpdatedAt.IsZero())
}

func TestPostgresStoreErrors(t *testing.T) {
	st, mock := newPostgresStore(t, 0)
	mock.ExpectExec("DELETE FROM dialog_sessions").
		WithArgs(int64(8)).
		WillReturnError(errors.New("conn reset"))

	err := st.Delete(context.Background(), 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conn reset")
}
