package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, "test:session:", ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, mr := newRedisStore(t, 0)

	_, err := st.Get(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)

	s := NewSession(42, AwaitingPayment)
	s.BusinessDescription = "candles"
	s.Analysis = "sell more candles"
	require.NoError(t, st.Put(ctx, s))
	assert.True(t, mr.Exists("test:session:42"))
	assert.Equal(t, time.Duration(0), mr.TTL("test:session:42"))

	got, err := st.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, AwaitingPayment, got.State)
	assert.Equal(t, "candles", got.BusinessDescription)
	assert.Nil(t, got.ClientToken)

	require.NoError(t, st.Delete(ctx, 42))
	_, err = st.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreTTL(t *testing.T) {
	ctx := context.Background()
	st, mr := newRedisStore(t, time.Hour)
	require.NoError(t, st.Put(ctx, NewSession(7, AwaitingBusiness)))
	assert.Equal(t, time.Hour, mr.TTL("test:session:7"))

	mr.FastForward(2 * time.Hour)
	_, err := st.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreCorruptValue(t *testing.T) {
	st, mr := newRedisStore(t, 0)
	require.NoError(t, mr.Set("test:session:9", "{not json"))
	_, err := st.Get(context.Background(), 9)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "http://nope")
	assert.Error(t, err)
}
