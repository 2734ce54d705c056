package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedSleep struct {
	waits []time.Duration
}

func (r *recordedSleep) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *recordedSleep, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{APIKey: "secret", Endpoint: srv.URL}, srv.Client())
	rec := &recordedSleep{}
	c.sleep = rec.sleep
	return c, rec, &calls
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":` + jsonString(content) + `}}]}`))
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestCompleteSuccess(t *testing.T) {
	c, rec, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, DefaultTemperature, req.Temperature)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "hello", req.Messages[0].Content)
		writeCompletion(w, "world")
	})

	assert.Equal(t, "world", c.Complete(context.Background(), "hello", "fb"))
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, rec.waits)
}

func TestCompleteRetriesThenSucceeds(t *testing.T) {
	var n atomic.Int32
	c, rec, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if n.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		writeCompletion(w, "third time")
	})

	assert.Equal(t, "third time", c.Complete(context.Background(), "p", "fb"))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.waits)
}

func TestCompleteExhaustedReturnsFallback(t *testing.T) {
	c, rec, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})

	assert.Equal(t, "heuristic summary", c.Complete(context.Background(), "p", "heuristic summary"))
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, rec.waits, 2)
}

func TestCompleteBlankFallbackUsesApology(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	got := c.Complete(context.Background(), "p", "  ")
	assert.Equal(t, DefaultApology, got)
	assert.NotEmpty(t, got)
}

func TestCompleteUndecodableBodyIsRetried(t *testing.T) {
	c, _, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	assert.Equal(t, "fb", c.Complete(context.Background(), "p", "fb"))
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteStopsOnCancel(t *testing.T) {
	c, _, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "busy", http.StatusTooManyRequests)
	})
	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	assert.Equal(t, "fb", c.Complete(ctx, "p", "fb"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteWithoutKey(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls.Add(1) }))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL}, srv.Client())
	assert.Equal(t, "fb", c.Complete(context.Background(), "p", "fb"))
	assert.Equal(t, int32(0), calls.Load())
}

func TestSleepCtx(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))
}

func TestConfigNormalize(t *testing.T) {
	var cfg Config
	cfg.Normalize()
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultAttempts, cfg.Attempts)
	assert.Equal(t, DefaultBackoff, cfg.Backoff)
	assert.False(t, cfg.Enabled())
}
