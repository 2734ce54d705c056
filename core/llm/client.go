// Package llm calls an OpenAI-compatible chat-completion endpoint with
// bounded retries and substitutes a fallback text when every attempt fails.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/RagaBusiness/manoya-tg-bot/core/logger"
	"github.com/RagaBusiness/manoya-tg-bot/core/netutil"
)

// DefaultApology is the last-resort reply when no fallback is supplied.
const DefaultApology = "The analysis service is unavailable right now. Please try again later."

// ErrNoAPIKey is reported when the client runs without credentials.
var ErrNoAPIKey = errors.New("llm: api key is not configured")

// Completer returns a completion for prompt or fallback when the upstream fails.
type Completer interface {
	Complete(ctx context.Context, prompt, fallback string) string
}

// Client is a Completer backed by HTTP.
type Client struct {
	cfg  Config
	http *http.Client
	// sleep waits for d or until ctx ends; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// StatusError is returned for non-2xx upstream replies.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("llm: upstream status %d", e.Code)
	}
	return fmt.Sprintf("llm: upstream status %d: %s", e.Code, e.Body)
}

// New builds a client. A nil httpClient selects one built from cfg.Timeout.
func New(cfg Config, httpClient *http.Client) *Client {
	cfg.Normalize()
	if httpClient == nil {
		httpClient = netutil.BuildHTTPClient(netutil.ClientOptions{Timeout: cfg.Timeout, ResponseTimeout: cfg.Timeout})
	}
	return &Client{cfg: cfg, http: httpClient, sleep: sleepCtx}
}

// Complete never fails: after the last unsuccessful attempt it returns
// fallback, or the configured apology when fallback is blank.
func (c *Client) Complete(ctx context.Context, prompt, fallback string) string {
	if strings.TrimSpace(fallback) == "" {
		fallback = c.cfg.Apology
	}
	start := time.Now()
	backoff := c.cfg.Backoff
	var lastErr error
	attempt := 0
	for attempt < c.cfg.Attempts {
		attempt++
		content, code, err := c.do(ctx, prompt)
		if err == nil {
			logger.LogEvent(ctx, logger.LLM, slog.LevelInfo, "llm.complete",
				slog.String("status", "ok"),
				slog.String("model", c.cfg.Model),
				slog.Int("attempt", attempt),
				slog.Duration("duration", logger.Took(start)),
			)
			return content
		}
		lastErr = err
		if errors.Is(err, ErrNoAPIKey) || ctx.Err() != nil {
			break
		}
		if attempt >= c.cfg.Attempts {
			break
		}
		logger.LogEvent(ctx, logger.LLM, slog.LevelWarn, "llm.attempt",
			slog.String("status", "retry"),
			slog.Int("attempt", attempt),
			slog.Int("http_code", code),
			slog.Duration("backoff", backoff),
			slog.Any("err", err),
		)
		if err := c.sleep(ctx, backoff); err != nil {
			lastErr = err
			break
		}
		backoff *= 2
	}
	logger.LogEvent(ctx, logger.LLM, slog.LevelError, "llm.fallback",
		slog.String("status", "fallback"),
		slog.String("model", c.cfg.Model),
		slog.Int("attempts", attempt),
		slog.Duration("duration", logger.Took(start)),
		slog.Any("err", lastErr),
	)
	return fallback
}

// do performs one attempt and returns the content, the HTTP status and an error.
func (c *Client) do(ctx context.Context, prompt string) (string, int, error) {
	if c.cfg.APIKey == "" {
		return "", 0, ErrNoAPIKey
	}
	body, err := json.Marshal(completionRequest{
		Model:       c.cfg.Model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", 0, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", resp.StatusCode, &StatusError{Code: resp.StatusCode, Body: logger.SanitizeLimit(string(raw), 200)}
	}
	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil && out.Error.Message != "" {
		return "", resp.StatusCode, fmt.Errorf("llm error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", resp.StatusCode, errors.New("llm: response has no choices")
	}
	return out.Choices[0].Message.Content, resp.StatusCode, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
