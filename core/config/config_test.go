package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeInfersRunMode(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t"}}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, "", cfg.HTTPAddr())

	cfg = &Config{
		Telegram: TelegramConfig{Token: "t"},
		Webhook:  WebhookConfig{URL: "https://bot.example.com/webhook"},
	}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeWebhook, cfg.Telegram.RunMode)
	assert.True(t, cfg.WebhookEnabled())
	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.Equal(t, "/webhook", cfg.Webhook.Path)
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	cases := map[string]*Config{
		"missing token":   {},
		"bad run mode":    {Telegram: TelegramConfig{Token: "t", RunMode: "carrier-pigeon"}},
		"webhook w/o url": {Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}},
		"redis w/o url":   {Telegram: TelegramConfig{Token: "t"}, Storage: StorageConfig{Backend: "redis"}},
		"bad backend":     {Telegram: TelegramConfig{Token: "t"}, Storage: StorageConfig{Backend: "etcd"}},
		"root path":       {Telegram: TelegramConfig{Token: "t"}, Webhook: WebhookConfig{Path: "/"}},
		"bad exclusion":   {Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"poll"}}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, Normalize(cfg))
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "t", RunMode: "polling"},
		Webhook:   WebhookConfig{Path: "hook"},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{" Callback "}},
	}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, "/hook", cfg.Webhook.Path)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, "manoya:session:", cfg.Storage.KeyPrefix)
	assert.Equal(t, 1, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"callback"}, cfg.RateLimit.ExcludeUpdates)
}

func TestLoadYAMLWithEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := []byte(`
telegram:
  token: from-file
storage:
  backend: memory
  session_ttl: 30m
`)
	require.NoError(t, os.WriteFile(path, yml, 0o600))
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, 30*time.Minute, cfg.Storage.SessionTTL)
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-only")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-only", cfg.Telegram.Token)
}
