package manoya

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RagaBusiness/manoya-tg-bot/bots/manoya/messages"
	"github.com/RagaBusiness/manoya-tg-bot/core/llm"
	"github.com/RagaBusiness/manoya-tg-bot/core/payment"
)

func TestLoadConfigFromYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  token: yaml-token
bot:
  locale: RU
llm:
  model: grok-test
payment:
  currency: eur
`), 0o600))
	t.Setenv("LLM_API_KEY", "llm-key")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_1")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com/webhook")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml-token", cfg.Telegram.Token)
	assert.Equal(t, messages.LocaleRU, cfg.Bot.Locale)
	assert.Equal(t, "grok-test", cfg.LLM.Model)
	assert.Equal(t, "llm-key", cfg.LLM.APIKey)
	assert.Equal(t, llm.DefaultAttempts, cfg.LLM.Attempts)
	assert.Equal(t, payment.ProviderStripe, cfg.Payment.Provider)
	assert.Equal(t, "eur", cfg.Payment.Currency)
	assert.True(t, cfg.CoreConfig().WebhookEnabled())
}

func TestConfigNormalizeRejects(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "t"
	cfg.Bot.Locale = "de"
	assert.Error(t, cfg.Normalize())

	cfg = &Config{}
	cfg.Telegram.Token = "t"
	cfg.Storage.Backend = "postgres"
	assert.Error(t, cfg.Normalize())

	cfg = &Config{}
	cfg.Telegram.Token = "t"
	cfg.Payment.Provider = "paypal"
	assert.Error(t, cfg.Normalize())
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "t"
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, messages.LocaleEN, cfg.Bot.Locale)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.False(t, cfg.Payment.Configured())
	assert.False(t, cfg.LLM.Enabled())
}
