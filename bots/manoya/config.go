package manoya

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/RagaBusiness/manoya-tg-bot/bots/manoya/messages"
	coreconfig "github.com/RagaBusiness/manoya-tg-bot/core/config"
	coredatabase "github.com/RagaBusiness/manoya-tg-bot/core/database"
	"github.com/RagaBusiness/manoya-tg-bot/core/llm"
	"github.com/RagaBusiness/manoya-tg-bot/core/payment"
)

// BotConfig holds conversation settings.
type BotConfig struct {
	// Locale selects reply and prompt language: "en" (default) or "ru".
	Locale string `yaml:"locale" envconfig:"BOT_LOCALE"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	LLM      llm.Config          `yaml:"llm"`
	Payment  payment.Config      `yaml:"payment"`
	Bot      BotConfig           `yaml:"bot"`
}

// CoreConfig returns the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads the optional YAML file at path, overlays environment
// variables and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.ReadYAML(path, true, &cfg); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	c.LLM.Normalize()
	if err := c.Payment.Normalize(); err != nil {
		return err
	}
	locale := strings.ToLower(strings.TrimSpace(c.Bot.Locale))
	switch locale {
	case "":
		locale = messages.LocaleEN
	case messages.LocaleEN, messages.LocaleRU:
	default:
		return fmt.Errorf("invalid bot.locale %q; allowed: en, ru", c.Bot.Locale)
	}
	c.Bot.Locale = locale
	if c.Storage.Backend == coreconfig.StoragePostgres && strings.TrimSpace(c.Database.Host) == "" {
		return fmt.Errorf("database.host is required when storage.backend is 'postgres'")
	}
	if c.Database.Port == "" {
		c.Database.Port = "5432"
	}
	return nil
}
