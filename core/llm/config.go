package llm

import "time"

const (
	// DefaultEndpoint is the xAI chat-completion endpoint.
	DefaultEndpoint = "https://api.x.ai/v1/chat/completions"
	// DefaultModel is the model identifier sent with every request.
	DefaultModel = "grok-3"
	// DefaultTemperature is the sampling temperature sent with every request.
	DefaultTemperature = 0.7
	// DefaultAttempts is the total number of upstream attempts per call.
	DefaultAttempts = 3
	// DefaultBackoff is the wait before the second attempt; it doubles afterwards.
	DefaultBackoff = 2 * time.Second
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 60 * time.Second
)

// Config describes the chat-completion endpoint.
type Config struct {
	APIKey      string        `yaml:"api_key" envconfig:"LLM_API_KEY"`
	Endpoint    string        `yaml:"endpoint" envconfig:"LLM_ENDPOINT"`
	Model       string        `yaml:"model" envconfig:"LLM_MODEL"`
	Temperature float64       `yaml:"temperature" envconfig:"LLM_TEMPERATURE"`
	Attempts    int           `yaml:"attempts" envconfig:"LLM_ATTEMPTS"`
	Backoff     time.Duration `yaml:"backoff" envconfig:"LLM_BACKOFF"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"LLM_TIMEOUT"`
	// Apology is returned when a call fails and the caller passed no fallback.
	Apology string `yaml:"apology"`
}

// Normalize fills defaults for zero values.
func (c *Config) Normalize() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Attempts <= 0 {
		c.Attempts = DefaultAttempts
	}
	if c.Backoff <= 0 {
		c.Backoff = DefaultBackoff
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Apology == "" {
		c.Apology = DefaultApology
	}
}

// Enabled reports whether an API key is configured.
func (c Config) Enabled() bool { return c.APIKey != "" }
