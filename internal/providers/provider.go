package providers

import (
	"fmt"
	"time"

	"github.com/guardai/guardai/internal/scan"
)

// Default operational tuning. Both are configuration, not contracts.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2

	defaultBackoff = 500 * time.Millisecond
)

// Config describes which backend to use and its connection parameters. It is
// constructed once at program start from CLI/environment input and passed
// explicitly into the dispatch layer; providers never read the environment.
type Config struct {
	Provider string
	Model    string
	APIKey   string

	// Custom server connection parameters.
	Host     string
	Port     int
	Token    string
	Endpoint string

	// Timeout bounds each HTTP round trip; exceeding it is a transient
	// failure subject to the retry policy.
	Timeout    time.Duration
	MaxRetries int

	// BaseURL overrides the hosted provider endpoint (tests, proxies).
	BaseURL string
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Config) retries() int {
	if c.MaxRetries < 0 {
		return 0
	}
	return c.MaxRetries
}

// DefaultModel returns the default model for a provider name.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "gemini", "google":
		return "gemini-2.0-flash"
	case "groq":
		return "llama-3.1-8b-instant"
	default:
		return ""
	}
}

// New creates an analyzer for the configured backend. Malformed
// configuration fails here, before any file is processed.
func New(cfg Config) (scan.Analyzer, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg)
	case "gemini", "google":
		return NewGemini(cfg)
	case "groq":
		return NewGroq(cfg)
	case "custom":
		return NewCustom(cfg)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
