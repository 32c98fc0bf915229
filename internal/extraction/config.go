package extraction

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Provider names accepted by Config.
const (
	ProviderHosted = "hosted"
	ProviderLocal  = "local"
	ProviderStub   = "stub"
)

// Config selects and parameterizes the extraction provider.
type Config struct {
	Provider string `toml:"provider"`
	Endpoint string `toml:"endpoint"`
	Token    string `toml:"token"`
	Timeout  string `toml:"timeout"`
	Page     int    `toml:"page"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider string
	Endpoint string
	Token    string
	Timeout  string
	Page     string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Page != 0 {
		c.Page = overlay.Page
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.Page == 0 {
		c.Page = 1
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Provider != "" {
		if v := os.Getenv(env.Provider); v != "" {
			c.Provider = v
		}
	}
	if env.Endpoint != "" {
		if v := os.Getenv(env.Endpoint); v != "" {
			c.Endpoint = v
		}
	}
	if env.Token != "" {
		if v := os.Getenv(env.Token); v != "" {
			c.Token = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.Page != "" {
		if v := os.Getenv(env.Page); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Page = n
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderHosted:
		if c.Endpoint == "" {
			return fmt.Errorf("endpoint required for hosted provider")
		}
	case ProviderLocal, ProviderStub:
	default:
		return fmt.Errorf("unknown provider: %q", c.Provider)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.Page < 1 {
		return fmt.Errorf("page must be positive")
	}
	return nil
}

// New creates the adapter selected by the config.
func New(cfg *Config, logger *slog.Logger) (Adapter, error) {
	switch cfg.Provider {
	case ProviderHosted:
		return newHosted(cfg, logger), nil
	case ProviderLocal:
		return NewLocal(logger), nil
	case ProviderStub:
		return NewStub(Result{Text: "", Confidence: 0.0, Provider: ProviderStub}), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", cfg.Provider)
	}
}
