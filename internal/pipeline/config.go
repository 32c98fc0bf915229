package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config controls the worker pool and retry policy.
type Config struct {
	Workers      int    `toml:"workers"`
	PollInterval string `toml:"poll_interval"`
	LeaseTimeout string `toml:"lease_timeout"`
	MaxAttempts  int    `toml:"max_attempts"`
	RetryBackoff string `toml:"retry_backoff"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Workers      string
	PollInterval string
	LeaseTimeout string
	MaxAttempts  string
	RetryBackoff string
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// LeaseTimeoutDuration returns LeaseTimeout as a time.Duration.
func (c *Config) LeaseTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.LeaseTimeout)
	return d
}

// RetryBackoffDuration returns RetryBackoff as a time.Duration.
func (c *Config) RetryBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryBackoff)
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
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.LeaseTimeout != "" {
		c.LeaseTimeout = overlay.LeaseTimeout
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.RetryBackoff != "" {
		c.RetryBackoff = overlay.RetryBackoff
	}
}

func (c *Config) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.PollInterval == "" {
		c.PollInterval = "1s"
	}
	if c.LeaseTimeout == "" {
		c.LeaseTimeout = "2m"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.RetryBackoff == "" {
		c.RetryBackoff = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Workers != "" {
		if v := os.Getenv(env.Workers); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Workers = n
			}
		}
	}
	if env.PollInterval != "" {
		if v := os.Getenv(env.PollInterval); v != "" {
			c.PollInterval = v
		}
	}
	if env.LeaseTimeout != "" {
		if v := os.Getenv(env.LeaseTimeout); v != "" {
			c.LeaseTimeout = v
		}
	}
	if env.MaxAttempts != "" {
		if v := os.Getenv(env.MaxAttempts); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxAttempts = n
			}
		}
	}
	if env.RetryBackoff != "" {
		if v := os.Getenv(env.RetryBackoff); v != "" {
			c.RetryBackoff = v
		}
	}
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive: %d", c.Workers)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive: %d", c.MaxAttempts)
	}
	if _, err := time.ParseDuration(c.PollInterval); err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.LeaseTimeout); err != nil {
		return fmt.Errorf("invalid lease_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.RetryBackoff); err != nil {
		return fmt.Errorf("invalid retry_backoff: %w", err)
	}
	return nil
}
