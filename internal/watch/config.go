package watch

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls the watch-folder ingester.
type Config struct {
	Enabled    bool     `toml:"enabled"`
	Dir        string   `toml:"dir"`
	Settle     string   `toml:"settle"`
	Extensions []string `toml:"extensions"`
	Owner      string   `toml:"owner"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled    string
	Dir        string
	Settle     string
	Extensions string
	Owner      string
}

// SettleDuration returns Settle as a time.Duration.
func (c *Config) SettleDuration() time.Duration {
	d, _ := time.ParseDuration(c.Settle)
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

// Merge overwrites non-zero fields from overlay. Enabled always applies.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
	if overlay.Settle != "" {
		c.Settle = overlay.Settle
	}
	if len(overlay.Extensions) > 0 {
		c.Extensions = overlay.Extensions
	}
	if overlay.Owner != "" {
		c.Owner = overlay.Owner
	}
}

func (c *Config) loadDefaults() {
	if c.Settle == "" {
		c.Settle = "2s"
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".pdf", ".txt"}
	}
	if c.Owner == "" {
		c.Owner = "watch-folder"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
	}
	if env.Dir != "" {
		if v := os.Getenv(env.Dir); v != "" {
			c.Dir = v
		}
	}
	if env.Settle != "" {
		if v := os.Getenv(env.Settle); v != "" {
			c.Settle = v
		}
	}
	if env.Extensions != "" {
		if v := os.Getenv(env.Extensions); v != "" {
			c.Extensions = strings.Split(v, ",")
		}
	}
	if env.Owner != "" {
		if v := os.Getenv(env.Owner); v != "" {
			c.Owner = v
		}
	}
}

func (c *Config) validate() error {
	if c.Enabled && c.Dir == "" {
		return fmt.Errorf("dir required when watching is enabled")
	}
	if _, err := time.ParseDuration(c.Settle); err != nil {
		return fmt.Errorf("invalid settle: %w", err)
	}
	return nil
}
