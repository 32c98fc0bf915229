package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jbony2888/entryflow/internal/extraction"
	"github.com/jbony2888/entryflow/internal/pipeline"
	"github.com/jbony2888/entryflow/internal/signal"
	"github.com/jbony2888/entryflow/internal/watch"
	"github.com/jbony2888/entryflow/pkg/database"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvEntryflowEnv             = "ENTRYFLOW_ENV"
	EnvEntryflowShutdownTimeout = "ENTRYFLOW_SHUTDOWN_TIMEOUT"
	EnvEntryflowVersion         = "ENTRYFLOW_VERSION"
)

var extractionEnv = &extraction.Env{
	Provider: "ENTRYFLOW_EXTRACTION_PROVIDER",
	Endpoint: "ENTRYFLOW_EXTRACTION_ENDPOINT",
	Token:    "ENTRYFLOW_EXTRACTION_TOKEN",
	Timeout:  "ENTRYFLOW_EXTRACTION_TIMEOUT",
	Page:     "ENTRYFLOW_EXTRACTION_PAGE",
}

var signalEnv = &signal.Env{
	Enabled: "ENTRYFLOW_SIGNAL_ENABLED",
	BaseURL: "ENTRYFLOW_SIGNAL_BASE_URL",
	APIKey:  "ENTRYFLOW_SIGNAL_API_KEY",
	Model:   "ENTRYFLOW_SIGNAL_MODEL",
	Timeout: "ENTRYFLOW_SIGNAL_TIMEOUT",
}

var pipelineEnv = &pipeline.Env{
	Workers:      "ENTRYFLOW_PIPELINE_WORKERS",
	PollInterval: "ENTRYFLOW_PIPELINE_POLL_INTERVAL",
	LeaseTimeout: "ENTRYFLOW_PIPELINE_LEASE_TIMEOUT",
	MaxAttempts:  "ENTRYFLOW_PIPELINE_MAX_ATTEMPTS",
	RetryBackoff: "ENTRYFLOW_PIPELINE_RETRY_BACKOFF",
}

var watchEnv = &watch.Env{
	Enabled:    "ENTRYFLOW_WATCH_ENABLED",
	Dir:        "ENTRYFLOW_WATCH_DIR",
	Settle:     "ENTRYFLOW_WATCH_SETTLE",
	Extensions: "ENTRYFLOW_WATCH_EXTENSIONS",
	Owner:      "ENTRYFLOW_WATCH_OWNER",
}

var databaseEnv = &database.Env{
	Host:            "ENTRYFLOW_DB_HOST",
	Port:            "ENTRYFLOW_DB_PORT",
	Name:            "ENTRYFLOW_DB_NAME",
	User:            "ENTRYFLOW_DB_USER",
	Password:        "ENTRYFLOW_DB_PASSWORD",
	SSLMode:         "ENTRYFLOW_DB_SSL_MODE",
	MaxOpenConns:    "ENTRYFLOW_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ENTRYFLOW_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ENTRYFLOW_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ENTRYFLOW_DB_CONN_TIMEOUT",
}

// Config is the root configuration for the entryflow service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	API             APIConfig         `toml:"api"`
	Extraction      extraction.Config `toml:"extraction"`
	Signal          signal.Config     `toml:"signal"`
	Pipeline        pipeline.Config   `toml:"pipeline"`
	Watch           watch.Config      `toml:"watch"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the ENTRYFLOW_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvEntryflowEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.API.Merge(&overlay.API)
	c.Extraction.Merge(&overlay.Extraction)
	c.Signal.Merge(&overlay.Signal)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Watch.Merge(&overlay.Watch)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Extraction.Finalize(extractionEnv); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}
	if err := c.Signal.Finalize(signalEnv); err != nil {
		return fmt.Errorf("signal: %w", err)
	}
	if err := c.Pipeline.Finalize(pipelineEnv); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Watch.Finalize(watchEnv); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvEntryflowShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvEntryflowVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvEntryflowEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
