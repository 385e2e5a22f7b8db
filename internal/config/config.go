package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Defaults used when neither the config file, the environment nor flags set a value.
const (
	DefaultHost         = "localhost"
	DefaultPort         = 12345
	DefaultRefreshDelay = 300 * time.Millisecond
)

// Environment variables that override the config file.
const (
	EnvHost = "FILEXFER_HOST"
	EnvPort = "FILEXFER_PORT"
)

// Config holds application configuration. It seeds the initial connection
// target; edits made in the UI are never written back.
type Config struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// RefreshDelayMS is how long host/port edits settle before the file
	// list is refetched. Zero refreshes on every edit.
	RefreshDelayMS *int `json:"refresh_delay_ms,omitempty"`
	// RequestTimeoutSeconds bounds each request. Zero means no timeout.
	RequestTimeoutSeconds int    `json:"request_timeout_seconds,omitempty"`
	UserAgent             string `json:"user_agent,omitempty"`
}

// Default returns a config populated with the built-in defaults.
func Default() *Config {
	return &Config{Host: DefaultHost, Port: DefaultPort}
}

// RefreshDelay returns the debounce applied to connection target edits.
func (c *Config) RefreshDelay() time.Duration {
	if c.RefreshDelayMS == nil {
		return DefaultRefreshDelay
	}
	if *c.RefreshDelayMS <= 0 {
		return 0
	}
	return time.Duration(*c.RefreshDelayMS) * time.Millisecond
}

// RequestTimeout returns the per-request timeout, zero for none.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Path returns the default config file location.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "filexfer", "config.json")
}

// Load reads the config from the default location.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at p. A missing file yields the defaults. An
// unparsable file is logged and also yields the defaults.
func LoadFrom(p string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", p, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		log.Warn().Err(err).Str("path", p).Msg("ignoring malformed config file")
		return Default(), nil
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	return cfg, nil
}

// Save writes the config to the default location.
func Save(cfg *Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to p, creating parent directories.
func SaveTo(p string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0600); err != nil {
		return fmt.Errorf("write config %s: %w", p, err)
	}
	FixOwnership(p)
	return nil
}

// ApplyEnv overrides host and port from the environment. An unparsable
// port is reported and left unchanged.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if h := getenv(EnvHost); h != "" {
		c.Host = h
	}
	if p := getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Port = port
	}
	return nil
}
