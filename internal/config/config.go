// Package config loads and persists revlens configuration from
// .revlens/config.json under the repository root.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete revlens configuration.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Cache     CacheConfig               `json:"cache" mapstructure:"cache"`
	Providers map[string]ProviderConfig `json:"providers" mapstructure:"providers"`
	Watcher   WatcherConfig             `json:"watcher" mapstructure:"watcher"`
	History   HistoryConfig             `json:"history" mapstructure:"history"`
	Logging   LoggingConfig             `json:"logging" mapstructure:"logging"`
}

// CacheConfig controls the resolution cache. A TTL of zero or below
// disables caching.
type CacheConfig struct {
	TTLSeconds int `json:"ttlSeconds" mapstructure:"ttlSeconds"`
}

// ProviderConfig carries per-provider overrides. BaseURL points resolution
// at a self-hosted API root; TokenEnv names an extra environment variable
// consulted for the credential.
type ProviderConfig struct {
	BaseURL  string `json:"baseUrl" mapstructure:"baseUrl"`
	TokenEnv string `json:"tokenEnv" mapstructure:"tokenEnv"`
}

// WatcherConfig controls the repository mutation watcher.
type WatcherConfig struct {
	Enabled        bool `json:"enabled" mapstructure:"enabled"`
	DebounceMs     int  `json:"debounceMs" mapstructure:"debounceMs"`
	PollIntervalMs int  `json:"pollIntervalMs" mapstructure:"pollIntervalMs"`
}

// HistoryConfig controls the resolution history log.
type HistoryConfig struct {
	Enabled       bool `json:"enabled" mapstructure:"enabled"`
	RetentionDays int  `json:"retentionDays" mapstructure:"retentionDays"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Cache: CacheConfig{
			TTLSeconds: 300,
		},
		Providers: map[string]ProviderConfig{
			"gitlab": {},
			"github": {},
		},
		Watcher: WatcherConfig{
			Enabled:        true,
			DebounceMs:     500,
			PollIntervalMs: 2000,
		},
		History: HistoryConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .revlens/config.json. A missing file
// yields the defaults.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("cache.ttlSeconds", 300)
	v.SetDefault("watcher.enabled", true)
	v.SetDefault("watcher.debounceMs", 500)
	v.SetDefault("watcher.pollIntervalMs", 2000)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.retentionDays", 30)
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".revlens"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Providers == nil {
		cfg.Providers = map[string]ProviderConfig{}
	}

	return &cfg, nil
}

// Save writes the configuration to .revlens/config.json.
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".revlens")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	switch c.Logging.Format {
	case "", "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "must be debug, info, warn or error"}
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
