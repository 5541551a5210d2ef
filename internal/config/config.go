// Package config loads vigil's configuration from YAML and environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
	Polling PollingConfig `mapstructure:"polling" yaml:"polling"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// ServerConfig points at the alerting service.
type ServerConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// UIConfig holds interface preferences.
type UIConfig struct {
	PageSize   int    `mapstructure:"page_size" yaml:"page_size"`
	DateFormat string `mapstructure:"date_format" yaml:"date_format"`
	Theme      string `mapstructure:"theme" yaml:"theme"`
}

// PollingConfig holds the refresh period of each polling loop.
type PollingConfig struct {
	Feed      time.Duration `mapstructure:"feed" yaml:"feed"`
	Severity  time.Duration `mapstructure:"severity" yaml:"severity"`
	Offenders time.Duration `mapstructure:"offenders" yaml:"offenders"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Path  string `mapstructure:"path" yaml:"path"`
}

// Dir returns the vigil config directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "vigil")
}

func applyDefaults() {
	viper.SetDefault("server.base_url", "http://localhost:8080/api")
	viper.SetDefault("server.timeout", 10*time.Second)
	viper.SetDefault("ui.page_size", 10)
	viper.SetDefault("ui.date_format", "Jan 2 15:04:05")
	viper.SetDefault("ui.theme", "dark")
	viper.SetDefault("polling.feed", 5*time.Second)
	viper.SetDefault("polling.severity", 5*time.Second)
	viper.SetDefault("polling.offenders", 10*time.Second)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.path", "")
}

// Load reads configuration from ~/.config/vigil/config.yaml and VIGIL_*
// environment variables. A missing config file is created with defaults.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(Dir())
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("VIGIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	applyDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file yet; materialize the defaults for next time.
		if werr := writeDefaultConfig(); werr != nil {
			// Not fatal: run on defaults, just without persistence.
			fmt.Fprintf(os.Stderr, "warning: could not write default config: %v\n", werr)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// writeDefaultConfig persists the default configuration as YAML.
func writeDefaultConfig() error {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return err
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644)
}

// Validate rejects configurations the client cannot run with.
func Validate(cfg *Config) error {
	if cfg.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url cannot be empty")
	}
	u, err := url.Parse(cfg.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server.base_url must be an http(s) URL, got %q", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", cfg.Server.Timeout)
	}
	if cfg.UI.PageSize <= 0 {
		return fmt.Errorf("ui.page_size must be positive, got %d", cfg.UI.PageSize)
	}
	if cfg.Polling.Feed <= 0 || cfg.Polling.Severity <= 0 || cfg.Polling.Offenders <= 0 {
		return fmt.Errorf("polling intervals must be positive")
	}
	return nil
}
