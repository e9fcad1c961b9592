package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config represents the reqline configuration
type Config struct {
	Listen                 string            `yaml:"listen" envconfig:"REQLINE_LISTEN"`
	Timeout                time.Duration     `yaml:"timeout" envconfig:"REQLINE_TIMEOUT"`
	FollowRedirects        bool              `yaml:"followRedirects" envconfig:"REQLINE_FOLLOW_REDIRECTS"`
	MaxRedirects           int               `yaml:"maxRedirects" envconfig:"REQLINE_MAX_REDIRECTS"`
	ValidateSSL            bool              `yaml:"validateSSL" envconfig:"REQLINE_VALIDATE_SSL"`
	Proxy                  string            `yaml:"proxy,omitempty" envconfig:"REQLINE_PROXY"`
	Headers                map[string]string `yaml:"headers,omitempty" envconfig:"REQLINE_HEADERS"` // Default headers for all requests
	ExecutionFailureStatus int               `yaml:"executionFailureStatus" envconfig:"REQLINE_EXECUTION_FAILURE_STATUS"`
	Log                    LogConfig         `yaml:"log" ignored:"true"`
	History                HistoryConfig     `yaml:"history" ignored:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level" envconfig:"REQLINE_LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"REQLINE_LOG_FORMAT"`
}

type HistoryConfig struct {
	Path string `yaml:"path" envconfig:"REQLINE_HISTORY_PATH"` // empty disables history
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".reqline.yaml",
	".reqline.yml",
	"reqline.yaml",
}

// LoadConfig loads configuration from the specified path or searches for
// config files, then applies REQLINE_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path != "" {
		cfg, err = loadConfigFromFile(path)
	} else {
		cfg, err = FindAndLoadConfig(".")
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return config, nil
}

// ApplyEnv overrides fields from environment variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	// nested sections carry their own full variable names
	for _, spec := range []any{c, &c.Log, &c.History} {
		if err := envconfig.Process("", spec, lookup); err != nil {
			return fmt.Errorf("reading environment: %w", err)
		}
	}
	return nil
}

// Validate checks values that cannot be caught by decoding
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("maxRedirects must not be negative, got %d", c.MaxRedirects)
	}
	if c.ExecutionFailureStatus < 400 || c.ExecutionFailureStatus > 599 {
		return fmt.Errorf("executionFailureStatus must be a 4xx or 5xx code, got %d", c.ExecutionFailureStatus)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected text or json)", c.Log.Format)
	}
	return nil
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
