package config

import (
	"net/http"
	"time"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Listen:                 ":8080",
		Timeout:                30 * time.Second,
		FollowRedirects:        true,
		MaxRedirects:           10,
		ValidateSSL:            true,
		Proxy:                  "",
		Headers:                nil,
		ExecutionFailureStatus: http.StatusBadGateway,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		History: HistoryConfig{
			Path: "",
		},
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Listen == defaults.Listen &&
		c.Timeout == defaults.Timeout &&
		c.FollowRedirects == defaults.FollowRedirects &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.ValidateSSL == defaults.ValidateSSL &&
		c.Proxy == defaults.Proxy &&
		len(c.Headers) == 0 &&
		c.ExecutionFailureStatus == defaults.ExecutionFailureStatus &&
		c.Log == defaults.Log &&
		c.History == defaults.History
}
