// Package config handles configuration loading and management for reqline.
//
// It provides functionality for:
//   - Loading configuration from .reqline.yaml or .reqline.yml files
//   - Default configuration values
//   - REQLINE_* environment variable overrides
package config
