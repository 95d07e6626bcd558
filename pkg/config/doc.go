// Package config handles configuration management for fnassist.
// It layers embedded TOML defaults, an optional user file (TOML or YAML),
// FNASSIST_ environment variables and command-line overrides with koanf.
package config
