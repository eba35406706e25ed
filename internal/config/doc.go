// Package config loads and merges guardai configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (GUARDAI_PROVIDER, GUARDAI_FAIL_ON, etc.)
//  3. Config file ($XDG_CONFIG_HOME/guardai/config.yaml)
//  4. Built-in defaults
//
// API keys are deliberately not part of the config file; they are read from
// provider-specific environment variables (or flags) once at startup and
// carried in an explicit providers.Config value.
package config
