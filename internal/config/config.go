package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the guardai configuration.
type Config struct {
	Provider       string        `yaml:"provider" json:"provider"`
	Model          string        `yaml:"model" json:"model"`
	Format         string        `yaml:"format" json:"format"`
	FailOn         string        `yaml:"fail_on" json:"failOn"`
	TimeoutSeconds int           `yaml:"timeout_seconds" json:"timeoutSeconds"`
	MaxRetries     int           `yaml:"max_retries" json:"maxRetries"`
	MaxFileBytes   int           `yaml:"max_file_bytes" json:"maxFileBytes"`
	Exclude        []string      `yaml:"exclude" json:"exclude"`
	Custom         CustomConfig  `yaml:"custom" json:"custom"`
	Privacy        PrivacyConfig `yaml:"privacy" json:"privacy"`
}

// CustomConfig holds connection parameters for the custom provider. The
// bearer token is never stored in the config file; it comes from the
// GUARDAI_CUSTOM_TOKEN environment variable or the --token flag.
type CustomConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
}

// PrivacyConfig controls secret redaction before content leaves the machine.
type PrivacyConfig struct {
	RedactSecrets bool     `yaml:"redact_secrets" json:"redactSecrets"`
	RedactPaths   []string `yaml:"redact_paths" json:"redactPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:       "openai",
		Format:         "text",
		FailOn:         "high",
		TimeoutSeconds: 30,
		MaxRetries:     2,
		MaxFileBytes:   262144,
		Exclude:        []string{"vendor/**", "node_modules/**", "**/*.min.js", "**/dist/**"},
		Custom: CustomConfig{
			Endpoint: "/api/v1/scan",
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for guardai.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "guardai"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "guardai"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "guardai"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "guardai"), nil
	default:
		return filepath.Join(home, ".config", "guardai"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile applies the config file on top of cfg. A missing file is not an
// error; absent YAML keys leave the existing values untouched.
func LoadFile(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags (only set values).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()
	if err := LoadFile(&cfg); err != nil {
		return Config{}, err
	}
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails fast on malformed configuration, before any file is read.
func Validate(cfg Config) error {
	switch cfg.Provider {
	case "openai", "gemini", "google", "groq", "custom":
	default:
		return fmt.Errorf("unknown provider: %s (supported: openai, gemini, groq, custom)", cfg.Provider)
	}
	switch cfg.FailOn {
	case "none", "low", "medium", "high", "critical":
	default:
		return fmt.Errorf("invalid fail_on threshold: %s (supported: none, low, medium, high, critical)", cfg.FailOn)
	}
	switch cfg.Format {
	case "text", "json", "markdown", "sarif":
	default:
		return fmt.Errorf("unsupported output format: %s", cfg.Format)
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	return nil
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("GUARDAI_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("GUARDAI_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("GUARDAI_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("GUARDAI_FAIL_ON"); v != "" {
		cfg.FailOn = v
	}
	if v := os.Getenv("GUARDAI_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("GUARDAI_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("GUARDAI_CUSTOM_HOST"); v != "" {
		cfg.Custom.Host = v
	}
	if v := os.Getenv("GUARDAI_CUSTOM_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Custom.Port = n
		}
	}
	if v := os.Getenv("GUARDAI_CUSTOM_ENDPOINT"); v != "" {
		cfg.Custom.Endpoint = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		// Flag keys mirror SetField keys.
		_ = SetField(cfg, key, value)
	}
}

// SetField sets a single config field by key name. Returns an error if the
// key is unknown or the value does not parse.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "fail_on":
		cfg.FailOn = value
	case "timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeout_seconds must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	case "max_retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_retries must be an integer: %w", err)
		}
		cfg.MaxRetries = n
	case "max_file_bytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_file_bytes must be an integer: %w", err)
		}
		cfg.MaxFileBytes = n
	case "exclude":
		cfg.Exclude = splitList(value)
	case "custom.host":
		cfg.Custom.Host = value
	case "custom.port":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("custom.port must be an integer: %w", err)
		}
		cfg.Custom.Port = n
	case "custom.endpoint":
		cfg.Custom.Endpoint = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
