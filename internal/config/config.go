// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/cv-assistant/internal/llm"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults, environment variables or CLI flags.
type Config struct {
	// Generation
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`   // Gemini API key, used when the store has none
	Model   string `json:"model,omitempty" yaml:"model,omitempty"`       // Model name placed in the endpoint path
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"` // Generative language API root
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`   // "rest" or "sdk"
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`   // Per-call timeout, e.g. "90s"; empty means none

	// Storage
	StorePath   string `json:"store_path,omitempty" yaml:"store_path,omitempty"`     // SQLite file
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	OutputDir   string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`     // Directory for exported text files

	// Server
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // Use headless browser for SPA job pages
	Verbose    bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`         // Print detailed debug information
}

// Environment variables read by ApplyEnv
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvModel       = "GEMINI_MODEL"
	EnvBaseURL     = "GEMINI_BASE_URL"
	EnvBackend     = "GEMINI_BACKEND"
	EnvTimeout     = "GEMINI_TIMEOUT"
	EnvStorePath   = "CV_ASSISTANT_STORE"
	EnvDatabaseURL = "DATABASE_URL"
	EnvOutputDir   = "CV_ASSISTANT_OUTPUT_DIR"
	EnvPort        = "PORT"
)

// DefaultPort is used by serve when nothing else sets one
const DefaultPort = 8080

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if _, err := llm.ParseBackend(c.Backend); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.StorePath != "" && c.DatabaseURL != "" {
		return fmt.Errorf("config error: 'store_path' and 'database_url' are mutually exclusive")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.Backend == "" {
		result.Backend = defaults.Backend
	}
	if result.Timeout == "" {
		result.Timeout = defaults.Timeout
	}
	if result.StorePath == "" {
		result.StorePath = defaults.StorePath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv overrides fields from environment variables that are set and non-empty.
// getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	setString(&c.APIKey, EnvAPIKey)
	setString(&c.Model, EnvModel)
	setString(&c.BaseURL, EnvBaseURL)
	setString(&c.Backend, EnvBackend)
	setString(&c.Timeout, EnvTimeout)
	setString(&c.StorePath, EnvStorePath)
	setString(&c.DatabaseURL, EnvDatabaseURL)
	setString(&c.OutputDir, EnvOutputDir)

	if v := strings.TrimSpace(getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: invalid %s %q: %w", EnvPort, v, err)
		}
		c.Port = port
	}

	return nil
}

// TimeoutDuration parses Timeout. An empty value means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config error: invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config error: 'timeout' must be non-negative")
	}
	return d, nil
}

// LLMConfig builds the generation client configuration.
func (c *Config) LLMConfig() (*llm.Config, error) {
	backend, err := llm.ParseBackend(c.Backend)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	timeout, err := c.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	cfg := llm.DefaultConfig()
	cfg.Backend = backend
	cfg.Timeout = timeout
	if c.Model != "" {
		cfg.Model = c.Model
	}
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	return cfg, nil
}

// ListenPort returns Port or DefaultPort
func (c *Config) ListenPort() int {
	if c.Port == 0 {
		return DefaultPort
	}
	return c.Port
}
