package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults holds the request options used when a command does not set them
type Defaults struct {
	TargetModel     string `yaml:"target_model" env:"TARGET_MODEL"`
	ReasoningNative bool   `yaml:"reasoning_native" env:"REASONING_NATIVE"`
	WebSearch       bool   `yaml:"web_search" env:"WEB_SEARCH"`
	Formatting      string `yaml:"formatting" env:"FORMATTING"`
	Length          string `yaml:"length" env:"LENGTH"`
	Technique       string `yaml:"technique" env:"TECHNIQUE"`
}

// Config is the resolved client configuration
type Config struct {
	ServerURL            string        `yaml:"server_url" env:"ENHANCE_WS_URL"`
	Origin               string        `yaml:"origin" env:"ENHANCE_ORIGIN"`
	ModelsURL            string        `yaml:"models_url" env:"ENHANCE_MODELS_URL"`
	ModelsCacheTTL       time.Duration `yaml:"models_cache_ttl" env:"ENHANCE_MODELS_CACHE_TTL"`
	TaskTimeout          time.Duration `yaml:"task_timeout" env:"ENHANCE_TASK_TIMEOUT"`
	HistoryBackend       string        `yaml:"history_backend" env:"ENHANCE_HISTORY_BACKEND"`
	HistoryPath          string        `yaml:"history_path" env:"ENHANCE_HISTORY_PATH"`
	LegacyCancelSentinel bool          `yaml:"legacy_cancel_sentinel" env:"ENHANCE_LEGACY_CANCEL"`
	Defaults             Defaults      `yaml:"defaults" envPrefix:"ENHANCE_DEFAULT_"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return Config{
		ServerURL:      "ws://localhost:8000",
		Origin:         "http://localhost/",
		ModelsURL:      "https://ai.hackclub.com/proxy/v1/models",
		ModelsCacheTTL: time.Hour,
		TaskTimeout:    6 * time.Minute,
		HistoryBackend: BackendSQLite,
		Defaults: Defaults{
			WebSearch:  true,
			Formatting: "Any",
			Length:     "Detailed",
			Technique:  "Any",
		},
	}
}

// LoadConfig resolves configuration in order: defaults, the YAML file,
// .env files, then ENHANCE_* environment variables. An explicit path must
// exist; the default config file is optional.
func LoadConfig(paths Paths, explicitPath string) (Config, error) {
	cfg := DefaultConfig()

	path := explicitPath
	if path == "" {
		path = paths.ConfigFile()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, &ConfigError{Path: path, Err: err}
		}
		LogDebug("Loaded config from %s", path)
	case errors.Is(err, os.ErrNotExist) && explicitPath == "":
		LogDebug("No config file at %s, using defaults", path)
	default:
		return cfg, &ConfigError{Path: path, Err: err}
	}

	if err := loadDotEnv(".env", paths.EnvFile()); err != nil {
		return cfg, err
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, &ConfigError{Path: "environment", Err: fmt.Errorf("parse env: %w", err)}
	}

	if cfg.HistoryPath == "" {
		if strings.EqualFold(cfg.HistoryBackend, BackendFile) {
			cfg.HistoryPath = paths.HistoryFilePath()
		} else {
			cfg.HistoryPath = paths.HistoryDBPath()
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// loadDotEnv loads every file that exists; variables already set win
func loadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return &ConfigError{Path: f, Err: err}
		}
		LogDebug("Loaded environment from %s", f)
	}
	return nil
}

// Validate checks the configuration for values the client cannot use
func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server_url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("invalid server_url scheme %q (want ws, wss, http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server_url: missing host")
	}
	if c.TaskTimeout <= 0 {
		return fmt.Errorf("task_timeout must be positive, got %s", c.TaskTimeout)
	}
	switch strings.ToLower(c.HistoryBackend) {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("unsupported history_backend %q", c.HistoryBackend)
	}
	return nil
}

// WebSocketBase returns ServerURL with an http(s) scheme mapped to ws(s)
func (c Config) WebSocketBase() string {
	base := strings.TrimRight(c.ServerURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

// HTTPBase returns ServerURL with a ws(s) scheme mapped to http(s)
func (c Config) HTTPBase() string {
	base := strings.TrimRight(c.ServerURL, "/")
	switch {
	case strings.HasPrefix(base, "wss://"):
		return "https://" + strings.TrimPrefix(base, "wss://")
	case strings.HasPrefix(base, "ws://"):
		return "http://" + strings.TrimPrefix(base, "ws://")
	}
	return base
}

// Marshal renders the configuration as YAML
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteConfig writes cfg as YAML to path, creating parent directories
func WriteConfig(path string, cfg Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return nil
}
