// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/hittu-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete hittu configuration.
type Config struct {
	API     APIConfig     `toml:"api" json:"api"`
	Suggest SuggestConfig `toml:"suggest" json:"suggest"`
	Reveal  RevealConfig  `toml:"reveal" json:"reveal"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	History HistoryConfig `toml:"history" json:"history"`
	Log     LogConfig     `toml:"log" json:"log"`
	Server  ServerConfig  `toml:"server" json:"server"`
}

// APIConfig selects the chat backend.
type APIConfig struct {
	BaseURL          string `toml:"base_url" json:"base_url"`
	UseMock          bool   `toml:"use_mock" json:"use_mock"`
	RequestTimeoutMs int    `toml:"request_timeout_ms" json:"request_timeout_ms"`
	HealthTimeoutMs  int    `toml:"health_timeout_ms" json:"health_timeout_ms"`
}

// SuggestConfig tunes the predictive suggestion pipeline.
type SuggestConfig struct {
	// DebounceMs is the quiet period after the last keystroke before a
	// prediction request is issued.
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms"`
	// Threshold is compared against the trimmed input length; predictions are
	// requested only when the length is strictly greater.
	Threshold int  `toml:"threshold" json:"threshold"`
	Enabled   bool `toml:"enabled" json:"enabled"`
}

// RevealConfig tunes the typewriter reveal of bot replies.
type RevealConfig struct {
	TickMs int `toml:"tick_ms" json:"tick_ms"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	ErrorDisplayMs   int    `toml:"error_display_ms" json:"error_display_ms"`
	MaxInputChars    int    `toml:"max_input_chars" json:"max_input_chars"`
	CounterThreshold int    `toml:"counter_threshold" json:"counter_threshold"`
	Title            string `toml:"title" json:"title"`
	Placeholder      string `toml:"placeholder" json:"placeholder"`
	WelcomeMessage   string `toml:"welcome_message" json:"welcome_message"`
	RenderMarkdown   bool   `toml:"render_markdown" json:"render_markdown"`
}

// HistoryConfig controls transcript persistence.
type HistoryConfig struct {
	Enabled        bool   `toml:"enabled" json:"enabled"`
	Dir            string `toml:"dir" json:"dir"`
	MaxTranscripts int    `toml:"max_transcripts" json:"max_transcripts"`
	// AutoSave writes the transcript when the TUI exits.
	AutoSave bool `toml:"auto_save" json:"auto_save"`
	// Index keeps a full-text search index next to the transcripts.
	Index bool `toml:"index" json:"index"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level"`
	// File receives log output while the TUI owns the terminal.
	File string `toml:"file" json:"file"`
}

// ServerConfig configures the development backend started by "hittu serve".
type ServerConfig struct {
	Addr           string   `toml:"addr" json:"addr"`
	MinDelayMs     int      `toml:"min_delay_ms" json:"min_delay_ms"`
	MaxDelayMs     int      `toml:"max_delay_ms" json:"max_delay_ms"`
	RatePerSecond  float64  `toml:"rate_per_second" json:"rate_per_second"`
	Burst          int      `toml:"burst" json:"burst"`
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		API: APIConfig{
			BaseURL:          "http://localhost:5000/api",
			RequestTimeoutMs: 10000,
			HealthTimeoutMs:  3000,
		},
		Suggest: SuggestConfig{
			DebounceMs: 500,
			Threshold:  3,
			Enabled:    true,
		},
		Reveal: RevealConfig{
			TickMs: 50,
		},
		UI: UIConfig{
			ErrorDisplayMs:   10000,
			MaxInputChars:    1000,
			CounterThreshold: 800,
			Title:            "Hittu",
			Placeholder:      "Type a message...",
			WelcomeMessage:   "Hello! Is there anything I can help you with?",
			RenderMarkdown:   true,
		},
		History: HistoryConfig{
			Enabled:        true,
			MaxTranscripts: 100,
			Index:          true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:           ":5000",
			MinDelayMs:     1000,
			MaxDelayMs:     3000,
			RatePerSecond:  5,
			Burst:          10,
			AllowedOrigins: []string{"*"},
		},
	}

	if dir, err := ConfigDir(); err == nil {
		cfg.History.Dir = filepath.Join(dir, "transcripts")
		cfg.Log.File = filepath.Join(dir, "hittu.log")
	}
	return cfg
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the hittu configuration directory (~/.hittu).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".hittu"), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads the default config file. A missing file is not an error; the
// defaults (plus environment overrides) are returned instead.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from path with full validation.
//
// Order: .env from the working directory, the TOML file (when present),
// HITTU_* environment overrides, defaults for anything still unset, then
// validation.
func LoadFromPath(path string) (*Config, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes the file at path on top of cfg. Keys absent from the file
// keep their current values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return ValidateErrors{{Field: strings.Join(keys, ", "), Message: "unknown key"}}
	}
	return nil
}

// fillDefaults replaces zero values that can never be meaningful.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.API.RequestTimeoutMs == 0 {
		cfg.API.RequestTimeoutMs = defaults.API.RequestTimeoutMs
	}
	if cfg.API.HealthTimeoutMs == 0 {
		cfg.API.HealthTimeoutMs = defaults.API.HealthTimeoutMs
	}
	if cfg.Reveal.TickMs == 0 {
		cfg.Reveal.TickMs = defaults.Reveal.TickMs
	}
	if cfg.UI.ErrorDisplayMs == 0 {
		cfg.UI.ErrorDisplayMs = defaults.UI.ErrorDisplayMs
	}
	if cfg.UI.MaxInputChars == 0 {
		cfg.UI.MaxInputChars = defaults.UI.MaxInputChars
	}
	if cfg.UI.Title == "" {
		cfg.UI.Title = defaults.UI.Title
	}
	if cfg.UI.Placeholder == "" {
		cfg.UI.Placeholder = defaults.UI.Placeholder
	}
	if cfg.History.Dir == "" {
		cfg.History.Dir = defaults.History.Dir
	}
	if cfg.History.MaxTranscripts == 0 {
		cfg.History.MaxTranscripts = defaults.History.MaxTranscripts
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.File == "" {
		cfg.Log.File = defaults.Log.File
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Server.Burst == 0 {
		cfg.Server.Burst = defaults.Server.Burst
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = defaults.Server.AllowedOrigins
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes cfg to path with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# hittu configuration file")
	fmt.Fprintln(&buf, "# Environment variables (HITTU_*) override these values.")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		add("api.base_url", "must start with http:// or https:// (got %q)", c.API.BaseURL)
	}
	if c.API.RequestTimeoutMs < 0 {
		add("api.request_timeout_ms", "must not be negative")
	}
	if c.API.HealthTimeoutMs < 0 {
		add("api.health_timeout_ms", "must not be negative")
	}
	if c.Suggest.DebounceMs < 0 {
		add("suggest.debounce_ms", "must not be negative")
	}
	if c.Suggest.Threshold < 0 {
		add("suggest.threshold", "must not be negative")
	}
	if c.Reveal.TickMs < 1 {
		add("reveal.tick_ms", "must be at least 1")
	}
	if c.UI.ErrorDisplayMs < 0 {
		add("ui.error_display_ms", "must not be negative")
	}
	if c.UI.MaxInputChars < 1 {
		add("ui.max_input_chars", "must be at least 1")
	}
	if c.UI.CounterThreshold < 0 || c.UI.CounterThreshold > c.UI.MaxInputChars {
		add("ui.counter_threshold", "must be between 0 and ui.max_input_chars (%d)", c.UI.MaxInputChars)
	}
	if c.History.MaxTranscripts < 0 {
		add("history.max_transcripts", "must not be negative")
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		add("log.level", "must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	if c.Server.MinDelayMs < 0 {
		add("server.min_delay_ms", "must not be negative")
	}
	if c.Server.MaxDelayMs < c.Server.MinDelayMs {
		add("server.max_delay_ms", "must not be less than server.min_delay_ms")
	}
	if c.Server.RatePerSecond < 0 {
		add("server.rate_per_second", "must not be negative")
	}
	if c.Server.Burst < 1 {
		add("server.burst", "must be at least 1")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT VARIABLE OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
//   - HITTU_API_URL: overrides api.base_url
//   - HITTU_USE_MOCK: overrides api.use_mock
//   - HITTU_DEBOUNCE_MS: overrides suggest.debounce_ms
//   - HITTU_THRESHOLD: overrides suggest.threshold
//   - HITTU_REVEAL_TICK_MS: overrides reveal.tick_ms
//   - HITTU_TIMEOUT_MS: overrides api.request_timeout_ms
//   - HITTU_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() error {
	var errs ValidateErrors

	if url := os.Getenv("HITTU_API_URL"); url != "" {
		c.API.BaseURL = url
	}
	if mock := os.Getenv("HITTU_USE_MOCK"); mock != "" {
		c.API.UseMock = mock == "1" || strings.EqualFold(mock, "true")
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"HITTU_DEBOUNCE_MS", &c.Suggest.DebounceMs},
		{"HITTU_THRESHOLD", &c.Suggest.Threshold},
		{"HITTU_REVEAL_TICK_MS", &c.Reveal.TickMs},
		{"HITTU_TIMEOUT_MS", &c.API.RequestTimeoutMs},
	}
	for _, o := range ints {
		raw := os.Getenv(o.env)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, ValidationError{Field: o.env, Message: fmt.Sprintf("not an integer: %q", raw)})
			continue
		}
		*o.dst = n
	}

	if level := os.Getenv("HITTU_LOG_LEVEL"); level != "" {
		c.Log.Level = strings.ToLower(level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DURATIONS
// =============================================================================

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// RequestTimeout is the per-request timeout for chat and prediction calls.
func (c *Config) RequestTimeout() time.Duration { return ms(c.API.RequestTimeoutMs) }

// HealthTimeout is the timeout for health checks.
func (c *Config) HealthTimeout() time.Duration { return ms(c.API.HealthTimeoutMs) }

// DebounceDelay is the suggestion debounce window.
func (c *Config) DebounceDelay() time.Duration { return ms(c.Suggest.DebounceMs) }

// RevealInterval is the time between reveal steps.
func (c *Config) RevealInterval() time.Duration { return ms(c.Reveal.TickMs) }

// ErrorDisplay is how long the error banner stays up; zero disables auto-clear.
func (c *Config) ErrorDisplay() time.Duration { return ms(c.UI.ErrorDisplayMs) }

// ServerDelays returns the simulated latency range of the development backend.
func (c *Config) ServerDelays() (lo, hi time.Duration) {
	return ms(c.Server.MinDelayMs), ms(c.Server.MaxDelayMs)
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	return &clone
}

// String renders the config as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig   *Config
	globalConfigMu sync.RWMutex
)

// Global returns the configuration installed with SetGlobal, or the defaults
// when none has been installed.
func Global() *Config {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	if globalConfig == nil {
		return Default()
	}
	return globalConfig
}

// SetGlobal sets the global configuration instance.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}
