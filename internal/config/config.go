// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// AppName names the per-user data directory.
const AppName = "hint"

// DatabaseFile is the SQLite file inside the data directory.
const DatabaseFile = "conversations.db"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete hint configuration.
type Config struct {
	// DataDir holds the database, input history and default config file.
	// Empty means the OS-convention user data directory.
	DataDir string `toml:"data_dir"`

	// API is the remote completion endpoint configuration.
	API APIConfig `toml:"api"`

	// History controls the conversation window sent with each prompt.
	History HistoryConfig `toml:"history"`

	// UI controls terminal output.
	UI UIConfig `toml:"ui"`

	// Summary configures directory summarization.
	Summary SummaryConfig `toml:"summary"`
}

// APIConfig contains the completion endpoint settings.
type APIConfig struct {
	// BaseURL is scheme and host of the endpoint.
	BaseURL string `toml:"base_url"`
	// Path is the chat completions path.
	Path string `toml:"path"`
	// Key is the bearer credential. Never written back to disk; normally
	// supplied through OPENAI_API_KEY.
	Key string `toml:"-"`
	// Model is the default model identifier.
	Model string `toml:"model"`
	// Temperature is the default sampling temperature.
	Temperature float64 `toml:"temperature"`
	// SystemPrompt replaces the built-in system instruction when set.
	SystemPrompt string `toml:"system_prompt"`
}

// HistoryConfig contains conversation window settings.
type HistoryConfig struct {
	// Limit is how many stored turns are loaded per request.
	Limit int `toml:"limit"`
}

// UIConfig contains output settings.
type UIConfig struct {
	// Renderer is "fence" (colorize prose and code blocks) or "markdown".
	Renderer string `toml:"renderer"`
	// Highlight enables syntax highlighting of fenced code.
	Highlight bool `toml:"highlight"`
	// NoColor disables all escape sequences.
	NoColor bool `toml:"no_color"`
}

// SummaryConfig contains directory summarization settings.
type SummaryConfig struct {
	// Extensions is the allow-list of file extensions to summarize.
	Extensions []string `toml:"extensions"`
	// ReportFile is the default report name.
	ReportFile string `toml:"report_file"`
	// Temperature used for summary requests.
	Temperature float64 `toml:"temperature"`
	// Workers bounds concurrent summary requests.
	Workers int `toml:"workers"`
	// RequestsPerSecond throttles summary requests (0 = unlimited).
	RequestsPerSecond float64 `toml:"requests_per_second"`
	// MaxFileBytes skips files larger than this.
	MaxFileBytes int64 `toml:"max_file_bytes"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "https://api.openai.com",
			Path:        "/v1/chat/completions",
			Model:       "gpt-4o",
			Temperature: 0.7,
		},
		History: HistoryConfig{
			Limit: 10,
		},
		UI: UIConfig{
			Renderer:  "fence",
			Highlight: false,
		},
		Summary: SummaryConfig{
			Extensions:        []string{".py", ".go", ".js", ".ts", ".java", ".c", ".cpp", ".h", ".rs", ".rb"},
			ReportFile:        "summary.txt",
			Temperature:       0.2,
			Workers:           4,
			RequestsPerSecond: 2,
			MaxFileBytes:      256 * 1024,
		},
	}
}

// =============================================================================
// DATA DIRECTORY
// =============================================================================

// ConfigurationError is returned when required configuration cannot be
// resolved. It is fatal: no request can proceed without it.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// DataDir returns the OS-convention user data directory for hint:
//   - Windows: %LOCALAPPDATA% (falling back to %APPDATA%)
//   - macOS:   ~/Library/Application Support/hint
//   - other:   ~/.local/share/hint
func DataDir() (string, error) {
	return dataDirFor(runtime.GOOS, os.Getenv, os.UserHomeDir)
}

func dataDirFor(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	if goos == "windows" {
		if dir := getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		if dir := getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		return "", &ConfigurationError{Field: "data_dir", Reason: "neither LOCALAPPDATA nor APPDATA is set"}
	}

	h, err := home()
	if err != nil || h == "" {
		return "", &ConfigurationError{Field: "data_dir", Reason: "could not determine home directory", Err: err}
	}
	if goos == "darwin" {
		return filepath.Join(h, "Library", "Application Support", AppName), nil
	}
	return filepath.Join(h, ".local", "share", AppName), nil
}

// ResolveDataDir returns c.DataDir, resolving the OS default when unset.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	return DataDir()
}

// DatabasePath returns the path to the conversation database.
func (c *Config) DatabasePath() (string, error) {
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseFile), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load builds the configuration. path may be empty, in which case
// <data dir>/config.toml is used when it exists. Environment overrides are
// applied last, then defaults are filled and the result validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		// HINT_DATA_DIR may move the default config location.
		dir := os.Getenv("HINT_DATA_DIR")
		if dir == "" {
			var err error
			dir, err = DataDir()
			if err != nil {
				return nil, err
			}
		}
		path = filepath.Join(dir, "config.toml")
	}

	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if explicit {
		return nil, &ConfigurationError{Field: "config", Reason: "cannot read " + path, Err: err}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - OPENAI_API_KEY: bearer credential (read once, here)
//   - HINT_MODEL: overrides api.model
//   - HINT_BASE_URL: overrides api.base_url
//   - HINT_TEMPERATURE: overrides api.temperature
//   - HINT_DATA_DIR: overrides data_dir
//   - NO_COLOR: any non-empty value disables colors
func (c *Config) ApplyEnvOverrides() {
	c.applyEnv(os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) {
	if key := getenv("OPENAI_API_KEY"); key != "" {
		c.API.Key = strings.TrimSpace(key)
	}
	if model := getenv("HINT_MODEL"); model != "" {
		c.API.Model = model
	}
	if base := getenv("HINT_BASE_URL"); base != "" {
		c.API.BaseURL = base
	}
	if temp := getenv("HINT_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil {
			c.API.Temperature = v
		}
	}
	if dir := getenv("HINT_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if getenv("NO_COLOR") != "" {
		c.UI.NoColor = true
	}
}

// SetDefaults fills zero-value fields from Default().
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Path == "" {
		c.API.Path = defaults.API.Path
	}
	if c.API.Model == "" {
		c.API.Model = defaults.API.Model
	}
	if c.History.Limit == 0 {
		c.History.Limit = defaults.History.Limit
	}
	if c.UI.Renderer == "" {
		c.UI.Renderer = defaults.UI.Renderer
	}
	if len(c.Summary.Extensions) == 0 {
		c.Summary.Extensions = defaults.Summary.Extensions
	}
	if c.Summary.ReportFile == "" {
		c.Summary.ReportFile = defaults.Summary.ReportFile
	}
	if c.Summary.Workers == 0 {
		c.Summary.Workers = defaults.Summary.Workers
	}
	if c.Summary.MaxFileBytes == 0 {
		c.Summary.MaxFileBytes = defaults.Summary.MaxFileBytes
	}
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL %q", c.API.BaseURL),
		})
	}
	if !strings.HasPrefix(c.API.Path, "/") {
		errs = append(errs, ValidationError{
			Field:   "api.path",
			Message: "must start with /",
		})
	}
	if c.API.Temperature < 0 || c.API.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "api.temperature",
			Message: fmt.Sprintf("must be between 0 and 2, got %g", c.API.Temperature),
		})
	}
	if c.History.Limit < 0 {
		errs = append(errs, ValidationError{
			Field:   "history.limit",
			Message: "must be non-negative",
		})
	}

	validRenderers := map[string]bool{"fence": true, "markdown": true}
	if !validRenderers[strings.ToLower(c.UI.Renderer)] {
		errs = append(errs, ValidationError{
			Field:   "ui.renderer",
			Message: fmt.Sprintf("invalid renderer '%s', must be one of: fence, markdown", c.UI.Renderer),
		})
	}

	for _, ext := range c.Summary.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, ValidationError{
				Field:   "summary.extensions",
				Message: fmt.Sprintf("extension %q must start with a dot", ext),
			})
		}
	}
	if c.Summary.Workers < 1 {
		errs = append(errs, ValidationError{
			Field:   "summary.workers",
			Message: "must be at least 1",
		})
	}
	if c.Summary.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "summary.requests_per_second",
			Message: "must be non-negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsConfigurationError reports whether err is a fatal configuration error.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	var valErrs ValidateErrors
	return errors.As(err, &cfgErr) || errors.As(err, &valErrs)
}
