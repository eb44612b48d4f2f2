// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for driftline.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.driftline/config.toml
//   - ~/.driftline/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/driftline/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete driftline configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Server  ServerConfig  `toml:"server" json:"server"`
	Auth    AuthConfig    `toml:"auth" json:"auth"`
	History HistoryConfig `toml:"history" json:"history"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// ServerConfig describes the chat backend.
type ServerConfig struct {
	// BaseURL is the backend root, e.g. "https://api.driftline.app".
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds the initial connection; the streaming body
	// itself is not subject to this timeout.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerMinute paces outgoing messages. 0 disables pacing.
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// AuthConfig holds the stored identity.
type AuthConfig struct {
	Username string `toml:"username" json:"username"`
	// Token is the session token. Stored encrypted with an ENC: prefix;
	// see the secret package.
	Token string `toml:"token" json:"token"`
	// TOTPEnabled marks the account as requiring a second factor.
	TOTPEnabled bool `toml:"totp_enabled" json:"totp_enabled"`
}

// HistoryConfig controls local conversation persistence.
type HistoryConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// MaxConversations bounds the local archive; older conversations
	// are pruned. 0 means unlimited.
	MaxConversations int `toml:"max_conversations" json:"max_conversations"`
	// DBPath overrides the default ~/.driftline/history.db location.
	DBPath string `toml:"db_path" json:"db_path"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Theme is "dark", "light", or "auto".
	Theme string `toml:"theme" json:"theme"`
	// ShowCitations toggles the source footnotes under answers.
	ShowCitations bool `toml:"show_citations" json:"show_citations"`
	// SyntaxHighlight toggles code block highlighting.
	SyntaxHighlight bool `toml:"syntax_highlight" json:"syntax_highlight"`
	// CompactMode tightens vertical spacing between messages.
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			BaseURL:           "https://api.driftline.app",
			TimeoutSecs:       30,
			RequestsPerMinute: 20,
		},
		History: HistoryConfig{
			Enabled:          true,
			MaxConversations: 200,
		},
		UI: UIConfig{
			Theme:           "auto",
			ShowCitations:   true,
			SyntaxHighlight: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the driftline configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".driftline"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// HistoryDBPath resolves the conversation database location.
func (c *Config) HistoryDBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// ensureSecurePermissions tightens config file permissions to 0600.
// SECURITY: Config files carry the session token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm() != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", info.Mode().Perm(), err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last, then the result is validated.
func Load() (*Config, error) {
	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}
	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from an explicit file, picking the
// decoder by extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	if strings.HasSuffix(path, ".json") {
		err = loadJSON(cfg, path)
	} else {
		err = loadTOML(cfg, path)
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

func loadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML location.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: 0600 permissions, owner read/write only.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	sb.WriteString("# driftline configuration file\n")
	sb.WriteString("# Generated by driftline - edit with care\n")
	sb.WriteString("\n")

	encoder := toml.NewEncoder(&sb)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash.
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// SECURITY: 0600 permissions, owner read/write only.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Server.BaseURL == "" {
		errs = append(errs, ValidationError{"server.base_url", "must not be empty"})
	} else if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{"server.base_url", "must be an absolute URL"})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{"server.base_url", "scheme must be http or https"})
	}

	if c.Server.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{"server.timeout_secs", "must be positive"})
	}
	if c.Server.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{"server.requests_per_minute", "must not be negative"})
	}
	if c.History.MaxConversations < 0 {
		errs = append(errs, ValidationError{"history.max_conversations", "must not be negative"})
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{"ui.theme", "must be dark, light, or auto"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - DRIFTLINE_SERVER_URL: overrides server.base_url
//   - DRIFTLINE_TOKEN: overrides auth.token
//   - DRIFTLINE_USERNAME: overrides auth.username
//   - DRIFTLINE_THEME: overrides ui.theme
//   - DRIFTLINE_TIMEOUT_SECS: overrides server.timeout_secs
//   - DRIFTLINE_NO_HISTORY: set to "1" or "true" to disable persistence
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DRIFTLINE_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("DRIFTLINE_TOKEN"); v != "" {
		c.Auth.Token = v
	}
	if v := os.Getenv("DRIFTLINE_USERNAME"); v != "" {
		c.Auth.Username = v
	}
	if v := os.Getenv("DRIFTLINE_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("DRIFTLINE_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Server.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("DRIFTLINE_NO_HISTORY"); v == "1" || strings.EqualFold(v, "true") {
		c.History.Enabled = false
	}
}

// =============================================================================
// KEY ACCESS
// =============================================================================

// Get returns a configuration value by dotted key, for `driftline config get`.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "server.base_url":
		return c.Server.BaseURL, nil
	case "server.timeout_secs":
		return strconv.Itoa(c.Server.TimeoutSecs), nil
	case "server.requests_per_minute":
		return strconv.Itoa(c.Server.RequestsPerMinute), nil
	case "auth.username":
		return c.Auth.Username, nil
	case "history.enabled":
		return strconv.FormatBool(c.History.Enabled), nil
	case "history.max_conversations":
		return strconv.Itoa(c.History.MaxConversations), nil
	case "ui.theme":
		return c.UI.Theme, nil
	case "ui.show_citations":
		return strconv.FormatBool(c.UI.ShowCitations), nil
	case "ui.syntax_highlight":
		return strconv.FormatBool(c.UI.SyntaxHighlight), nil
	case "ui.compact_mode":
		return strconv.FormatBool(c.UI.CompactMode), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Set updates a configuration value by dotted key, for `driftline config set`.
// The caller is responsible for saving afterwards.
func (c *Config) Set(key, value string) error {
	switch key {
	case "server.base_url":
		c.Server.BaseURL = value
	case "server.timeout_secs":
		secs, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: expected an integer", key)
		}
		c.Server.TimeoutSecs = secs
	case "server.requests_per_minute":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: expected an integer", key)
		}
		c.Server.RequestsPerMinute = n
	case "auth.username":
		c.Auth.Username = value
	case "history.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected true or false", key)
		}
		c.History.Enabled = b
	case "history.max_conversations":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: expected an integer", key)
		}
		c.History.MaxConversations = n
	case "ui.theme":
		c.UI.Theme = value
	case "ui.show_citations":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected true or false", key)
		}
		c.UI.ShowCitations = b
	case "ui.syntax_highlight":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected true or false", key)
		}
		c.UI.SyntaxHighlight = b
	case "ui.compact_mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected true or false", key)
		}
		c.UI.CompactMode = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return c.Validate()
}

// Keys lists the settable configuration keys.
func Keys() []string {
	return []string{
		"server.base_url",
		"server.timeout_secs",
		"server.requests_per_minute",
		"auth.username",
		"history.enabled",
		"history.max_conversations",
		"ui.theme",
		"ui.show_citations",
		"ui.syntax_highlight",
		"ui.compact_mode",
	}
}
