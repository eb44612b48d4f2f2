// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Server.BaseURL = "" }},
		{"relative base url", func(c *Config) { c.Server.BaseURL = "api.driftline.app" }},
		{"bad scheme", func(c *Config) { c.Server.BaseURL = "ftp://api.driftline.app" }},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSecs = 0 }},
		{"negative rate", func(c *Config) { c.Server.RequestsPerMinute = -1 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"negative history cap", func(c *Config) { c.History.MaxConversations = -5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.BaseURL = ""
	cfg.Server.TimeoutSecs = -1
	cfg.UI.Theme = "neon"

	err := cfg.Validate()
	errs, ok := err.(ValidateErrors)
	if !ok {
		t.Fatalf("Expected ValidateErrors, got %T", err)
	}
	if len(errs) != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", len(errs), errs)
	}
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

func TestSaveAndLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "https://staging.driftline.app"
	cfg.Auth.Username = "alice_1"
	cfg.UI.Theme = "dark"

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Config file should be 0600, got %v", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Server.BaseURL != "https://staging.driftline.app" {
		t.Errorf("base_url not round-tripped: %q", loaded.Server.BaseURL)
	}
	if loaded.Auth.Username != "alice_1" || loaded.UI.Theme != "dark" {
		t.Errorf("Fields not round-tripped: %+v", loaded)
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.History.MaxConversations = 50

	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}
	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.History.MaxConversations != 50 {
		t.Errorf("max_conversations not round-tripped: %d", loaded.History.MaxConversations)
	}
}

func TestLoadFillsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := "[server]\nbase_url = \"https://api.driftline.app\"\n"
	if err := os.WriteFile(path, []byte(partial), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Server.TimeoutSecs != Default().Server.TimeoutSecs {
		t.Errorf("Missing fields should keep defaults, got %d", loaded.Server.TimeoutSecs)
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DRIFTLINE_SERVER_URL", "https://override.driftline.app")
	t.Setenv("DRIFTLINE_USERNAME", "bob_builder")
	t.Setenv("DRIFTLINE_THEME", "light")
	t.Setenv("DRIFTLINE_TIMEOUT_SECS", "45")
	t.Setenv("DRIFTLINE_NO_HISTORY", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "https://override.driftline.app" {
		t.Errorf("base_url override not applied: %q", cfg.Server.BaseURL)
	}
	if cfg.Auth.Username != "bob_builder" {
		t.Errorf("username override not applied: %q", cfg.Auth.Username)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme override not applied: %q", cfg.UI.Theme)
	}
	if cfg.Server.TimeoutSecs != 45 {
		t.Errorf("timeout override not applied: %d", cfg.Server.TimeoutSecs)
	}
	if cfg.History.Enabled {
		t.Error("history override not applied")
	}
}

func TestEnvOverrideIgnoresBadTimeout(t *testing.T) {
	t.Setenv("DRIFTLINE_TIMEOUT_SECS", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Server.TimeoutSecs != Default().Server.TimeoutSecs {
		t.Errorf("Bad timeout override should be ignored, got %d", cfg.Server.TimeoutSecs)
	}
}

// =============================================================================
// KEY ACCESS
// =============================================================================

func TestGetSetRoundTrip(t *testing.T) {
	cfg := Default()

	for _, key := range Keys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) failed: %v", key, err)
		}
	}

	if err := cfg.Set("ui.theme", "dark"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := cfg.Get("ui.theme"); v != "dark" {
		t.Errorf("Set not visible through Get: %q", v)
	}
}

func TestSetRejectsInvalidValues(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("ui.theme", "neon"); err == nil {
		t.Error("Set should reject an invalid theme")
	}
	if err := cfg.Set("server.timeout_secs", "soon"); err == nil {
		t.Error("Set should reject a non-integer timeout")
	}
	if err := cfg.Set("does.not.exist", "x"); err == nil {
		t.Error("Set should reject unknown keys")
	}
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	changed := make(chan *Config, 1)
	w, err := NewWatcher(path, func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	updated := Default()
	updated.UI.Theme = "dark"
	if err := SaveTOML(updated, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.UI.Theme != "dark" {
			t.Errorf("Reloaded config missing change: %q", cfg.UI.Theme)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watcher did not report the change")
	}
}
