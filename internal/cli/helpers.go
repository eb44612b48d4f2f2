// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared setup for CLI command handlers.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/driftline/internal/api"
	"github.com/jeranaias/driftline/internal/config"
	"github.com/jeranaias/driftline/internal/secret"
	"github.com/jeranaias/driftline/internal/storage"
)

// loadConfig loads the configuration with CLI overrides applied.
func LoadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if args.ServerURL != "" {
		cfg.Server.BaseURL = args.ServerURL
	}
	return cfg, nil
}

// openSecrets opens the local secret store in the config directory.
func openSecrets() (*secret.Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return nil, err
	}
	return secret.Open(dir)
}

// resolveToken returns the plaintext API token. Tokens are stored
// encrypted in the config file; a plaintext token (from env override)
// passes through unchanged.
func resolveToken(cfg *config.Config) (string, error) {
	token := cfg.Auth.Token
	if token == "" {
		return "", nil
	}
	if !secret.IsEncrypted(token) {
		return token, nil
	}
	secrets, err := openSecrets()
	if err != nil {
		return "", fmt.Errorf("open secret store: %w", err)
	}
	plain, err := secrets.Decrypt(token)
	if err != nil {
		return "", fmt.Errorf("decrypt token: %w", err)
	}
	return plain, nil
}

// buildClient constructs an API client from the configuration.
func BuildClient(cfg *config.Config) (*api.Client, error) {
	token, err := resolveToken(cfg)
	if err != nil {
		return nil, err
	}
	return api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:           cfg.Server.BaseURL,
		Token:             token,
		Timeout:           time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		RequestsPerMinute: cfg.Server.RequestsPerMinute,
	}), nil
}

// openHistory opens the conversation store, or returns nil when
// history is disabled.
func OpenHistory(cfg *config.Config) (*storage.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	path, err := cfg.HistoryDBPath()
	if err != nil {
		return nil, err
	}
	return storage.Open(path, cfg.History.MaxConversations)
}

// fatalf prints an error and exits non-zero.
func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n",
		errorStyle.Render("[Error]"),
		fmt.Sprintf(format, a...))
	os.Exit(1)
}
