// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - The status command: connection and account overview.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/driftline/internal/config"
)

// HandleStatus prints backend reachability plus the local account and
// history state.
func HandleStatus(args Args) {
	cfg, err := LoadConfig(args)
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Println(welcomeStyle.Render("driftline " + Version))
	fmt.Println()

	fmt.Printf("%s %s %s\n", mutedStyle.Render("server:  "), cfg.Server.BaseURL, reachability(cfg))

	account := mutedStyle.Render("not logged in")
	if cfg.Auth.Token != "" {
		name := cfg.Auth.Username
		if name == "" {
			name = "(unknown user)"
		}
		account = okStyle.Render(name)
		if cfg.Auth.TOTPEnabled {
			account += mutedStyle.Render(" (2FA)")
		}
	}
	fmt.Printf("%s %s\n", mutedStyle.Render("account: "), account)

	fmt.Printf("%s %s\n", mutedStyle.Render("history: "), historySummary(cfg))
}

// reachability probes the backend health endpoint with a short timeout.
func reachability(cfg *config.Config) string {
	client, err := BuildClient(cfg)
	if err != nil {
		return errorStyle.Render("(" + err.Error() + ")")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return errorStyle.Render("(unreachable)")
	}
	return okStyle.Render("(reachable)")
}

// historySummary describes the local conversation archive in one line.
func historySummary(cfg *config.Config) string {
	if !cfg.History.Enabled {
		return mutedStyle.Render("disabled")
	}
	store, err := OpenHistory(cfg)
	if err != nil {
		return warningStyle.Render("unavailable: " + err.Error())
	}
	defer store.Close()

	metas, err := store.List()
	if err != nil {
		return warningStyle.Render("unavailable: " + err.Error())
	}
	return fmt.Sprintf("enabled, %d saved conversations", len(metas))
}
