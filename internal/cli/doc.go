// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the driftline command line interface: argument
// parsing, the one-shot ask command, the interactive chat REPL, account
// commands (login, register, logout), and config/history management.
//
// The TUI itself lives in internal/ui; this package handles everything
// reachable without the alternate screen.
package cli
