// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// driftline is a terminal client for the Driftline research assistant.
// Answers stream in live with progress phases and inline citations,
// either in a full TUI or through one-shot CLI commands.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/driftline/internal/cli"
	"github.com/jeranaias/driftline/internal/ui/chat"
)

// Build-time version information, injected via -ldflags.
var (
	version   = "0.4.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = gitCommit
	cli.BuildDate = buildDate
}

func main() {
	command, args := cli.Parse()

	switch command {
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdLogin:
		cli.HandleLogin(args)
	case cli.CmdLogout:
		cli.HandleLogout(args)
	case cli.CmdRegister:
		cli.HandleRegister(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdHistory:
		cli.HandleHistory(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) {
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	client, err := cli.BuildClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store, err := cli.OpenHistory(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	program := tea.NewProgram(
		chat.New(cfg, client, store),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
