// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared lipgloss styles for CLI output.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/driftline/internal/ui/styles"
)

var (
	// Prompt style for the chat REPL
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)

	// Welcome banner style
	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	// Info style for secondary text
	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	// Muted style for hints and metadata
	mutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	// Success style
	okStyle = lipgloss.NewStyle().
		Foreground(styles.Emerald)

	// Phase style for progress output
	phaseStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// Warning style
	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// Error style
	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	// Citation index style
	citeStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)
)
