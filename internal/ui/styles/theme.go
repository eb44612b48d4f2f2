// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds the styled components for the application. It detects the
// terminal's color capability once at startup; the "dark" and "light"
// config values override background detection for terminals that
// misreport it.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style

	// Message bubbles
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	MessageBody    lipgloss.Style
	ErrorBox       lipgloss.Style

	// Streaming status
	PhaseSearching lipgloss.Style
	PhaseReading   lipgloss.Style
	PhaseGenerating lipgloss.Style
	Spinner        lipgloss.Style

	// Citations
	CitationIndex  lipgloss.Style
	CitationTitle  lipgloss.Style
	CitationDomain lipgloss.Style

	// Input area
	InputPrompt lipgloss.Style
	InputText   lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme builds a theme. mode is "dark", "light", or "auto".
func NewTheme(mode string) *Theme {
	output := termenv.DefaultOutput()

	isDark := output.HasDarkBackground()
	switch mode {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: output.Profile,
	}

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
	t.HeaderMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.UserLabel = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)
	t.MessageBody = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.ErrorBox = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.PhaseSearching = lipgloss.NewStyle().Foreground(Amber)
	t.PhaseReading = lipgloss.NewStyle().Foreground(Amber)
	t.PhaseGenerating = lipgloss.NewStyle().Foreground(Indigo)
	t.Spinner = lipgloss.NewStyle().Foreground(Indigo)

	t.CitationIndex = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)
	t.CitationTitle = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.CitationDomain = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Teal)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	return t
}

// PhaseStyle returns the style for a progress phase label.
func (t *Theme) PhaseStyle(phase string) lipgloss.Style {
	switch phase {
	case "searching":
		return t.PhaseSearching
	case "reading":
		return t.PhaseReading
	default:
		return t.PhaseGenerating
	}
}
