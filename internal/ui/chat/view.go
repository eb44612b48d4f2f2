// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Fixed chrome heights used when sizing the viewport in handleResize.
// Keep in sync with the render functions below.
const (
	headerHeight     = 1
	statusLineHeight = 1
	inputHeight      = 1
	statusBarHeight  = 1
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete chat view. Layout, top to bottom: header,
// messages viewport, streaming status line, input, status bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderStatusLine(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// refreshViewport re-renders the conversation into the viewport.
func (m *Model) refreshViewport(gotoBottom bool) {
	m.viewport.SetContent(m.renderMessages())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// HEADER
// =============================================================================

// renderHeader renders the one-line title bar.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("driftline")

	meta := ""
	if m.conversation.Title != "" {
		meta = m.theme.HeaderMeta.Render(" | " + m.conversation.Title)
	}

	return m.theme.Header.
		Width(m.width).
		Render(title + meta)
}

// =============================================================================
// STREAMING STATUS LINE
// =============================================================================

// renderStatusLine shows the backend's progress phase while streaming,
// or the last transient status message when idle.
func (m Model) renderStatusLine() string {
	if m.state == StateStreaming {
		if msg := m.conversation.GetMessageByID(m.streamingMsgID); msg != nil {
			label := msg.Status.Label()
			if label != "" {
				phase := m.theme.PhaseStyle(string(msg.Status)).Render(label)
				return " " + m.spinner.View() + " " + phase
			}
		}
		return " " + m.spinner.View()
	}

	if m.statusMsg != "" {
		return " " + m.theme.HeaderMeta.Render(m.statusMsg)
	}
	return ""
}

// =============================================================================
// INPUT AREA
// =============================================================================

// renderInput renders the single-line input.
func (m Model) renderInput() string {
	return " " + m.input.View()
}

// =============================================================================
// STATUS BAR
// =============================================================================

// renderStatusBar renders the bottom shortcut bar.
func (m Model) renderStatusBar() string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "send"},
		{"Esc", "stop"},
		{"C-l", "clear"},
		{"C-c", "quit"},
	}

	var parts []string
	for _, s := range shortcuts {
		parts = append(parts,
			m.theme.ShortcutKey.Render(s.key)+
				m.theme.ShortcutDesc.Render("="+s.desc))
	}

	return m.theme.StatusBar.
		Width(m.width).
		Render(strings.Join(parts, "  "))
}
