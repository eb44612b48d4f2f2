// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameTickMsg:
		return m.handleFrameTick()

	case streamFinishedMsg:
		return m.handleStreamFinished(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

// handleResize recomputes the layout on terminal size changes.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	chromeHeight := headerHeight + statusLineHeight + inputHeight + statusBarHeight
	vpHeight := msg.Height - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if m.viewport.Width == 0 {
		m.viewport = viewport.New(msg.Width, vpHeight)
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}
	m.input.Width = msg.Width - 4

	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.bodyWidth()),
	); err == nil {
		m.markdown = r
	}

	m.refreshViewport(true)
	return m, nil
}

// handleKey dispatches keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		if m.state == StateStreaming {
			m.abortStream()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Abort):
		if m.state == StateStreaming {
			m.abortStream()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keyMap.Clear):
		if m.state == StateReady {
			m.conversation.ClearHistory()
			m.statusMsg = "conversation cleared"
			m.refreshViewport(true)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit sends the current input as a new turn.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.state != StateReady {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	cmd := m.startStream(text)
	m.refreshViewport(true)
	return m, cmd
}

// handleFrameTick drains the frame buffer and schedules the next tick
// while a stream is active.
func (m Model) handleFrameTick() (tea.Model, tea.Cmd) {
	if m.state != StateStreaming {
		return m, nil
	}
	if snap, ok := m.frames.Take(); ok {
		m.applySnapshot(snap)
		m.refreshViewport(true)
	}
	return m, frameTick()
}

// handleStreamFinished finalizes the turn once the transport closes.
func (m Model) handleStreamFinished(msg streamFinishedMsg) (tea.Model, tea.Cmd) {
	m.finishStream(msg.err)
	if msg.err != nil {
		m.statusMsg = msg.err.Error()
	}
	m.refreshViewport(true)
	return m, nil
}

// abortStream cancels the in-flight request and freezes the partial
// answer. Safe to call more than once.
func (m *Model) abortStream() {
	if m.cancelStream != nil {
		m.cancelStream()
	}
	m.acc.Abort()
	m.statusMsg = "response stopped"
}
