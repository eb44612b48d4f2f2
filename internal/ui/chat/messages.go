// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/driftline/internal/model"
	"github.com/jeranaias/driftline/internal/ui/components"
)

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// renderMessages renders the full conversation transcript.
func (m *Model) renderMessages() string {
	if m.conversation.IsEmpty() {
		return m.renderEmptyState()
	}

	var parts []string
	for _, msg := range m.conversation.Messages {
		switch msg.Role {
		case model.RoleUser:
			parts = append(parts, m.renderUserMessage(msg))
		case model.RoleAssistant:
			parts = append(parts, m.renderAssistantMessage(msg))
		}
	}
	return strings.Join(parts, "\n\n")
}

// renderUserMessage renders a user turn with its role label.
func (m *Model) renderUserMessage(msg *model.Message) string {
	label := m.theme.UserLabel.Render(msg.Role.DisplayName())
	body := m.theme.MessageBody.
		Width(m.bodyWidth()).
		Render(msg.Content)
	return label + "\n" + body
}

// renderAssistantMessage renders an assistant turn. Completed answers
// get a full markdown render; in-flight answers get the cheaper
// code-block pass so each frame stays fast.
func (m *Model) renderAssistantMessage(msg *model.Message) string {
	label := m.theme.AssistantLabel.Render(msg.Role.DisplayName())

	if msg.IsLoading && msg.IsEmpty() {
		return label + "\n" + m.theme.HeaderMeta.Render("...")
	}

	var body string
	switch {
	case msg.Status == model.StatusError:
		body = m.renderErroredBody(msg)
	case msg.Status == model.StatusDone:
		body = m.renderMarkdown(msg.Content)
	default:
		body = components.RenderCodeBlocks(msg.Content, m.bodyWidth())
	}

	out := label + "\n" + body

	if m.cfg.UI.ShowCitations && len(msg.Citations) > 0 {
		out += "\n" + components.RenderCitations(m.theme, msg.Citations, m.bodyWidth())
	}
	return out
}

// renderErroredBody shows partial content, if any, above the error box.
func (m *Model) renderErroredBody(msg *model.Message) string {
	errBox := m.theme.ErrorBox.
		MaxWidth(m.bodyWidth()).
		Render(msg.ErrMessage)
	if msg.IsEmpty() {
		return errBox
	}
	partial := components.RenderCodeBlocks(msg.Content, m.bodyWidth())
	return partial + "\n" + errBox
}

// renderMarkdown renders a completed answer through glamour. Falls back
// to the plain code-block pass if rendering fails.
func (m *Model) renderMarkdown(content string) string {
	if m.markdown == nil {
		return components.RenderCodeBlocks(content, m.bodyWidth())
	}
	out, err := m.markdown.Render(content)
	if err != nil {
		return components.RenderCodeBlocks(content, m.bodyWidth())
	}
	return strings.TrimRight(out, "\n")
}

// renderEmptyState renders the placeholder shown before the first turn.
func (m *Model) renderEmptyState() string {
	welcome := lipgloss.NewStyle().
		Bold(true).
		Render("Welcome to driftline")
	hint := m.theme.HeaderMeta.Render("Type a question and press Enter.")

	return lipgloss.NewStyle().
		Padding(2, 4).
		Render(welcome + "\n\n" + hint)
}

// bodyWidth returns the wrap width for message bodies.
func (m *Model) bodyWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	return w
}
