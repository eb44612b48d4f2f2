// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/driftline/internal/api"
	"github.com/jeranaias/driftline/internal/config"
	"github.com/jeranaias/driftline/internal/model"
	"github.com/jeranaias/driftline/internal/storage"
	"github.com/jeranaias/driftline/internal/stream"
	"github.com/jeranaias/driftline/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving a streamed answer
)

// =============================================================================
// MESSAGES
// =============================================================================

// frameTickMsg drives streaming redraws at the frame cap.
type frameTickMsg time.Time

// streamFinishedMsg reports that the transport closed.
type streamFinishedMsg struct {
	err error
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Conversation
	conversation *model.Conversation

	// Streaming plumbing
	acc            *stream.Accumulator
	frames         *FrameBuffer
	streamingMsgID string
	cancelStream   context.CancelFunc

	// Backend
	client *api.Client

	// Persistence (nil when history is disabled)
	store *storage.Store

	// Config
	cfg *config.Config

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Markdown renderer for completed answers, rebuilt on resize so the
	// word wrap tracks the terminal width.
	markdown *glamour.TermRenderer

	// Key bindings
	keyMap KeyMap

	// Transient status line (errors, confirmations)
	statusMsg string
}

// New creates a chat model. store may be nil when history is disabled.
func New(cfg *config.Config, client *api.Client, store *storage.Store) Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Ask anything..."
	input.Prompt = theme.InputPrompt.Render("> ")
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = theme.Spinner

	acc := stream.NewAccumulator()
	frames := NewFrameBuffer()
	acc.Subscribe(frames.Put)

	return Model{
		state:        StateReady,
		theme:        theme,
		conversation: model.NewConversation(),
		acc:          acc,
		frames:       frames,
		client:       client,
		store:        store,
		cfg:          cfg,
		input:        input,
		spinner:      sp,
		keyMap:       DefaultKeyMap(),
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Conversation exposes the conversation for saving on exit.
func (m Model) Conversation() *model.Conversation {
	return m.conversation
}

// =============================================================================
// STREAMING COMMANDS
// =============================================================================

// frameTick schedules the next streaming redraw.
func frameTick() tea.Cmd {
	return tea.Tick(time.Second/defaultMaxFPS, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

// startStream begins a new turn: user message appended, assistant
// placeholder created, and the request launched on its own goroutine.
func (m *Model) startStream(text string) tea.Cmd {
	m.conversation.AddUserMessage(text)

	assistant := m.conversation.AddAssistantMessage()
	m.streamingMsgID = assistant.ID
	m.acc.Begin(assistant.ID)
	m.state = StateStreaming
	m.statusMsg = ""

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelStream = cancel

	req := api.ChatRequest{
		Message:        text,
		ConversationID: m.conversation.ID,
		History:        historyFor(m.conversation),
		WebSearch:      true,
	}

	client := m.client
	acc := m.acc
	return tea.Batch(frameTick(), func() tea.Msg {
		err := client.StreamMessage(ctx, req, acc.Apply)
		// A clean close without a terminal record is still a failed
		// answer; the user must not be left with a spinner forever.
		if err == nil && !acc.Done() {
			acc.FinishInterrupted()
		}
		return streamFinishedMsg{err: err}
	})
}

// historyFor flattens prior completed turns for the request body.
func historyFor(conv *model.Conversation) []api.HistoryMessage {
	var history []api.HistoryMessage
	for _, msg := range conv.Messages {
		if msg.Status != model.StatusDone || msg.IsEmpty() {
			continue
		}
		history = append(history, api.HistoryMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	return history
}

// applySnapshot copies accumulator state onto the conversation's
// streaming message.
func (m *Model) applySnapshot(snap model.Message) {
	msg := m.conversation.GetMessageByID(m.streamingMsgID)
	if msg == nil {
		return
	}
	msg.Content = snap.Content
	msg.Citations = snap.Citations
	msg.Status = snap.Status
	msg.IsLoading = snap.IsLoading
	msg.ErrMessage = snap.ErrMessage
}

// finishStream tears down the active turn and persists the result.
// streamErr is the transport error, if any; transport failures never
// reach the accumulator as events, so the message is failed here.
func (m *Model) finishStream(streamErr error) {
	if m.cancelStream != nil {
		m.cancelStream()
		m.cancelStream = nil
	}
	m.state = StateReady

	if snap, ok := m.frames.TakeFinal(); ok {
		m.applySnapshot(snap)
	}
	if streamErr != nil {
		if msg := m.conversation.GetMessageByID(m.streamingMsgID); msg != nil &&
			!msg.Status.Terminal() {
			msg.Fail(streamErr.Error())
		}
	}

	// An errored turn with no content leaves no empty bubble behind.
	m.conversation.RemoveIfEmptyError(m.streamingMsgID)
	m.streamingMsgID = ""

	if m.store != nil && !m.conversation.IsEmpty() {
		if err := m.store.Save(m.conversation); err != nil {
			m.statusMsg = "history save failed: " + err.Error()
		}
	}
}
