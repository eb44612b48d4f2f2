// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status tracks the lifecycle of an assistant message. The first five values
// mirror the progress phases reported by the backend while a response is
// being produced; StatusError is assigned locally when a stream fails.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSearching  Status = "searching"
	StatusReading    Status = "reading"
	StatusGenerating Status = "generating"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// ParseStatus maps a wire phase string to a Status. Returns false for
// unknown phases so callers can skip malformed updates.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusIdle, StatusSearching, StatusReading, StatusGenerating, StatusDone:
		return Status(s), true
	default:
		return StatusIdle, false
	}
}

// Terminal reports whether the status is final. A terminal message accepts
// no further mutation.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Label returns the progress text shown while the status is active.
func (s Status) Label() string {
	switch s {
	case StatusSearching:
		return "Searching the web"
	case StatusReading:
		return "Reading sources"
	case StatusGenerating:
		return "Generating"
	case StatusError:
		return "Failed"
	default:
		return ""
	}
}

// =============================================================================
// CITATION TYPE
// =============================================================================

// Citation is a web-search source reference attached to an assistant answer.
// Citations are immutable once received. The JSON tags match the wire format;
// uniqueness is by ID but the decoder does not deduplicate, so a message may
// legitimately carry the same ID twice (arrival order is preserved).
type Citation struct {
	ID         int    `json:"id"`
	URL        string `json:"url"`
	RootURL    string `json:"root_url"`
	Title      string `json:"title"`
	Snippet    string `json:"snippet,omitempty"`
	FaviconURL string `json:"favicon_url,omitempty"`
	SourceType string `json:"source_type,omitempty"`
}

// Domain returns the display domain for the citation, preferring the root
// URL the backend resolved.
func (c Citation) Domain() string {
	if c.RootURL != "" {
		return c.RootURL
	}
	return c.URL
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// For assistant messages, Content and Citations are append-only while the
// response streams in: deltas are concatenated in arrival order and citations
// are appended in arrival order. IsLoading is true from creation until either
// the first visible character arrives or the message reaches a terminal
// status, whichever comes first.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`

	// Streaming lifecycle
	Status    Status `json:"status"`
	IsLoading bool   `json:"is_loading"`

	// ErrMessage holds the human-readable protocol error when Status is
	// StatusError. Not shown for messages that completed normally.
	ErrMessage string `json:"err_message,omitempty"`
}

// NewUserMessage creates a completed user message.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        NewID(),
		Role:      RoleUser,
		Timestamp: time.Now(),
		Content:   content,
		Status:    StatusDone,
	}
}

// NewAssistantMessage creates an empty assistant message ready to receive
// a streamed response.
func NewAssistantMessage() *Message {
	return &Message{
		ID:        NewID(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		Status:    StatusIdle,
		IsLoading: true,
	}
}

// NewAssistantMessageWithID creates an empty assistant message with a
// caller-chosen ID (used when the ID must be known before the turn starts,
// e.g. to correlate stream callbacks).
func NewAssistantMessageWithID(id string) *Message {
	m := NewAssistantMessage()
	m.ID = id
	return m
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AppendContent appends a content delta. The loading indicator drops as soon
// as the first visible character arrives, independent of the current phase.
func (m *Message) AppendContent(text string) {
	m.Content += text
	if len(m.Content) > 0 {
		m.IsLoading = false
	}
}

// AddCitation appends a citation in arrival order. No deduplication.
func (m *Message) AddCitation(c Citation) {
	m.Citations = append(m.Citations, c)
}

// SetStatus applies a progress phase update.
func (m *Message) SetStatus(s Status) {
	m.Status = s
	if s.Terminal() {
		m.IsLoading = false
	}
}

// Fail marks the message as failed with a human-readable reason.
func (m *Message) Fail(reason string) {
	m.Status = StatusError
	m.ErrMessage = reason
	m.IsLoading = false
}

// IsEmpty returns true if the message has no visible content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	return string(runes[:maxLen-3]) + "..."
}

// Clone returns a snapshot copy of the message. The citations slice is
// copied so observers can hold the snapshot while streaming continues.
func (m *Message) Clone() Message {
	snap := *m
	if m.Citations != nil {
		snap.Citations = make([]Citation, len(m.Citations))
		copy(snap.Citations, m.Citations)
	}
	return snap
}

// =============================================================================
// ID GENERATION
// =============================================================================

// NewID creates a unique message ID.
func NewID() string {
	return "msg_" + uuid.NewString()
}
