// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage()

	if msg.Role != RoleAssistant {
		t.Errorf("Expected assistant role, got %s", msg.Role)
	}
	if msg.Status != StatusIdle {
		t.Errorf("Expected idle status, got %s", msg.Status)
	}
	if !msg.IsLoading {
		t.Error("New assistant message should be loading")
	}
	if !msg.IsEmpty() {
		t.Error("New assistant message should be empty")
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("Expected msg_ ID prefix, got %q", msg.ID)
	}
}

func TestAppendContentClearsLoading(t *testing.T) {
	msg := NewAssistantMessage()

	msg.SetStatus(StatusGenerating)
	if !msg.IsLoading {
		t.Error("Status update alone should not clear loading")
	}

	msg.AppendContent("H")
	if msg.IsLoading {
		t.Error("First visible character should clear loading")
	}
	if msg.Content != "H" {
		t.Errorf("Expected content 'H', got %q", msg.Content)
	}
}

func TestAddCitationPreservesOrderAndDuplicates(t *testing.T) {
	msg := NewAssistantMessage()

	first := Citation{ID: 1, URL: "https://example.com/a", Title: "A"}
	second := Citation{ID: 2, URL: "https://example.com/b", Title: "B"}

	msg.AddCitation(first)
	msg.AddCitation(second)
	msg.AddCitation(first) // duplicates are kept

	if len(msg.Citations) != 3 {
		t.Fatalf("Expected 3 citations, got %d", len(msg.Citations))
	}
	if msg.Citations[0].ID != 1 || msg.Citations[1].ID != 2 || msg.Citations[2].ID != 1 {
		t.Errorf("Citation order not preserved: %+v", msg.Citations)
	}
}

func TestCloneIsolatesCitations(t *testing.T) {
	msg := NewAssistantMessage()
	msg.AddCitation(Citation{ID: 1, URL: "https://example.com"})

	snap := msg.Clone()
	msg.AddCitation(Citation{ID: 2, URL: "https://example.org"})

	if len(snap.Citations) != 1 {
		t.Errorf("Snapshot should not see later citations, got %d", len(snap.Citations))
	}
}

func TestParseStatus(t *testing.T) {
	for _, phase := range []string{"idle", "searching", "reading", "generating", "done"} {
		if _, ok := ParseStatus(phase); !ok {
			t.Errorf("Expected %q to parse", phase)
		}
	}
	if _, ok := ParseStatus("transcoding"); ok {
		t.Error("Unknown phase should not parse")
	}
	// The error status is assigned locally, never parsed off the wire.
	if _, ok := ParseStatus("error"); ok {
		t.Error("error is not a wire phase")
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversationTitleFromFirstUserMessage(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("What is the boiling point of lead?")
	conv.AddAssistantMessage()

	if conv.Title != "What is the boiling point of lead?" {
		t.Errorf("Unexpected title %q", conv.Title)
	}
}

func TestRemoveIfEmptyError(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("hi")
	msg := conv.AddAssistantMessage()

	// Errored with no content: dropped.
	msg.Fail("backend unavailable")
	if !conv.RemoveIfEmptyError(msg.ID) {
		t.Error("Empty errored message should be removed")
	}
	if conv.MessageCount() != 1 {
		t.Errorf("Expected 1 message after removal, got %d", conv.MessageCount())
	}

	// Errored with partial content: kept.
	msg = conv.AddAssistantMessage()
	msg.AppendContent("partial answer")
	msg.Fail("stream interrupted")
	if conv.RemoveIfEmptyError(msg.ID) {
		t.Error("Errored message with content should be kept")
	}
}

func TestPruneOldMessages(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < MaxMessages+10; i++ {
		conv.AddUserMessage("m")
	}
	if conv.MessageCount() != MaxMessages {
		t.Errorf("Expected %d messages after pruning, got %d", MaxMessages, conv.MessageCount())
	}
}

func TestGetLastUserMessage(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("first")
	conv.AddAssistantMessage()
	conv.AddUserMessage("second")
	conv.AddAssistantMessage()

	last := conv.GetLastUserMessage()
	if last == nil || last.Content != "second" {
		t.Errorf("Expected last user message 'second', got %+v", last)
	}
}
