// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"reflect"
	"testing"

	"github.com/jeranaias/driftline/internal/model"
)

// =============================================================================
// DECODER TESTS
// =============================================================================

func TestDecoderStatusRecord(t *testing.T) {
	d := NewDecoder()
	events := d.Feed("data: {\"type\":\"status\",\"status\":\"searching\"}\n")

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	ev, ok := events[0].(StatusEvent)
	if !ok {
		t.Fatalf("Expected StatusEvent, got %T", events[0])
	}
	if ev.Phase != model.StatusSearching {
		t.Errorf("Expected searching phase, got %s", ev.Phase)
	}
}

func TestDecoderCitationRecord(t *testing.T) {
	d := NewDecoder()
	payload := "data: {\"type\":\"citation\",\"citation\":{\"id\":3," +
		"\"url\":\"https://example.com/page\",\"root_url\":\"example.com\"," +
		"\"title\":\"Example\",\"snippet\":\"An example.\"," +
		"\"favicon_url\":\"https://example.com/favicon.ico\",\"source_type\":\"web\"}}\n"
	events := d.Feed(payload)

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	ev, ok := events[0].(CitationEvent)
	if !ok {
		t.Fatalf("Expected CitationEvent, got %T", events[0])
	}
	c := ev.Citation
	if c.ID != 3 || c.URL != "https://example.com/page" || c.RootURL != "example.com" {
		t.Errorf("Citation fields not decoded: %+v", c)
	}
	if c.Snippet != "An example." || c.SourceType != "web" {
		t.Errorf("Optional citation fields not decoded: %+v", c)
	}
}

func TestDecoderMultipleRecordsInOneChunk(t *testing.T) {
	d := NewDecoder()
	events := d.Feed("data: {\"type\":\"content\",\"content\":\"a\"}\n" +
		"data: {\"type\":\"content\",\"content\":\"b\"}\n" +
		"data: {\"type\":\"done\"}\n")

	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	if _, ok := events[0].(ContentDeltaEvent); !ok {
		t.Errorf("Expected ContentDeltaEvent first, got %T", events[0])
	}
	if _, ok := events[2].(DoneEvent); !ok {
		t.Errorf("Expected DoneEvent last, got %T", events[2])
	}
}

// Chunk boundaries must never change the decoded event sequence. Splits
// the same byte stream at every possible position and compares against
// the single-feed result.
func TestDecoderChunkSplitInvariance(t *testing.T) {
	input := "data: {\"type\":\"status\",\"status\":\"generating\"}\n" +
		"data: {\"type\":\"citation\",\"citation\":{\"id\":1,\"url\":\"https://example.com\",\"root_url\":\"example.com\",\"title\":\"E\"}}\n" +
		"data: {\"type\":\"content\",\"content\":\"Hello\"}\n" +
		"data: {\"type\":\"content\",\"content\":\", world\"}\n" +
		"data: {\"type\":\"done\"}\n"

	reference := NewDecoder().Feed(input)
	if len(reference) != 5 {
		t.Fatalf("Reference decode expected 5 events, got %d", len(reference))
	}

	for split := 0; split <= len(input); split++ {
		d := NewDecoder()
		var events []Event
		events = append(events, d.Feed(input[:split])...)
		events = append(events, d.Feed(input[split:])...)

		if !reflect.DeepEqual(events, reference) {
			t.Fatalf("Split at %d changed the event sequence: %+v", split, events)
		}
	}
}

func TestDecoderBuffersPartialRecord(t *testing.T) {
	d := NewDecoder()
	if events := d.Feed("data: {\"typ"); len(events) != 0 {
		t.Fatalf("Partial record should emit nothing, got %d events", len(events))
	}
	events := d.Feed("e\":\"content\",\"content\":\"Hi\"}\n")
	if len(events) != 1 {
		t.Fatalf("Expected 1 event after completion, got %d", len(events))
	}
	if ev := events[0].(ContentDeltaEvent); ev.Text != "Hi" {
		t.Errorf("Expected delta 'Hi', got %q", ev.Text)
	}
}

// =============================================================================
// SENTINEL TESTS
// =============================================================================

func TestDecoderDoneSentinel(t *testing.T) {
	d := NewDecoder()
	events := d.Feed("data: [DONE]\n")

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if _, ok := events[0].(DoneEvent); !ok {
		t.Errorf("Expected DoneEvent, got %T", events[0])
	}
	if !d.Terminated() {
		t.Error("Decoder should be terminated after [DONE]")
	}
}

func TestDecoderErrorSentinel(t *testing.T) {
	d := NewDecoder()
	events := d.Feed("data: [ERROR] rate limit exceeded\n")

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	ev, ok := events[0].(ErrorEvent)
	if !ok {
		t.Fatalf("Expected ErrorEvent, got %T", events[0])
	}
	if ev.Message != "rate limit exceeded" {
		t.Errorf("Expected sentinel remainder as message, got %q", ev.Message)
	}
	if !d.Terminated() {
		t.Error("Decoder should be terminated after [ERROR]")
	}
}

func TestDecoderDiscardsAfterTerminal(t *testing.T) {
	d := NewDecoder()
	events := d.Feed("data: {\"type\":\"done\"}\n" +
		"data: {\"type\":\"content\",\"content\":\"late\"}\n")
	if len(events) != 1 {
		t.Fatalf("Records after the terminal should be dropped, got %d events", len(events))
	}

	if events := d.Feed("data: {\"type\":\"content\",\"content\":\"later\"}\n"); len(events) != 0 {
		t.Errorf("Feeds after termination should emit nothing, got %d events", len(events))
	}
}

// =============================================================================
// LEGACY FALLBACK TESTS
// =============================================================================

func TestDecoderLegacyText(t *testing.T) {
	d := NewDecoder()
	events := d.Feed("data: plain old text\n")

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	ev, ok := events[0].(LegacyTextEvent)
	if !ok {
		t.Fatalf("Expected LegacyTextEvent, got %T", events[0])
	}
	if ev.Text != "plain old text" {
		t.Errorf("Unexpected legacy payload %q", ev.Text)
	}
}

// The fallback switch is one-way: once a structured record decodes,
// undecodable payloads are dropped, never surfaced as text.
func TestDecoderLegacyFallbackIsOneWay(t *testing.T) {
	d := NewDecoder()

	events := d.Feed("data: {\"type\":\"content\",\"content\":\"Hi\"}\n")
	if len(events) != 1 {
		t.Fatalf("Expected structured event, got %d", len(events))
	}

	events = d.Feed("data: {broken json\n")
	if len(events) != 0 {
		t.Errorf("Malformed payload after structured should be dropped, got %+v", events)
	}
}

func TestDecoderLegacyBeforeStructured(t *testing.T) {
	d := NewDecoder()

	events := d.Feed("data: {broken json\ndata: {\"type\":\"content\",\"content\":\"ok\"}\n")
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if _, ok := events[0].(LegacyTextEvent); !ok {
		t.Errorf("Pre-structured malformed payload should surface as legacy text, got %T", events[0])
	}
	if _, ok := events[1].(ContentDeltaEvent); !ok {
		t.Errorf("Expected ContentDeltaEvent, got %T", events[1])
	}
}

// =============================================================================
// NOISE AND EDGE CASES
// =============================================================================

func TestDecoderIgnoresNonDataLines(t *testing.T) {
	d := NewDecoder()
	events := d.Feed("\n: keepalive comment\nevent: ping\n" +
		"data: {\"type\":\"content\",\"content\":\"x\"}\n")

	if len(events) != 1 {
		t.Fatalf("Non-data lines should be skipped, got %d events", len(events))
	}
}

func TestDecoderHandlesCRLF(t *testing.T) {
	d := NewDecoder()
	events := d.Feed("data: {\"type\":\"content\",\"content\":\"x\"}\r\n")

	if len(events) != 1 {
		t.Fatalf("Expected 1 event from CRLF line, got %d", len(events))
	}
	if ev := events[0].(ContentDeltaEvent); ev.Text != "x" {
		t.Errorf("Expected delta 'x', got %q", ev.Text)
	}
}

func TestDecoderDropsUnknownStatusPhase(t *testing.T) {
	d := NewDecoder()
	events := d.Feed("data: {\"type\":\"status\",\"status\":\"daydreaming\"}\n")
	if len(events) != 0 {
		t.Fatalf("Unknown phase should be dropped, got %+v", events)
	}

	// The envelope still counts as structured: no legacy fallback after it.
	events = d.Feed("data: not json\n")
	if len(events) != 0 {
		t.Errorf("Expected legacy mode to stay off, got %+v", events)
	}
}

func TestDecoderFlushCompletesTrailingRecord(t *testing.T) {
	d := NewDecoder()
	if events := d.Feed("data: {\"type\":\"content\",\"content\":\"tail\"}"); len(events) != 0 {
		t.Fatalf("Unterminated record should stay buffered, got %d events", len(events))
	}
	events := d.Flush()
	if len(events) != 1 {
		t.Fatalf("Flush should decode the trailing record, got %d events", len(events))
	}
	if ev := events[0].(ContentDeltaEvent); ev.Text != "tail" {
		t.Errorf("Expected delta 'tail', got %q", ev.Text)
	}
}
