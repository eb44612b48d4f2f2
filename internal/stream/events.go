// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import "github.com/jeranaias/driftline/internal/model"

// =============================================================================
// EVENT TYPES
// =============================================================================

// Event is one decoded record from the response stream. The concrete types
// below form a closed set; consumers switch on them.
type Event interface {
	isEvent()
}

// StatusEvent reports a progress phase change (searching, reading, ...).
type StatusEvent struct {
	Phase model.Status
}

// CitationEvent carries one web-search source reference.
type CitationEvent struct {
	Citation model.Citation
}

// ContentDeltaEvent carries a fragment of answer text. Fragments are
// concatenated in arrival order; a fragment may be empty.
type ContentDeltaEvent struct {
	Text string
}

// DoneEvent marks normal completion. No further events follow.
type DoneEvent struct{}

// ErrorEvent marks abnormal completion with a human-readable message.
// No further events follow.
type ErrorEvent struct {
	Message string
}

// LegacyTextEvent carries a raw text payload from a pre-structured server.
// Emitted only while the decoder is in legacy mode; treated as a content
// delta by the accumulator.
type LegacyTextEvent struct {
	Text string
}

func (StatusEvent) isEvent()       {}
func (CitationEvent) isEvent()     {}
func (ContentDeltaEvent) isEvent() {}
func (DoneEvent) isEvent()         {}
func (ErrorEvent) isEvent()        {}
func (LegacyTextEvent) isEvent()   {}

// Terminal reports whether the event ends the stream.
func Terminal(ev Event) bool {
	switch ev.(type) {
	case DoneEvent, ErrorEvent:
		return true
	default:
		return false
	}
}
