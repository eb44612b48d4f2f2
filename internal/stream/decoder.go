// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"encoding/json"
	"strings"

	"github.com/jeranaias/driftline/internal/model"
)

// =============================================================================
// WIRE FORMAT
// =============================================================================

const (
	// dataPrefix marks a significant line. Anything else (blank lines,
	// comment lines, unknown fields) is transport noise and is skipped.
	dataPrefix = "data: "

	// doneSentinel is the non-JSON end-of-stream marker some server
	// versions emit instead of a structured done event.
	doneSentinel = "[DONE]"

	// errorSentinel prefixes a non-JSON error payload; the remainder of
	// the line is the human-readable message.
	errorSentinel = "[ERROR]"
)

// wireEvent is the structured payload envelope. Exactly one of the
// type-specific fields is populated, selected by Type.
type wireEvent struct {
	Type     string          `json:"type"`
	Status   string          `json:"status,omitempty"`
	Citation *model.Citation `json:"citation,omitempty"`
	Content  string          `json:"content,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// =============================================================================
// DECODER
// =============================================================================

// Decoder reassembles newline-delimited records from arbitrarily chunked
// text and decodes them into Events.
//
// The transport may split a record at any byte boundary, so Feed buffers
// the trailing fragment after the last newline and only interprets
// complete lines. The sequence of emitted events is therefore identical
// regardless of how the input was chunked.
//
// Decoder is not safe for concurrent use; a stream has one reader.
type Decoder struct {
	buf string

	// seenStructured latches once any structured payload decodes. After
	// that, undecodable payloads are dropped instead of being surfaced as
	// legacy text. The switch is one-way: a structured server never
	// reverts to the legacy framing mid-response.
	seenStructured bool

	// terminated latches on the first done or error record. Everything
	// after it is discarded.
	terminated bool
}

// NewDecoder creates a decoder for one response stream.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Terminated reports whether a done or error record has been seen.
func (d *Decoder) Terminated() bool {
	return d.terminated
}

// Feed consumes one transport chunk and returns the events completed by
// it, in order. A chunk may complete zero events (a partial record) or
// several (multiple records coalesced into one read).
func (d *Decoder) Feed(chunk string) []Event {
	if d.terminated {
		return nil
	}
	d.buf += chunk

	var events []Event
	for {
		idx := strings.IndexByte(d.buf, '\n')
		if idx < 0 {
			break
		}
		line := d.buf[:idx]
		d.buf = d.buf[idx+1:]
		if d.terminated {
			continue
		}
		if ev := d.decodeLine(line); ev != nil {
			events = append(events, ev)
		}
	}
	return events
}

// Flush decodes whatever remains in the buffer as a final record. Called
// when the transport closes without a trailing newline; most streams end
// with a terminal record and flush nothing.
func (d *Decoder) Flush() []Event {
	if d.terminated || d.buf == "" {
		return nil
	}
	line := d.buf
	d.buf = ""
	if ev := d.decodeLine(line); ev != nil {
		return []Event{ev}
	}
	return nil
}

// decodeLine interprets one complete line. Returns nil for lines that
// produce no event.
func (d *Decoder) decodeLine(line string) Event {
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasPrefix(line, dataPrefix) {
		return nil
	}
	payload := strings.TrimSpace(line[len(dataPrefix):])

	// Sentinels are checked before JSON so a legacy server's terminal
	// markers work even though they are not valid JSON.
	if payload == doneSentinel {
		d.terminated = true
		return DoneEvent{}
	}
	if strings.HasPrefix(payload, errorSentinel) {
		d.terminated = true
		msg := strings.TrimSpace(strings.TrimPrefix(payload, errorSentinel))
		return ErrorEvent{Message: msg}
	}

	if ev, ok := d.decodeStructured(payload); ok {
		d.seenStructured = true
		return ev
	}

	// Undecodable payload: raw text from a legacy server, unless we have
	// already proven this server speaks the structured protocol.
	if d.seenStructured {
		return nil
	}
	return LegacyTextEvent{Text: payload}
}

// decodeStructured parses a JSON envelope. The second return is false
// when the payload is not a structured event at all; a recognized type
// with an unusable body returns (nil, true) so it is dropped rather than
// misread as legacy text.
func (d *Decoder) decodeStructured(payload string) (Event, bool) {
	if !strings.HasPrefix(payload, "{") {
		return nil, false
	}
	var we wireEvent
	if err := json.Unmarshal([]byte(payload), &we); err != nil {
		return nil, false
	}

	switch we.Type {
	case "status":
		phase, ok := model.ParseStatus(we.Status)
		if !ok {
			return nil, true
		}
		return StatusEvent{Phase: phase}, true
	case "citation":
		if we.Citation == nil {
			return nil, true
		}
		return CitationEvent{Citation: *we.Citation}, true
	case "content":
		return ContentDeltaEvent{Text: we.Content}, true
	case "done":
		d.terminated = true
		return DoneEvent{}, true
	case "error":
		d.terminated = true
		return ErrorEvent{Message: we.Error}, true
	default:
		return nil, false
	}
}
