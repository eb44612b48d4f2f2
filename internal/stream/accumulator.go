// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"sync"

	"github.com/jeranaias/driftline/internal/model"
)

// =============================================================================
// ACCUMULATOR
// =============================================================================

// interruptedReason is the error shown when a stream ends without a
// terminal record (connection dropped, server went away mid-answer).
const interruptedReason = "Response interrupted before completion"

// Observer receives a snapshot of the message after each applied event.
type Observer func(model.Message)

// Accumulator folds stream events into one assistant message.
//
// Events are applied strictly in arrival order; each applied event
// produces exactly one snapshot notification to every subscriber, after
// the mutation is complete. Once the message reaches a terminal status
// (done or error) or the turn is aborted, further events are ignored and
// produce no notification.
//
// RELIABILITY: the reader goroutine applies events while the UI loop
// reads snapshots, so all state is guarded by a mutex. Snapshots are
// deep copies; observers may hold them indefinitely.
type Accumulator struct {
	mu        sync.Mutex
	msg       *model.Message
	aborted   bool
	observers []Observer
}

// NewAccumulator creates an accumulator with no active turn.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Subscribe registers an observer for snapshot notifications. Observers
// are called synchronously in registration order.
func (a *Accumulator) Subscribe(fn Observer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, fn)
}

// Begin starts a new turn: a fresh assistant message under the given ID,
// loading, with no content or citations. Any previous turn's state is
// replaced. Returns a snapshot of the new message.
func (a *Accumulator) Begin(id string) model.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msg = model.NewAssistantMessageWithID(id)
	a.aborted = false
	return a.msg.Clone()
}

// Apply folds one event into the message and notifies observers. Events
// arriving before Begin, after a terminal event, or after Abort are
// discarded without notification.
func (a *Accumulator) Apply(ev Event) {
	a.mu.Lock()
	if a.msg == nil || a.aborted || a.msg.Status.Terminal() {
		a.mu.Unlock()
		return
	}

	switch e := ev.(type) {
	case StatusEvent:
		a.msg.SetStatus(e.Phase)
	case CitationEvent:
		a.msg.AddCitation(e.Citation)
	case ContentDeltaEvent:
		a.msg.AppendContent(e.Text)
	case LegacyTextEvent:
		a.msg.AppendContent(e.Text)
	case DoneEvent:
		a.msg.SetStatus(model.StatusDone)
	case ErrorEvent:
		a.msg.Fail(e.Message)
	default:
		a.mu.Unlock()
		return
	}

	snap := a.msg.Clone()
	observers := a.observers
	a.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

// Abort cancels the active turn. Content and citations received so far
// are kept, the loading indicator drops, and all subsequent events are
// ignored. Idempotent: repeat calls (or aborting a finished turn) change
// nothing and notify nobody.
func (a *Accumulator) Abort() {
	a.mu.Lock()
	if a.msg == nil || a.aborted || a.msg.Status.Terminal() {
		a.mu.Unlock()
		return
	}
	a.aborted = true
	a.msg.IsLoading = false

	snap := a.msg.Clone()
	observers := a.observers
	a.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

// FinishInterrupted marks the turn as failed when the stream ended
// without a terminal record. No-op if the turn already finished or was
// aborted.
func (a *Accumulator) FinishInterrupted() {
	a.mu.Lock()
	if a.msg == nil || a.aborted || a.msg.Status.Terminal() {
		a.mu.Unlock()
		return
	}
	a.msg.Fail(interruptedReason)

	snap := a.msg.Clone()
	observers := a.observers
	a.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

// Aborted reports whether the active turn was aborted.
func (a *Accumulator) Aborted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.aborted
}

// Done reports whether the turn reached a terminal status or was aborted.
func (a *Accumulator) Done() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.msg != nil && (a.aborted || a.msg.Status.Terminal())
}

// Snapshot returns a copy of the current message. The second return is
// false before the first Begin.
func (a *Accumulator) Snapshot() (model.Message, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.msg == nil {
		return model.Message{}, false
	}
	return a.msg.Clone(), true
}
