// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"
	"time"

	"github.com/jeranaias/driftline/internal/model"
)

// =============================================================================
// FRAME BUFFER
// =============================================================================

// FrameBuffer carries message snapshots from the streaming goroutine
// into the Bubble Tea loop at a capped frame rate.
//
// The accumulator can emit hundreds of snapshots per second; rendering
// each one causes flicker and wastes CPU. Only the newest snapshot
// matters for display, so writes overwrite and Take returns at most one
// frame per interval.
//
// Thread-safety: Put is called from the streaming goroutine, Take from
// the main Bubble Tea loop.
type FrameBuffer struct {
	mu        sync.Mutex
	latest    model.Message
	dirty     bool
	lastTake  time.Time
	minPeriod time.Duration
}

// defaultMaxFPS caps streaming redraws.
const defaultMaxFPS = 30

// NewFrameBuffer creates a frame buffer with the default frame cap.
func NewFrameBuffer() *FrameBuffer {
	return NewFrameBufferWithFPS(defaultMaxFPS)
}

// NewFrameBufferWithFPS creates a frame buffer with a custom cap.
func NewFrameBufferWithFPS(maxFPS int) *FrameBuffer {
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = defaultMaxFPS
	}
	return &FrameBuffer{
		minPeriod: time.Second / time.Duration(maxFPS),
	}
}

// Put stores the newest snapshot, replacing any unrendered one.
func (fb *FrameBuffer) Put(snap model.Message) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.latest = snap
	fb.dirty = true
}

// Take returns the newest snapshot if one is pending and the frame
// interval has elapsed. The second return is false when there is
// nothing to render yet.
func (fb *FrameBuffer) Take() (model.Message, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if !fb.dirty {
		return model.Message{}, false
	}
	if time.Since(fb.lastTake) < fb.minPeriod {
		return model.Message{}, false
	}

	fb.dirty = false
	fb.lastTake = time.Now()
	return fb.latest, true
}

// TakeFinal returns the newest snapshot regardless of the frame
// interval. Called once when the stream ends so the last delta is never
// dropped.
func (fb *FrameBuffer) TakeFinal() (model.Message, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if !fb.dirty {
		return model.Message{}, false
	}
	fb.dirty = false
	fb.lastTake = time.Now()
	return fb.latest, true
}
