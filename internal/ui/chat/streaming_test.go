// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"

	"github.com/jeranaias/driftline/internal/model"
)

func TestFrameBufferEmptyTake(t *testing.T) {
	fb := NewFrameBuffer()

	if _, ok := fb.Take(); ok {
		t.Error("Take on empty buffer should return false")
	}
	if _, ok := fb.TakeFinal(); ok {
		t.Error("TakeFinal on empty buffer should return false")
	}
}

func TestFrameBufferLatestWins(t *testing.T) {
	fb := NewFrameBuffer()

	fb.Put(model.Message{Content: "first"})
	fb.Put(model.Message{Content: "second"})
	fb.Put(model.Message{Content: "third"})

	snap, ok := fb.Take()
	if !ok {
		t.Fatal("expected a pending frame")
	}
	if snap.Content != "third" {
		t.Errorf("expected latest snapshot, got %q", snap.Content)
	}

	// Drained; nothing more until the next Put.
	if _, ok := fb.Take(); ok {
		t.Error("Take after drain should return false")
	}
}

func TestFrameBufferRateLimit(t *testing.T) {
	fb := NewFrameBufferWithFPS(10) // 100ms interval

	fb.Put(model.Message{Content: "a"})
	if _, ok := fb.Take(); !ok {
		t.Fatal("first Take should succeed")
	}

	// A snapshot arriving immediately after is held until the interval
	// elapses.
	fb.Put(model.Message{Content: "b"})
	if _, ok := fb.Take(); ok {
		t.Error("Take within the frame interval should return false")
	}

	time.Sleep(110 * time.Millisecond)
	snap, ok := fb.Take()
	if !ok {
		t.Fatal("Take after the interval should succeed")
	}
	if snap.Content != "b" {
		t.Errorf("expected %q, got %q", "b", snap.Content)
	}
}

func TestFrameBufferTakeFinalIgnoresInterval(t *testing.T) {
	fb := NewFrameBufferWithFPS(1) // 1s interval

	fb.Put(model.Message{Content: "a"})
	if _, ok := fb.Take(); !ok {
		t.Fatal("first Take should succeed")
	}

	// The last delta must never be dropped at stream end, regardless of
	// how recently a frame was rendered.
	fb.Put(model.Message{Content: "final"})
	snap, ok := fb.TakeFinal()
	if !ok {
		t.Fatal("TakeFinal should succeed with a pending frame")
	}
	if snap.Content != "final" {
		t.Errorf("expected %q, got %q", "final", snap.Content)
	}
}

func TestFrameBufferInvalidFPSFallsBack(t *testing.T) {
	for _, fps := range []int{0, -5, 1000} {
		fb := NewFrameBufferWithFPS(fps)
		want := time.Second / defaultMaxFPS
		if fb.minPeriod != want {
			t.Errorf("fps=%d: expected period %v, got %v", fps, want, fb.minPeriod)
		}
	}
}
