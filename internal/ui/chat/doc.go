// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat view for the driftline TUI.
//
// The view is a Bubble Tea model: a scrollable conversation viewport, a
// single-line input, and a status bar showing the backend's progress
// phase while an answer streams in. Stream events are folded by a
// stream.Accumulator on a background goroutine; snapshots cross into the
// Bubble Tea loop through a latest-wins frame buffer so rendering stays
// capped at a sane frame rate no matter how fast deltas arrive.
package chat
