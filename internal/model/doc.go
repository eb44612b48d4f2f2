// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// and citations.
//
// A Message is the unit of display: user messages are immutable once created,
// assistant messages grow incrementally while a response streams in (content
// and citations are append-only, status tracks the backend's progress phase).
// A Conversation is the ordered list of messages for one chat session.
//
// The model package has no knowledge of the wire protocol or the UI; the
// stream package mutates assistant messages through the exported helpers,
// and the ui and cli packages render snapshots of them.
package model
