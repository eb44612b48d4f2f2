// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes the chat backend's event stream and folds it into
// an evolving assistant message.
//
// The backend frames responses as newline-delimited records of the form
//
//	data: {"type":"status","status":"searching"}
//	data: {"type":"citation","citation":{...}}
//	data: {"type":"content","content":"Hello"}
//	data: {"type":"done"}
//
// with two non-JSON sentinels ([DONE] and [ERROR] <message>) and a legacy
// plain-text mode kept for older server versions. Records may be split at
// any byte boundary by the transport, so the Decoder reassembles lines
// across chunks before interpreting them.
//
// Three pieces cooperate:
//
//   - Decoder turns raw text chunks into Events. It owns the line buffer
//     and the legacy-fallback switch and holds no application state.
//   - Reader drives a Decoder from an io.Reader (the HTTP response body),
//     checking for cancellation between reads.
//   - Accumulator folds Events into one model.Message and publishes a
//     snapshot to subscribers after every event, in arrival order.
package stream
