// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Driftline backend.
//
// The client covers three surfaces: session auth (login, logout,
// username availability), the streaming chat endpoint, and account
// signup. Streaming responses are decoded by the stream package; this
// package only moves bytes and classifies transport failures.
package api
