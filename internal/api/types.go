// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// HistoryMessage is one prior turn sent for context with a new message.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body for the streaming chat endpoint.
type ChatRequest struct {
	Message        string           `json:"message"`
	ConversationID string           `json:"conversation_id,omitempty"`
	History        []HistoryMessage `json:"history,omitempty"`
	// WebSearch asks the backend to ground the answer in web results,
	// producing citation events.
	WebSearch bool `json:"web_search"`
}

// LoginRequest is the body for the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// TOTPCode is required when the account has two-factor enabled.
	TOTPCode string `json:"totp_code,omitempty"`
}

// LoginResponse is the backend's answer to a login attempt.
type LoginResponse struct {
	Token string `json:"token"`
	// TOTPRequired is set with an empty token when the account needs a
	// second factor and none was supplied.
	TOTPRequired bool `json:"totp_required"`
}

// RegisterRequest is the body for the signup endpoint.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// errorEnvelope is the backend's JSON error body.
type errorEnvelope struct {
	Error string `json:"error"`
}
