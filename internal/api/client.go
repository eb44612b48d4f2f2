// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/driftline/internal/auth"
	"github.com/jeranaias/driftline/internal/stream"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Driftline client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeUnauthorized
	ErrTypeRateLimited
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable  = &ClientError{Type: ErrTypeConnection, Message: "Driftline backend is unreachable"}
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnauthorized = &ClientError{Type: ErrTypeUnauthorized, Message: "not logged in or session expired"}
	ErrRateLimited  = &ClientError{Type: ErrTypeRateLimited, Message: "too many requests, slow down"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Driftline client.
type ClientConfig struct {
	// BaseURL is the backend root (default: https://api.driftline.app).
	BaseURL string

	// Token is the session token, sent as a bearer credential.
	Token string

	// Timeout for non-streaming requests (default: 30s).
	Timeout time.Duration

	// RequestsPerMinute paces message sends. 0 disables pacing.
	RequestsPerMinute int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "https://api.driftline.app",
		Timeout:           30 * time.Second,
		RequestsPerMinute: 20,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Driftline backend.
//
// The Client is safe for concurrent use. Streaming requests use a
// dedicated http.Client without a timeout; cancellation is handled via
// context.
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	streamClient *http.Client
	limiter      *rate.Limiter
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.driftline.app"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	// Burst of 1: pacing is about protecting the backend, not batching.
	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), 1)
	}

	return &Client{
		config:       config,
		httpClient:   &http.Client{Timeout: config.Timeout},
		streamClient: &http.Client{},
		limiter:      limiter,
	}
}

// SetToken updates the session token after login.
func (c *Client) SetToken(token string) {
	c.config.Token = token
}

// =============================================================================
// AUTH OPERATIONS
// =============================================================================

// Login exchanges credentials for a session token. When the account has
// two-factor enabled and no code was supplied, the response has
// TOTPRequired set and an empty token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var result LoginResponse
	if err := c.postJSON(ctx, "/api/auth/login", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout invalidates the current session token.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/api/auth/logout", struct{}{}, nil)
}

// Register creates a new account. Callers should validate credentials
// with the auth package first to avoid a pointless round trip.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	var result LoginResponse
	if err := c.postJSON(ctx, "/api/auth/register", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckUsername asks the backend whether a username is still available.
// The backend is authoritative; local format validation cannot see
// existing accounts.
func (c *Client) CheckUsername(ctx context.Context, username string) (*auth.AvailabilityResult, error) {
	endpoint := c.config.BaseURL + "/api/auth/username-check?username=" + url.QueryEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var result auth.AvailabilityResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &result, nil
}

// Ping checks backend reachability with an unauthenticated health
// request.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// StreamMessage sends a chat message and decodes the streamed response,
// invoking the callback for each event in arrival order. Blocks until
// the stream ends or the context is cancelled.
//
// A nil return means the transport closed cleanly; whether the answer
// actually completed is visible through the events (the caller's
// accumulator knows if a terminal event arrived).
func (c *Client) StreamMessage(ctx context.Context, chatReq ChatRequest, callback stream.Callback) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTimeout, Message: "cancelled while pacing request", Cause: err}
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat/stream", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	return stream.NewReader(resp.Body).Process(ctx, callback)
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

func (c *Client) postJSON(ctx context.Context, path string, reqBody, result any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request cancelled", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: ErrUnreachable.Message, Cause: err}
}

// checkStatus maps non-2xx responses to typed errors, preferring the
// backend's own error message when the body carries one.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}

	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: envelope.Error}
	}
	return &ClientError{Type: ErrTypeInvalidResponse, Message: "request failed: " + resp.Status}
}
