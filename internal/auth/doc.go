// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth implements client-side credential policy: username format
// rules, password strength scoring, and TOTP verification for accounts
// with two-factor enabled.
//
// Validation is pure and stateless; results are returned as structured
// values for inline rendering, never as errors. The rules mirror the
// backend's policy so the signup form can reject bad input before a
// round trip, but the backend remains authoritative (see the api
// package's username availability check).
package auth
