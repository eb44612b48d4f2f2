// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// =============================================================================
// TOTP SUPPORT
// =============================================================================

// totpIssuer is the issuer shown in authenticator apps.
const totpIssuer = "Driftline"

// ErrInvalidTOTPCode is returned when a submitted code does not match.
var ErrInvalidTOTPCode = errors.New("invalid verification code")

// GenerateTOTPSecret creates a new TOTP key for the account. The
// returned key carries both the raw secret and the otpauth:// URL for
// QR provisioning.
func GenerateTOTPSecret(username string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: username,
	})
}

// VerifyTOTP checks a 6-digit code against the account secret. Returns
// ErrInvalidTOTPCode on mismatch so callers can show a stable message.
func VerifyTOTP(code, secret string) error {
	if !totp.Validate(code, secret) {
		return ErrInvalidTOTPCode
	}
	return nil
}
