// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// POLICY CONSTANTS
// =============================================================================

const (
	// UsernameMinLength and UsernameMaxLength bound the username in
	// characters.
	UsernameMinLength = 6
	UsernameMaxLength = 18

	// PasswordMinLength and PasswordMaxLength bound the password.
	PasswordMinLength = 8
	PasswordMaxLength = 128
)

// Username rule messages, in check order.
const (
	msgUsernameTooShort  = "Username must be at least 6 characters"
	msgUsernameTooLong   = "Username must be at most 18 characters"
	msgUsernameFirstChar = "Username must start with a letter"
	msgUsernameCharset   = "Username may only contain letters, digits, underscores, dots, and hyphens"
)

// Password hard-requirement messages.
const (
	msgPasswordTooShort  = "Password must be at least 8 characters"
	msgPasswordTooLong   = "Password must be at most 128 characters"
	msgPasswordUppercase = "Password must contain an uppercase letter"
	msgPasswordLowercase = "Password must contain a lowercase letter"
	msgPasswordDigit     = "Password must contain a digit"
	msgPasswordSpecial   = "Password must contain a special character"
	msgPasswordPattern   = "Password must not contain repeated or sequential characters"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// StrengthLevel buckets a password score for display.
type StrengthLevel string

const (
	LevelWeak   StrengthLevel = "weak"
	LevelFair   StrengthLevel = "fair"
	LevelGood   StrengthLevel = "good"
	LevelStrong StrengthLevel = "strong"
)

// UsernameResult is the outcome of a username format check. Error holds
// the first failing rule's message when Valid is false.
type UsernameResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// PasswordResult is the outcome of a password policy check.
//
// Issues lists unmet hard requirements; Valid is true iff it is empty.
// Feedback lists advisory suggestions that would raise the score but do
// not block validity. Both are ordered for stable rendering.
type PasswordResult struct {
	Valid    bool          `json:"valid"`
	Score    int           `json:"score"`
	Level    StrengthLevel `json:"level"`
	Issues   []string      `json:"issues,omitempty"`
	Feedback []string      `json:"feedback,omitempty"`
}

// AvailabilityResult is the backend's answer to a username availability
// check (see api.Client.CheckUsername).
type AvailabilityResult struct {
	Available   bool     `json:"available"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// =============================================================================
// USERNAME VALIDATION
// =============================================================================

// ValidateUsername checks a candidate username against the account name
// policy. Rules run in fixed order and short-circuit at the first
// failure: too short, too long, bad first character, bad charset.
// Input is NFC-normalized first so visually identical names compare
// identically.
func ValidateUsername(s string) UsernameResult {
	s = norm.NFC.String(s)
	runes := []rune(s)

	if len(runes) < UsernameMinLength {
		return UsernameResult{Error: msgUsernameTooShort}
	}
	if len(runes) > UsernameMaxLength {
		return UsernameResult{Error: msgUsernameTooLong}
	}
	if !isASCIILetter(runes[0]) {
		return UsernameResult{Error: msgUsernameFirstChar}
	}
	for _, r := range runes {
		if !isUsernameRune(r) {
			return UsernameResult{Error: msgUsernameCharset}
		}
	}
	return UsernameResult{Valid: true}
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isUsernameRune(r rune) bool {
	return isASCIILetter(r) || (r >= '0' && r <= '9') || r == '_' || r == '.' || r == '-'
}

// =============================================================================
// PASSWORD VALIDATION
// =============================================================================

// ValidatePassword scores a candidate password and checks it against the
// hard requirements.
//
// Scoring is additive out of 100: up to 30 for length (thresholds 8, 12,
// 16), 10 per character class present (uppercase, lowercase, digit,
// special), 10 for three classes and 10 more for all four, minus 10 when
// the password contains a repeated run or an ascending sequence of three
// or more characters. The pattern penalty also lands in Issues, so it
// blocks validity like a missing class does.
func ValidatePassword(s string) PasswordResult {
	s = norm.NFC.String(s)
	runes := []rune(s)
	n := len(runes)

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range runes {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	classes := 0
	for _, present := range []bool{hasUpper, hasLower, hasDigit, hasSpecial} {
		if present {
			classes++
		}
	}

	score := 0
	if n >= 8 {
		score += 10
	}
	if n >= 12 {
		score += 10
	}
	if n >= 16 {
		score += 10
	}
	score += classes * 10
	if classes >= 3 {
		score += 10
	}
	if classes == 4 {
		score += 10
	}

	badPattern := hasRepeatedRun(runes) || hasAscendingSequence(runes)
	if badPattern {
		score -= 10
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var issues []string
	if n < PasswordMinLength {
		issues = append(issues, msgPasswordTooShort)
	}
	if n > PasswordMaxLength {
		issues = append(issues, msgPasswordTooLong)
	}
	if !hasUpper {
		issues = append(issues, msgPasswordUppercase)
	}
	if !hasLower {
		issues = append(issues, msgPasswordLowercase)
	}
	if !hasDigit {
		issues = append(issues, msgPasswordDigit)
	}
	if !hasSpecial {
		issues = append(issues, msgPasswordSpecial)
	}
	if badPattern {
		issues = append(issues, msgPasswordPattern)
	}

	var feedback []string
	if n >= PasswordMinLength && n < 16 {
		feedback = append(feedback, "Use 16 or more characters for a stronger password")
	}
	if classes == 3 {
		feedback = append(feedback, "Add a fourth character class for a stronger password")
	}

	return PasswordResult{
		Valid:    len(issues) == 0,
		Score:    score,
		Level:    levelFor(score),
		Issues:   issues,
		Feedback: feedback,
	}
}

// levelFor maps a clamped score onto a display bucket.
func levelFor(score int) StrengthLevel {
	switch {
	case score >= 80:
		return LevelStrong
	case score >= 60:
		return LevelGood
	case score >= 40:
		return LevelFair
	default:
		return LevelWeak
	}
}

// hasRepeatedRun reports a run of three or more identical characters.
func hasRepeatedRun(runes []rune) bool {
	for i := 2; i < len(runes); i++ {
		if runes[i] == runes[i-1] && runes[i] == runes[i-2] {
			return true
		}
	}
	return false
}

// hasAscendingSequence reports three consecutive ascending digits
// ("123") or letters ("abc", case-insensitive).
func hasAscendingSequence(runes []rune) bool {
	folded := []rune(strings.ToLower(string(runes)))
	for i := 2; i < len(folded); i++ {
		a, b, c := folded[i-2], folded[i-1], folded[i]
		if b != a+1 || c != b+1 {
			continue
		}
		if a >= '0' && c <= '9' {
			return true
		}
		if a >= 'a' && c <= 'z' {
			return true
		}
	}
	return false
}
