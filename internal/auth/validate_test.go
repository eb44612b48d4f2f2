// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// USERNAME TESTS
// =============================================================================

func TestValidateUsername_Valid(t *testing.T) {
	for _, name := range []string{"ab12345", "alice_1", "Bob.Smith-99", "abcdef"} {
		res := ValidateUsername(name)
		require.True(t, res.Valid, "expected %q to be valid, got %q", name, res.Error)
		require.Empty(t, res.Error)
	}
}

func TestValidateUsername_RulesShortCircuitInOrder(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"too short", "abcde", msgUsernameTooShort},
		{"too long", "abcdefghijklmnopqrs", msgUsernameTooLong},
		{"starts with digit", "1abcde", msgUsernameFirstChar},
		{"starts with underscore", "_abcde", msgUsernameFirstChar},
		{"contains space", "abc defg", msgUsernameCharset},
		{"contains slash", "abc/def", msgUsernameCharset},
		// Both too short and bad first char: length wins.
		{"short and bad first", "1abc", msgUsernameTooShort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidateUsername(tc.input)
			require.False(t, res.Valid)
			require.Equal(t, tc.want, res.Error)
		})
	}
}

// =============================================================================
// PASSWORD TESTS
// =============================================================================

func TestValidatePassword_TooShort(t *testing.T) {
	res := ValidatePassword("short1!")
	require.False(t, res.Valid)
	require.Contains(t, res.Issues, msgPasswordTooShort)
	require.Equal(t, 40, res.Score) // three classes, no length credit
	require.Equal(t, LevelFair, res.Level)
}

func TestValidatePassword_RepeatedRun(t *testing.T) {
	res := ValidatePassword("aaaaaaaa")
	require.False(t, res.Valid)
	require.Equal(t, []string{
		msgPasswordUppercase,
		msgPasswordDigit,
		msgPasswordSpecial,
		msgPasswordPattern,
	}, res.Issues)
	require.Equal(t, 10, res.Score) // 10 length + 10 class - 10 pattern
	require.Equal(t, LevelWeak, res.Level)
}

func TestValidatePassword_Strong(t *testing.T) {
	// 12 chars, all four classes, no repeats or sequences.
	res := ValidatePassword("Tz7!qM2#pW9@")
	require.True(t, res.Valid)
	require.Empty(t, res.Issues)
	require.Equal(t, 80, res.Score) // 20 length + 40 classes + 20 variety
	require.Equal(t, LevelStrong, res.Level)
}

func TestValidatePassword_AscendingAlphaPenalty(t *testing.T) {
	// All four classes but contains the ascending run "bcd"; the
	// penalty drops the score and blocks validity.
	res := ValidatePassword("Abcdefgh1!")
	require.False(t, res.Valid)
	require.Equal(t, []string{msgPasswordPattern}, res.Issues)
	require.Equal(t, 60, res.Score) // 10 length + 40 classes + 20 variety - 10
	require.Equal(t, LevelGood, res.Level)
}

func TestValidatePassword_AscendingNumeric(t *testing.T) {
	res := ValidatePassword("Xk123Xk!")
	require.Contains(t, res.Issues, msgPasswordPattern)
}

func TestValidatePassword_CaseInsensitiveSequence(t *testing.T) {
	res := ValidatePassword("xAbCdx7!")
	require.Contains(t, res.Issues, msgPasswordPattern)
}

func TestValidatePassword_MaxLength(t *testing.T) {
	long := make([]byte, 129)
	for i := range long {
		if i%2 == 0 {
			long[i] = 'X'
		} else {
			long[i] = '!'
		}
	}
	res := ValidatePassword(string(long))
	require.False(t, res.Valid)
	require.Contains(t, res.Issues, msgPasswordTooLong)
}

func TestValidatePassword_ScoreClamped(t *testing.T) {
	// 16+ chars, four classes, no penalty: the raw sum is 90 and stays
	// within range after clamping.
	res := ValidatePassword("Tz7!qM2#pW9@Lf4$")
	require.True(t, res.Valid)
	require.Equal(t, 90, res.Score)
	require.Equal(t, LevelStrong, res.Level)
}

func TestValidatePassword_FeedbackIsAdvisory(t *testing.T) {
	// Valid but shorter than 16: feedback suggests more length without
	// blocking validity.
	res := ValidatePassword("Tz7!qM2#pW9@")
	require.True(t, res.Valid)
	require.NotEmpty(t, res.Feedback)
}

func TestValidatePassword_EmptyInput(t *testing.T) {
	res := ValidatePassword("")
	require.False(t, res.Valid)
	require.Equal(t, 0, res.Score)
	require.Equal(t, LevelWeak, res.Level)
}

// =============================================================================
// TOTP TESTS
// =============================================================================

func TestTOTPRoundTrip(t *testing.T) {
	key, err := GenerateTOTPSecret("alice_1")
	require.NoError(t, err)
	require.NotEmpty(t, key.Secret())

	require.ErrorIs(t, VerifyTOTP("000000", key.Secret()), ErrInvalidTOTPCode)
}
