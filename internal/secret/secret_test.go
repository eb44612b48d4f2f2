// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package secret

import (
	"strings"
	"testing"
)

// =============================================================================
// STORE TESTS
// =============================================================================

func TestEncryptDecryptRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	sealed, err := store.Encrypt("tok_abc123")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !IsEncrypted(sealed) {
		t.Errorf("Expected ENC: prefix, got %q", sealed)
	}
	if strings.Contains(sealed, "tok_abc123") {
		t.Error("Ciphertext leaks plaintext")
	}

	plain, err := store.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if plain != "tok_abc123" {
		t.Errorf("Round trip mismatch: %q", plain)
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	a, _ := store.Encrypt("same value")
	b, _ := store.Encrypt("same value")
	if a == b {
		t.Error("Identical plaintexts must not produce identical ciphertexts")
	}
}

func TestMasterSecretPersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	first, err := Open(dir)
	if err != nil {
		t.Fatalf("First Open failed: %v", err)
	}
	sealed, err := first.Encrypt("persist me")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	second, err := Open(dir)
	if err != nil {
		t.Fatalf("Second Open failed: %v", err)
	}
	plain, err := second.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt with reloaded secret failed: %v", err)
	}
	if plain != "persist me" {
		t.Errorf("Round trip mismatch: %q", plain)
	}
}

func TestDecryptRejectsTampering(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	sealed, _ := store.Encrypt("integrity")
	tampered := sealed[:len(sealed)-2] + "AA"
	if _, err := store.Decrypt(tampered); err == nil {
		t.Error("Tampered ciphertext should not decrypt")
	}
}

func TestDecryptRejectsBadFormat(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for _, v := range []string{"plaintext", "ENC:not base64!!!", "ENC:QQ=="} {
		if _, err := store.Decrypt(v); err == nil {
			t.Errorf("Expected error for %q", v)
		}
	}
}

func TestDifferentStoresCannotDecrypt(t *testing.T) {
	storeA, _ := Open(t.TempDir())
	storeB, _ := Open(t.TempDir())

	sealed, _ := storeA.Encrypt("private")
	if _, err := storeB.Decrypt(sealed); err == nil {
		t.Error("A different master secret should not decrypt the value")
	}
}
