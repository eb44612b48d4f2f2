// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package secret encrypts credential values at rest.
//
// Session tokens are stored in the config directory encrypted with
// AES-256-GCM under a key derived (PBKDF2-SHA-256) from a random master
// secret kept in an owner-only file. Encrypted values carry the ENC:
// prefix so plaintext and ciphertext never get confused in config files.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/driftline/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// EncryptedPrefix marks a stored value as encrypted.
	// Format: ENC:base64(salt|nonce|ciphertext).
	EncryptedPrefix = "ENC:"

	// keySize is the AES-256 key length.
	keySize = 32

	// saltSize is the per-value PBKDF2 salt length.
	saltSize = 16

	// nonceSize is the AES-GCM nonce length.
	nonceSize = 12

	// pbkdf2Iterations follows the OWASP recommendation for
	// PBKDF2-SHA-256.
	pbkdf2Iterations = 600000

	// masterSecretFile holds the random master secret, owner-only.
	masterSecretFile = "secret.key"
)

var (
	// ErrInvalidCiphertext indicates the stored value is not in the
	// expected format.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")

	// ErrDecryptionFailed indicates a wrong key or tampered data.
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// =============================================================================
// STORE
// =============================================================================

// Store encrypts and decrypts values under a directory-scoped master
// secret.
type Store struct {
	master []byte
}

// Open loads the master secret from dir, generating one on first use.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, masterSecretFile)

	data, err := os.ReadFile(path)
	if err == nil {
		raw, decErr := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if decErr != nil || len(raw) != keySize {
			return nil, fmt.Errorf("corrupt master secret at %s", path)
		}
		return &Store{master: raw}, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read master secret: %w", err)
	}

	raw := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return nil, fmt.Errorf("failed to generate master secret: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw) + "\n"
	if err := util.AtomicWriteFilePrivate(path, []byte(encoded)); err != nil {
		return nil, fmt.Errorf("failed to store master secret: %w", err)
	}
	return &Store{master: raw}, nil
}

// Encrypt seals a plaintext value. Each call uses a fresh salt and
// nonce, so identical plaintexts never produce identical ciphertexts.
func (s *Store) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := s.aead(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)

	blob := make([]byte, 0, saltSize+nonceSize+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens a value produced by Encrypt.
func (s *Store) Decrypt(value string) (string, error) {
	if !IsEncrypted(value) {
		return "", ErrInvalidCiphertext
	}
	blob, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(blob) < saltSize+nonceSize {
		return "", ErrInvalidCiphertext
	}

	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+nonceSize]
	sealed := blob[saltSize+nonceSize:]

	aead, err := s.aead(salt)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether a stored value carries the ENC: prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}

// ZeroBytes zeros sensitive buffers.
// SECURITY: Zero key material to limit exposure in crash dumps.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func (s *Store) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(s.master, salt, pbkdf2Iterations, keySize, sha256.New)
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
