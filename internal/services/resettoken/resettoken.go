// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package resettoken generates single-use password reset tokens and their
// storage fingerprints. The plaintext token is sent to the user; only the
// fingerprint is ever persisted, so possession of the plaintext is the sole
// proof of authorization to reset.
package resettoken

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// TokenBytes is the number of random bytes in a token (256 bits).
const TokenBytes = 32

// Generate creates a secure random token and its fingerprint.
// Returns (plaintext, fingerprint, error).
func Generate() (string, string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	plaintext := hex.EncodeToString(buf)
	return plaintext, FingerprintOf(plaintext), nil
}

// FingerprintOf computes the SHA256 fingerprint of a plaintext token. It is
// deterministic so an incoming reset request can be re-fingerprinted for
// lookup, and fast because the input already carries full token entropy.
func FingerprintOf(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether the plaintext token corresponds to the stored
// fingerprint, in constant time.
func Matches(plaintext, fingerprint string) bool {
	if plaintext == "" || fingerprint == "" {
		return false
	}
	computed := FingerprintOf(plaintext)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(fingerprint)) == 1
}
