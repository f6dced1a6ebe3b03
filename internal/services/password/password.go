// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package password provides one-way credential hashing and verification.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// Hash produces a salted bcrypt digest of the plaintext. The cost factor makes
// brute-forcing stolen digests expensive.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether the plaintext matches the digest. bcrypt's comparison
// does not leak timing proportional to a partial match. Malformed digests
// verify as false rather than erroring, so corrupted records fail closed.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
