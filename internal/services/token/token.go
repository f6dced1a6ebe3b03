// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token signs and verifies compact session tokens. Verification is a
// pure cryptographic check: it never consults storage. Staleness against the
// subject's password-change time is the caller's responsibility because it
// requires current credential state.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification errors. The gate logs which one applied but never echoes it to
// the client.
var (
	ErrMalformed        = errors.New("token is malformed")
	ErrSignatureInvalid = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token has expired")
)

// Claims is the verified payload of a session token.
type Claims struct {
	SubjectID string
	IssuedAt  time.Time
}

// Service issues and verifies HS256-signed session tokens.
type Service struct {
	secret   []byte
	lifetime time.Duration
}

// NewService creates a token service with the given signing secret and token
// lifetime.
func NewService(secret string, lifetime time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}
	if lifetime <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}
	return &Service{secret: []byte(secret), lifetime: lifetime}, nil
}

// Issue produces a signed token carrying the subject id and issue time. The
// expiry is the issue time plus the configured lifetime.
func (s *Service) Issue(subjectID string, issuedAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.lifetime)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Failures map to
// ErrMalformed, ErrSignatureInvalid or ErrExpired.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrSignatureInvalid
	default:
		return nil, ErrMalformed
	}

	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrMalformed
	}

	return &Claims{
		SubjectID: claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
	}, nil
}
