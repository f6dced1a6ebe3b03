// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware provides the authorization gate for protected routes.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/classthread/internal/auth"
	"codeberg.org/oliverandrich/classthread/internal/models"
	"codeberg.org/oliverandrich/classthread/internal/repository"
	"codeberg.org/oliverandrich/classthread/internal/services/token"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// SubjectResolver loads the current credential state for a token subject.
type SubjectResolver interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticate runs the fixed-order gate on every request: extract bearer
// token, verify it, resolve the subject with its role, reject tokens issued
// before the last password change, then attach the identity to the request
// context. Every failure yields the same generic 401; the sub-reason is only
// logged.
func Authenticate(tokens *token.Service, users SubjectResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return unauthenticated(c, "no_token", nil)
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				return unauthenticated(c, verifyReason(err), err)
			}

			user, err := users.GetUserByID(c.Request().Context(), claims.SubjectID)
			if err != nil {
				if repository.IsNotFound(err) {
					return unauthenticated(c, "subject_gone", nil)
				}
				// Fail closed on store errors.
				return unauthenticated(c, "store_error", err)
			}

			if !user.IsActive() {
				return unauthenticated(c, "account_disabled", nil)
			}

			if user.PasswordChangedAfter(claims.IssuedAt) {
				return unauthenticated(c, "stale", nil)
			}

			ctx := auth.SetUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireRole restricts an operation to the given role names. It runs after
// Authenticate; a user without a resolvable role is unauthorized for any
// role-gated operation.
func RequireRole(names ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := auth.GetUser(c.Request().Context())
			if user == nil {
				return unauthenticated(c, "gate_not_run", nil)
			}
			if user.Role == nil || !lo.Contains(names, user.Role.Name) {
				slog.Warn("access_denied", "user_id", user.ID,
					"path", c.Request().URL.Path, "allowed_roles", names)
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "you do not have permission to perform this action",
				})
			}
			return next(c)
		}
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// unauthenticated logs the specific rejection reason and answers with a
// generic 401 so the response does not reveal which check failed.
func unauthenticated(c echo.Context, reason string, err error) error {
	attrs := []any{"reason", reason, "path", c.Request().URL.Path}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	slog.Warn("auth_rejected", attrs...)
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error": "you are not logged in, please log in to get access",
	})
}

func verifyReason(err error) string {
	switch err {
	case token.ErrExpired:
		return "expired"
	case token.ErrSignatureInvalid:
		return "signature_invalid"
	default:
		return "malformed"
	}
}
