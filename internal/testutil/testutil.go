// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/oliverandrich/classthread/internal/database"
	"codeberg.org/oliverandrich/classthread/internal/models"
	"codeberg.org/oliverandrich/classthread/internal/repository"
	"codeberg.org/oliverandrich/classthread/internal/services/password"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestRole creates a role in the database.
func NewTestRole(t *testing.T, repo *repository.Repository, name string, permissions ...string) *models.Role {
	t.Helper()
	role := &models.Role{
		ID:          uuid.New().String(),
		Name:        name,
		Permissions: permissions,
	}
	require.NoError(t, repo.CreateRole(context.Background(), role))
	return role
}

// NewTestUser creates an active user with the given email and password.
// roleID may be nil for a user without a role.
func NewTestUser(t *testing.T, repo *repository.Repository, email, plaintext string, roleID *string) *models.User {
	t.Helper()
	hash, err := password.Hash(plaintext)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         "Test User",
		Email:        email,
		Status:       models.StatusActive,
		RoleID:       roleID,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))

	created, err := repo.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	return created
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
