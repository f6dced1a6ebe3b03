// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"net/http"
	"testing"

	"codeberg.org/oliverandrich/classthread/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_AdminOnly(t *testing.T) {
	a := newAPI(t)
	_, adminBearer := a.loginAs(t, "admin@example.com", "admin")
	_, studentBearer := a.loginAs(t, "student@example.com", "student")

	rec := a.do(t, http.MethodGet, "/api/v1/users", adminBearer, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/users", studentBearer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_ListFilterByRole(t *testing.T) {
	a := newAPI(t)
	_, adminBearer := a.loginAs(t, "admin@example.com", "admin")
	a.loginAs(t, "s1@example.com", "student")
	a.loginAs(t, "s2@example.com", "student")

	rec := a.do(t, http.MethodGet, "/api/v1/users?role=student", adminBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decode(t, rec)
	assert.EqualValues(t, 2, payload["results"])

	rec = a.do(t, http.MethodGet, "/api/v1/users?role=headmaster", adminBearer, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsers_Create(t *testing.T) {
	a := newAPI(t)
	testutil.NewTestRole(t, a.repo, "teacher")
	_, adminBearer := a.loginAs(t, "admin@example.com", "admin")

	rec := a.do(t, http.MethodPost, "/api/v1/users", adminBearer, map[string]string{
		"name":             "New Teacher",
		"email":            "teacher@example.com",
		"role":             "teacher",
		"password":         "password123",
		"password_confirm": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	user, ok := decode(t, rec)["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "teacher@example.com", user["email"])

	// Duplicate email conflicts.
	rec = a.do(t, http.MethodPost, "/api/v1/users", adminBearer, map[string]string{
		"name":             "Clone",
		"email":            "teacher@example.com",
		"password":         "password123",
		"password_confirm": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUsers_Update(t *testing.T) {
	a := newAPI(t)
	_, adminBearer := a.loginAs(t, "admin@example.com", "admin")
	target, _ := a.loginAs(t, "target@example.com", "student")

	rec := a.do(t, http.MethodPatch, "/api/v1/users/"+target.ID, adminBearer, map[string]string{
		"name":   "Renamed",
		"status": "suspended",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	user, ok := decode(t, rec)["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Renamed", user["name"])
	assert.Equal(t, "suspended", user["status"])

	rec = a.do(t, http.MethodPatch, "/api/v1/users/"+target.ID, adminBearer, map[string]string{
		"status": "frozen",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPatch, "/api/v1/users/missing-id", adminBearer, map[string]string{
		"name": "Nobody",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsers_Delete(t *testing.T) {
	a := newAPI(t)
	_, adminBearer := a.loginAs(t, "admin@example.com", "admin")
	target, _ := a.loginAs(t, "target@example.com", "")

	rec := a.do(t, http.MethodDelete, "/api/v1/users/"+target.ID, adminBearer, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodDelete, "/api/v1/users/"+target.ID, adminBearer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
