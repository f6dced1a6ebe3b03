// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/classthread/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_CreatesSession(t *testing.T) {
	a := newAPI(t)
	testutil.NewTestRole(t, a.repo, "student")

	rec := a.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name":             "Alice",
		"email":            "alice@example.com",
		"password":         "password123",
		"password_confirm": "password123",
		"role":             "student",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	payload := decode(t, rec)
	assert.NotEmpty(t, payload["token"])

	user, ok := payload["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Nil(t, user["password_hash"], "hash must never be serialized")
}

func TestSignup_MissingName(t *testing.T) {
	a := newAPI(t)

	rec := a.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":            "alice@example.com",
		"password":         "password123",
		"password_confirm": "password123",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	a := newAPI(t)
	a.loginAs(t, "taken@example.com", "")

	rec := a.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name":             "Impostor",
		"email":            "taken@example.com",
		"password":         "password123",
		"password_confirm": "password123",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin_StatusCodes(t *testing.T) {
	a := newAPI(t)
	a.loginAs(t, "bob@example.com", "")

	rec := a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "bob@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "bob@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "incorrect email or password")

	rec = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "bob@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe(t *testing.T) {
	a := newAPI(t)
	user, bearer := a.loginAs(t, "carol@example.com", "student")

	rec := a.do(t, http.MethodGet, "/api/v1/me", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), user.ID)

	rec = a.do(t, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgotPassword_UniformAcknowledgment(t *testing.T) {
	a := newAPI(t)
	a.loginAs(t, "dave@example.com", "")

	known := a.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "dave@example.com",
	})
	unknown := a.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "nobody@example.com",
	})

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.Len(t, a.mailer.sent, 1)
}

func TestResetPassword_EndToEnd(t *testing.T) {
	a := newAPI(t)
	a.loginAs(t, "erin@example.com", "")

	rec := a.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "erin@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, a.mailer.sent, 1)

	marker := "/api/v1/auth/reset-password/"
	body := a.mailer.sent[0]
	idx := strings.Index(body, marker)
	require.GreaterOrEqual(t, idx, 0)
	tokenPart := body[idx+len(marker):]
	if end := strings.IndexAny(tokenPart, " \n"); end >= 0 {
		tokenPart = tokenPart[:end]
	}

	rec = a.do(t, http.MethodPost, "/api/v1/auth/reset-password/"+tokenPart, "", map[string]string{
		"password":         "newpassword1",
		"password_confirm": "newpassword1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["token"])

	// The consumed token no longer works.
	rec = a.do(t, http.MethodPost, "/api/v1/auth/reset-password/"+tokenPart, "", map[string]string{
		"password":         "otherpassword1",
		"password_confirm": "otherpassword1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The new password logs in, the old one does not.
	rec = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "erin@example.com", "password": "newpassword1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "erin@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	a := newAPI(t)

	rec := a.do(t, http.MethodPost, "/api/v1/auth/reset-password/garbage", "", map[string]string{
		"password":         "newpassword1",
		"password_confirm": "newpassword1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePassword_InvalidatesOldTokens(t *testing.T) {
	a := newAPI(t)
	_, bearer := a.loginAs(t, "frank@example.com", "")

	rec := a.do(t, http.MethodPost, "/api/v1/auth/change-password", bearer, map[string]string{
		"current_password": "password123",
		"password":         "newpassword1",
		"password_confirm": "newpassword1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	fresh, ok := decode(t, rec)["token"].(string)
	require.True(t, ok)

	// The pre-change token is stale now; the fresh one works.
	rec = a.do(t, http.MethodGet, "/api/v1/me", bearer, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/me", fresh, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	a := newAPI(t)
	_, bearer := a.loginAs(t, "grace@example.com", "")

	rec := a.do(t, http.MethodPost, "/api/v1/auth/change-password", bearer, map[string]string{
		"current_password": "not-my-password",
		"password":         "newpassword1",
		"password_confirm": "newpassword1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
