// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreads_CreateCloseReopen(t *testing.T) {
	a := newAPI(t)
	student, studentBearer := a.loginAs(t, "student@example.com", "student")
	_, teacherBearer := a.loginAs(t, "teacher@example.com", "teacher")

	rec := a.do(t, http.MethodPost, "/api/v1/threads", studentBearer, map[string]string{
		"title": "Field trip questions",
		"topic": "organization",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	thread, ok := decode(t, rec)["thread"].(map[string]any)
	require.True(t, ok)
	threadID, _ := thread["id"].(string)
	require.NotEmpty(t, threadID)
	assert.Equal(t, student.ID, thread["author_id"])
	assert.Equal(t, "open", thread["status"])

	// Students cannot close threads.
	rec = a.do(t, http.MethodPost, "/api/v1/threads/"+threadID+"/close", studentBearer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Teachers can.
	rec = a.do(t, http.MethodPost, "/api/v1/threads/"+threadID+"/close", teacherBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	closed, _ := decode(t, rec)["thread"].(map[string]any)
	assert.Equal(t, "closed", closed["status"])
	assert.NotEmpty(t, closed["closed_at"])

	rec = a.do(t, http.MethodPost, "/api/v1/threads/"+threadID+"/open", teacherBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reopened, _ := decode(t, rec)["thread"].(map[string]any)
	assert.Equal(t, "open", reopened["status"])
}

func TestThreads_CreateRequiresTitle(t *testing.T) {
	a := newAPI(t)
	_, bearer := a.loginAs(t, "student@example.com", "student")

	rec := a.do(t, http.MethodPost, "/api/v1/threads", bearer, map[string]string{
		"topic": "no title",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThreads_CloseMissingThread(t *testing.T) {
	a := newAPI(t)
	_, teacherBearer := a.loginAs(t, "teacher@example.com", "teacher")

	rec := a.do(t, http.MethodPost, "/api/v1/threads/missing-id/close", teacherBearer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
