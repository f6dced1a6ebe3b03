// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/classthread/internal/models"
	"codeberg.org/oliverandrich/classthread/internal/repository"
	"codeberg.org/oliverandrich/classthread/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThread_CreateCloseReopen(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	author := testutil.NewTestUser(t, repo, "author@example.com", "password123", nil)
	thread := &models.Thread{
		ID:        uuid.New().String(),
		Title:     "Homework questions",
		Topic:     "math",
		AuthorID:  author.ID,
		Status:    models.ThreadOpen,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateThread(ctx, thread))

	now := time.Now().UTC()
	closed, err := repo.SetThreadStatus(ctx, thread.ID, models.ThreadClosed, &now)
	require.NoError(t, err)
	assert.Equal(t, models.ThreadClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	reopened, err := repo.SetThreadStatus(ctx, thread.ID, models.ThreadOpen, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ThreadOpen, reopened.Status)
	assert.Nil(t, reopened.ClosedAt)
}

func TestSetThreadStatus_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.SetThreadStatus(context.Background(), "no-such-thread", models.ThreadClosed, nil)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
