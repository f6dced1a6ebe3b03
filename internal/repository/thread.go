// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/classthread/internal/models"
)

// CreateThread inserts a new thread.
func (r *Repository) CreateThread(ctx context.Context, thread *models.Thread) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO threads (id, title, topic, author_id, status, closed_at, created_at)
		VALUES (:id, :title, :topic, :author_id, :status, :closed_at, :created_at)`,
		thread)
	return err
}

// GetThreadByID retrieves a thread by id.
func (r *Repository) GetThreadByID(ctx context.Context, id string) (*models.Thread, error) {
	var thread models.Thread
	err := r.db.GetContext(ctx, &thread, `
		SELECT id, title, topic, author_id, status, closed_at, created_at
		FROM threads WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &thread, nil
}

// SetThreadStatus updates a thread's status and closed-at timestamp, returning
// the updated record.
func (r *Repository) SetThreadStatus(ctx context.Context, id, status string, closedAt *time.Time) (*models.Thread, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE threads SET status = ?, closed_at = ? WHERE id = ?`,
		status, closedAt, id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return r.GetThreadByID(ctx, id)
}
