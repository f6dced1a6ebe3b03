// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Thread status values.
const (
	ThreadOpen   = "open"
	ThreadClosed = "closed"
)

// Thread is a discussion thread opened by a user.
type Thread struct { //nolint:govet // fieldalignment not critical for models
	ID        string     `db:"id" json:"id"`
	Title     string     `db:"title" json:"title"`
	Topic     string     `db:"topic" json:"topic,omitempty"`
	AuthorID  string     `db:"author_id" json:"author_id"`
	Status    string     `db:"status" json:"status"`
	ClosedAt  *time.Time `db:"closed_at" json:"closed_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
