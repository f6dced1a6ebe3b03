// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// ConversationKind discriminates the closed set of conversation variants.
type ConversationKind string

// Known conversation kinds.
const (
	ConversationPrivate ConversationKind = "private"
	ConversationGroup   ConversationKind = "group"
)

// Conversation is a message container of a specific kind.
type Conversation struct {
	ID        string           `db:"id" json:"id"`
	Kind      ConversationKind `db:"kind" json:"kind"`
	Title     string           `db:"title" json:"title,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`

	// ParticipantIDs is populated by the repository, not a column.
	ParticipantIDs []string `db:"-" json:"participant_ids,omitempty"`
}

// Message is a single message inside a conversation.
type Message struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	SenderID       string    `db:"sender_id" json:"sender_id"`
	Body           string    `db:"body" json:"body"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
