// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/classthread/internal/models"
)

// CreateConversation inserts a conversation and its participant set.
func (r *Repository) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO conversations (id, kind, title, created_at)
		VALUES (:id, :kind, :title, :created_at)`, conv)
	if err != nil {
		return err
	}

	for _, userID := range conv.ParticipantIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO conversation_participants (conversation_id, user_id)
			VALUES (?, ?)`, conv.ID, userID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetConversation retrieves a conversation by id and kind. A conversation
// addressed with the wrong kind is reported as not found.
func (r *Repository) GetConversation(ctx context.Context, id string, kind models.ConversationKind) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `
		SELECT id, kind, title, created_at
		FROM conversations WHERE id = ? AND kind = ?`, id, kind)
	if err != nil {
		return nil, wrapError(err)
	}

	err = r.db.SelectContext(ctx, &conv.ParticipantIDs, `
		SELECT user_id FROM conversation_participants
		WHERE conversation_id = ? ORDER BY user_id`, id)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// IsParticipant reports whether the user belongs to the conversation.
func (r *Repository) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `
		SELECT count(*) FROM conversation_participants
		WHERE conversation_id = ? AND user_id = ?`, conversationID, userID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateMessage inserts a message into a conversation.
func (r *Repository) CreateMessage(ctx context.Context, msg *models.Message) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, body, created_at)
		VALUES (:id, :conversation_id, :sender_id, :body, :created_at)`, msg)
	return err
}

// ListMessages returns the messages of a conversation in send order.
func (r *Repository) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.SelectContext(ctx, &messages, `
		SELECT id, conversation_id, sender_id, body, created_at
		FROM messages WHERE conversation_id = ? ORDER BY created_at, id`,
		conversationID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteMessage removes a message by id.
func (r *Repository) DeleteMessage(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
