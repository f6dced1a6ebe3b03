// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	authctx "codeberg.org/oliverandrich/classthread/internal/auth"
	"codeberg.org/oliverandrich/classthread/internal/models"
	"codeberg.org/oliverandrich/classthread/internal/repository"
	"codeberg.org/oliverandrich/classthread/internal/sse"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// conversationPolicy is the per-kind behavior bound to a conversation type
// tag. The set of tags is closed; anything else is a validation error.
type conversationPolicy struct {
	validateParticipants func(ids []string) error
}

var conversationPolicies = map[models.ConversationKind]conversationPolicy{
	models.ConversationPrivate: {
		validateParticipants: func(ids []string) error {
			if len(ids) != 2 {
				return fmt.Errorf("a private conversation has exactly 2 participants")
			}
			return nil
		},
	},
	models.ConversationGroup: {
		validateParticipants: func(ids []string) error {
			if len(ids) < 2 {
				return fmt.Errorf("a group conversation needs at least 2 participants")
			}
			return nil
		},
	},
}

// resolveKind maps the request's type tag to a known conversation kind,
// once per request.
func resolveKind(raw string) (models.ConversationKind, conversationPolicy, bool) {
	kind := models.ConversationKind(raw)
	policy, ok := conversationPolicies[kind]
	return kind, policy, ok
}

// MessageHandlers contains the conversation and message handlers.
type MessageHandlers struct {
	repo *repository.Repository
	hub  *sse.Hub
}

// NewMessages creates a new MessageHandlers instance.
func NewMessages(repo *repository.Repository, hub *sse.Hub) *MessageHandlers {
	return &MessageHandlers{repo: repo, hub: hub}
}

// CreateConversationRequest is the request body for opening a conversation.
type CreateConversationRequest struct {
	Kind           string   `json:"kind"`
	Title          string   `json:"title"`
	ParticipantIDs []string `json:"participant_ids"`
}

// CreateConversation opens a conversation of a known kind. The creator is
// always a participant.
func (h *MessageHandlers) CreateConversation(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())
	if user == nil {
		return errorJSON(c, http.StatusUnauthorized, "you are not logged in, please log in to get access")
	}

	var req CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	kind, policy, ok := resolveKind(req.Kind)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "invalid conversation type")
	}

	participants := lo.Uniq(append(req.ParticipantIDs, user.ID))
	if err := policy.validateParticipants(participants); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	conv := &models.Conversation{
		ID:             uuid.New().String(),
		Kind:           kind,
		Title:          req.Title,
		CreatedAt:      time.Now().UTC(),
		ParticipantIDs: participants,
	}
	if err := h.repo.CreateConversation(c.Request().Context(), conv); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"conversation": conv})
}

// SendMessageRequest is the request body for sending a message.
type SendMessageRequest struct {
	Body string `json:"body"`
}

// SendMessage appends a message to a conversation. The conversation is
// addressed by id plus its type tag; a wrong tag does not resolve.
func (h *MessageHandlers) SendMessage(c echo.Context) error {
	user, conv, err := h.resolveConversation(c)
	if conv == nil {
		return err
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if req.Body == "" {
		return errorJSON(c, http.StatusBadRequest, "message body is required")
	}

	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		SenderID:       user.ID,
		Body:           req.Body,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.repo.CreateMessage(c.Request().Context(), msg); err != nil {
		return serviceError(c, err)
	}

	if payload, err := json.Marshal(msg); err == nil {
		h.hub.Publish(conv.ID, sse.FormatEvent("message", string(payload)))
	}

	return c.JSON(http.StatusCreated, map[string]any{"message": msg})
}

// StreamMessages holds the connection open and pushes new messages of the
// conversation as server-sent events. A heartbeat comment keeps intermediaries
// from closing the idle connection.
func (h *MessageHandlers) StreamMessages(c echo.Context) error {
	user, conv, err := h.resolveConversation(c)
	if conv == nil {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	events := h.hub.Subscribe(conv.ID, user.ID)
	defer h.hub.Unsubscribe(conv.ID, events)

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case event := <-events:
			if _, err := res.Write([]byte(event)); err != nil {
				return nil
			}
			res.Flush()
		case <-heartbeat.C:
			if _, err := res.Write([]byte(sse.Heartbeat)); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

// ListMessages returns the messages of a conversation in send order.
func (h *MessageHandlers) ListMessages(c echo.Context) error {
	_, conv, err := h.resolveConversation(c)
	if conv == nil {
		return err
	}

	messages, err := h.repo.ListMessages(c.Request().Context(), conv.ID)
	if err != nil {
		return serviceError(c, err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": messages})
}

// DeleteMessage removes a message.
func (h *MessageHandlers) DeleteMessage(c echo.Context) error {
	err := h.repo.DeleteMessage(c.Request().Context(), c.Param("id"))
	if err != nil {
		if repository.IsNotFound(err) {
			return errorJSON(c, http.StatusNotFound, "message not found")
		}
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// resolveConversation resolves the type tag and the conversation once per
// request and checks that the current user participates in it. On failure the
// error response has already been written; conv is nil and the returned error
// is what the handler should return.
func (h *MessageHandlers) resolveConversation(c echo.Context) (*models.User, *models.Conversation, error) {
	user := authctx.GetUser(c.Request().Context())
	if user == nil {
		return nil, nil, errorJSON(c, http.StatusUnauthorized, "you are not logged in, please log in to get access")
	}

	kind, _, ok := resolveKind(c.QueryParam("type"))
	if !ok {
		return nil, nil, errorJSON(c, http.StatusBadRequest, "invalid conversation type")
	}

	conv, err := h.repo.GetConversation(c.Request().Context(), c.Param("id"), kind)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, errorJSON(c, http.StatusNotFound, "conversation not found")
		}
		return nil, nil, serviceError(c, err)
	}

	if !lo.Contains(conv.ParticipantIDs, user.ID) {
		return nil, nil, errorJSON(c, http.StatusForbidden, "you do not have permission to perform this action")
	}

	return user, conv, nil
}
