// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	authctx "codeberg.org/oliverandrich/classthread/internal/auth"
	"codeberg.org/oliverandrich/classthread/internal/models"
	"codeberg.org/oliverandrich/classthread/internal/repository"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ThreadHandlers contains the thread handlers.
type ThreadHandlers struct {
	repo *repository.Repository
}

// NewThreads creates a new ThreadHandlers instance.
func NewThreads(repo *repository.Repository) *ThreadHandlers {
	return &ThreadHandlers{repo: repo}
}

// CreateThreadRequest is the request body for opening a thread.
type CreateThreadRequest struct {
	Title string `json:"title"`
	Topic string `json:"topic"`
}

// Create opens a new thread authored by the current user.
func (h *ThreadHandlers) Create(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())
	if user == nil {
		return errorJSON(c, http.StatusUnauthorized, "you are not logged in, please log in to get access")
	}

	var req CreateThreadRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if req.Title == "" {
		return errorJSON(c, http.StatusBadRequest, "title is required")
	}

	thread := &models.Thread{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Topic:     req.Topic,
		AuthorID:  user.ID,
		Status:    models.ThreadOpen,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.repo.CreateThread(c.Request().Context(), thread); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"thread": thread})
}

// Close marks a thread as closed.
func (h *ThreadHandlers) Close(c echo.Context) error {
	now := time.Now().UTC()
	thread, err := h.repo.SetThreadStatus(c.Request().Context(),
		c.Param("id"), models.ThreadClosed, &now)
	if err != nil {
		if repository.IsNotFound(err) {
			return errorJSON(c, http.StatusNotFound, "thread not found")
		}
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"thread": thread})
}

// Open reopens a closed thread.
func (h *ThreadHandlers) Open(c echo.Context) error {
	thread, err := h.repo.SetThreadStatus(c.Request().Context(),
		c.Param("id"), models.ThreadOpen, nil)
	if err != nil {
		if repository.IsNotFound(err) {
			return errorJSON(c, http.StatusNotFound, "thread not found")
		}
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"thread": thread})
}
