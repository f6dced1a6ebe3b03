// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"codeberg.org/oliverandrich/classthread/internal/models"
	"codeberg.org/oliverandrich/classthread/internal/repository"
	"codeberg.org/oliverandrich/classthread/internal/services/password"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UserHandlers contains the administrative user handlers.
type UserHandlers struct {
	repo *repository.Repository
}

// NewUsers creates a new UserHandlers instance.
func NewUsers(repo *repository.Repository) *UserHandlers {
	return &UserHandlers{repo: repo}
}

// List returns all users, optionally filtered by role name.
func (h *UserHandlers) List(c echo.Context) error {
	roleID := ""
	if roleName := c.QueryParam("role"); roleName != "" {
		role, err := h.repo.GetRoleByName(c.Request().Context(), roleName)
		if err != nil {
			if repository.IsNotFound(err) {
				return errorJSON(c, http.StatusBadRequest, "invalid role")
			}
			return serviceError(c, err)
		}
		roleID = role.ID
	}

	users, err := h.repo.ListUsers(c.Request().Context(), roleID)
	if err != nil {
		return serviceError(c, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"results": len(users),
		"users":   users,
	})
}

// CreateUserRequest is the request body for administrative user creation.
type CreateUserRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Role            string `json:"role"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Create creates a user without logging it in.
func (h *UserHandlers) Create(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if req.Name == "" {
		return errorJSON(c, http.StatusBadRequest, "name is required")
	}

	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid email format")
	}
	if len(req.Password) < 8 {
		return errorJSON(c, http.StatusBadRequest, "password must be at least 8 characters")
	}
	if req.Password != req.PasswordConfirm {
		return errorJSON(c, http.StatusBadRequest, "passwords do not match")
	}

	var roleID *string
	if req.Role != "" {
		role, err := h.repo.GetRoleByName(c.Request().Context(), req.Role)
		if err != nil {
			if repository.IsNotFound(err) {
				return errorJSON(c, http.StatusBadRequest, "invalid role")
			}
			return serviceError(c, err)
		}
		roleID = &role.ID
	}

	if _, err := h.repo.GetUserByEmail(c.Request().Context(), emailAddr); err == nil {
		return errorJSON(c, http.StatusConflict, "email is already registered")
	} else if !repository.IsNotFound(err) {
		return serviceError(c, err)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        emailAddr,
		Phone:        req.Phone,
		Status:       models.StatusActive,
		RoleID:       roleID,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.repo.CreateUser(c.Request().Context(), user); err != nil {
		return serviceError(c, err)
	}

	created, err := h.repo.GetUserByID(c.Request().Context(), user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"user": created})
}

// UpdateUserRequest is the request body for profile updates. Password changes
// go through the auth endpoints, never through here.
type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Status *string `json:"status"`
	Role   *string `json:"role"`
}

// Update applies a partial profile update to a user.
func (h *UserHandlers) Update(c echo.Context) error {
	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	user, err := h.repo.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if repository.IsNotFound(err) {
			return errorJSON(c, http.StatusNotFound, "user not found")
		}
		return serviceError(c, err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Status != nil {
		switch *req.Status {
		case models.StatusActive, models.StatusInactive, models.StatusSuspended:
			user.Status = *req.Status
		default:
			return errorJSON(c, http.StatusBadRequest, "invalid status")
		}
	}
	if req.Role != nil {
		if *req.Role == "" {
			user.RoleID = nil
		} else {
			role, err := h.repo.GetRoleByName(c.Request().Context(), *req.Role)
			if err != nil {
				if repository.IsNotFound(err) {
					return errorJSON(c, http.StatusBadRequest, "invalid role")
				}
				return serviceError(c, err)
			}
			user.RoleID = &role.ID
		}
	}

	if err := h.repo.UpdateUser(c.Request().Context(), user); err != nil {
		return serviceError(c, err)
	}

	updated, err := h.repo.GetUserByID(c.Request().Context(), user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user": updated})
}

// Delete removes a user.
func (h *UserHandlers) Delete(c echo.Context) error {
	err := h.repo.DeleteUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		if repository.IsNotFound(err) {
			return errorJSON(c, http.StatusNotFound, "user not found")
		}
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
