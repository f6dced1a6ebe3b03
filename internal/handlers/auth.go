// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	authctx "codeberg.org/oliverandrich/classthread/internal/auth"
	"codeberg.org/oliverandrich/classthread/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains handlers for authentication.
type AuthHandlers struct {
	svc *auth.Service
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(svc *auth.Service) *AuthHandlers {
	return &AuthHandlers{svc: svc}
}

// SignupRequest is the request body for account creation.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Role            string `json:"role"`
}

// Signup creates an account and logs it in.
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if req.Name == "" {
		return errorJSON(c, http.StatusBadRequest, "name is required")
	}

	session, err := h.svc.Signup(c.Request().Context(), auth.SignupParams{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		RoleName:        req.Role,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an account.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if req.Email == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "please provide email and password")
	}

	session, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// ForgotPasswordRequest is the request body for starting a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword starts the reset flow. The acknowledgment is the same
// whether or not the email is known.
func (h *AuthHandlers) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if req.Email == "" {
		return errorJSON(c, http.StatusBadRequest, "email is required")
	}

	if err := h.svc.RequestReset(c.Request().Context(), req.Email); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "if that account exists, a reset token has been sent",
	})
}

// ResetPasswordRequest is the request body for completing a password reset.
type ResetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// ResetPassword consumes a reset token and logs the user in.
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	session, err := h.svc.ResetPassword(c.Request().Context(),
		c.Param("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// ChangePasswordRequest is the request body for changing a known password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// ChangePassword updates the password of the logged-in user and returns a
// fresh session; tokens issued before the change are stale from now on.
func (h *AuthHandlers) ChangePassword(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())
	if user == nil {
		return errorJSON(c, http.StatusUnauthorized, "you are not logged in, please log in to get access")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	session, err := h.svc.ChangePassword(c.Request().Context(),
		user.ID, req.CurrentPassword, req.Password, req.PasswordConfirm)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// Me returns the identity resolved by the gate.
func (h *AuthHandlers) Me(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())
	if user == nil {
		return errorJSON(c, http.StatusUnauthorized, "you are not logged in, please log in to get access")
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}
