// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/classthread/internal/repository"
	"codeberg.org/oliverandrich/classthread/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// errorJSON writes the uniform error envelope.
func errorJSON(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]string{"error": message})
}

// serviceError translates auth service errors to the boundary status codes:
// 400 validation, 401 authentication, 404 missing, 500 collaborator failure.
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, auth.ErrInvalidResetToken):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errorJSON(c, http.StatusUnauthorized, "incorrect email or password")
	case errors.Is(err, auth.ErrAccountDisabled):
		return errorJSON(c, http.StatusUnauthorized, "this account is disabled")
	case errors.Is(err, auth.ErrEmailTaken):
		return errorJSON(c, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrDispatchFailed):
		return errorJSON(c, http.StatusInternalServerError,
			"there was an error sending the email, try again later")
	case errors.Is(err, repository.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "resource not found")
	default:
		slog.Error("request_failed", "path", c.Request().URL.Path, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "something went wrong")
	}
}
