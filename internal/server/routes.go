// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"codeberg.org/oliverandrich/classthread/internal/handlers"
	appmw "codeberg.org/oliverandrich/classthread/internal/middleware"
	"codeberg.org/oliverandrich/classthread/internal/repository"
	"codeberg.org/oliverandrich/classthread/internal/services/auth"
	"codeberg.org/oliverandrich/classthread/internal/services/token"
	"codeberg.org/oliverandrich/classthread/internal/sse"
	"github.com/labstack/echo/v4"
)

func setupRoutes(e *echo.Echo, repo *repository.Repository, tokens *token.Service, authService *auth.Service) {
	h := handlers.New(repo)
	authH := handlers.NewAuth(authService)
	userH := handlers.NewUsers(repo)
	threadH := handlers.NewThreads(repo)
	messageH := handlers.NewMessages(repo, sse.NewHub())

	e.GET("/health", h.Health)

	api := e.Group("/api/v1")

	// Public auth routes
	api.POST("/auth/signup", authH.Signup)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/forgot-password", authH.ForgotPassword)
	api.POST("/auth/reset-password/:token", authH.ResetPassword)

	// Everything below requires a valid session token
	gated := api.Group("", appmw.Authenticate(tokens, repo))

	gated.POST("/auth/change-password", authH.ChangePassword)
	gated.GET("/me", authH.Me)

	// User administration
	users := gated.Group("/users", appmw.RequireRole("admin"))
	users.GET("", userH.List)
	users.POST("", userH.Create)
	users.PATCH("/:id", userH.Update)
	users.DELETE("/:id", userH.Delete)

	// Threads
	gated.POST("/threads", threadH.Create)
	gated.POST("/threads/:id/close", threadH.Close, appmw.RequireRole("teacher", "admin"))
	gated.POST("/threads/:id/open", threadH.Open, appmw.RequireRole("teacher", "admin"))

	// Conversations and messages
	gated.POST("/conversations", messageH.CreateConversation)
	gated.GET("/conversations/:id/messages", messageH.ListMessages)
	gated.POST("/conversations/:id/messages", messageH.SendMessage)
	gated.GET("/conversations/:id/stream", messageH.StreamMessages)
	gated.DELETE("/messages/:id", messageH.DeleteMessage)
}
