// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires configuration, storage and the HTTP boundary together
// and runs the API with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/classthread/internal/config"
	"codeberg.org/oliverandrich/classthread/internal/database"
	"codeberg.org/oliverandrich/classthread/internal/models"
	"codeberg.org/oliverandrich/classthread/internal/repository"
	"codeberg.org/oliverandrich/classthread/internal/services/auth"
	"codeberg.org/oliverandrich/classthread/internal/services/email"
	"codeberg.org/oliverandrich/classthread/internal/services/token"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// Repository
	repo := repository.New(db)

	// Roles
	if seedErr := seedRoles(ctx, repo, cfg.Roles.SeedFile); seedErr != nil {
		return fmt.Errorf("failed to seed roles: %w", seedErr)
	}

	// Services
	tokens, err := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	mailer, err := newMailer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create mailer: %w", err)
	}

	authService := auth.NewService(repo, tokens, mailer, &cfg.Auth, cfg.Server.BaseURL)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	setupMiddleware(e, cfg)

	// Routes
	setupRoutes(e, repo, tokens, authService)

	// Start server
	return startWithGracefulShutdown(e, cfg)
}

// seedRoles loads the role seeds from the configured file, or falls back to
// the built-in defaults, and upserts them.
func seedRoles(ctx context.Context, repo *repository.Repository, seedFile string) error {
	seeds := config.DefaultRoleSeeds()
	if seedFile != "" {
		loaded, err := config.LoadRoleSeeds(seedFile)
		if err != nil {
			return err
		}
		seeds = loaded
	}

	roles := lo.Map(seeds, func(s config.RoleSeed, _ int) models.Role {
		return models.Role{
			ID:          uuid.New().String(),
			Name:        s.Name,
			Permissions: s.Permissions,
		}
	})
	return repo.SeedRoles(ctx, roles)
}

// newMailer returns the SMTP dispatcher, or a log-only dispatcher when no
// SMTP host is configured.
func newMailer(cfg *config.Config) (email.Dispatcher, error) {
	if cfg.SMTP.Host == "" {
		slog.Warn("no SMTP host configured, outgoing mail is logged only")
		return logMailer{}, nil
	}
	return email.NewService(&cfg.SMTP)
}

// logMailer writes outgoing mail to the log instead of delivering it.
type logMailer struct{}

func (logMailer) Send(_ context.Context, to, subject, body string) error {
	slog.Info("outgoing mail", "to", to, "subject", subject, "body", body)
	return nil
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
