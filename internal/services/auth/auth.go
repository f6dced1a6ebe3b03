// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements signup, login and the password reset lifecycle.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"codeberg.org/oliverandrich/classthread/internal/config"
	"codeberg.org/oliverandrich/classthread/internal/models"
	"codeberg.org/oliverandrich/classthread/internal/repository"
	"codeberg.org/oliverandrich/classthread/internal/services/email"
	"codeberg.org/oliverandrich/classthread/internal/services/password"
	"codeberg.org/oliverandrich/classthread/internal/services/resettoken"
	"codeberg.org/oliverandrich/classthread/internal/services/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidRole        = errors.New("invalid role")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidResetToken  = errors.New("reset token is invalid or has expired")
	ErrDispatchFailed     = errors.New("failed to send email")
)

const minPasswordLength = 8

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Session is an issued token together with the identity it represents.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Service orchestrates credential checks, token issuance and the forgot/reset
// flow against the store and the mail dispatcher.
type Service struct {
	repo    *repository.Repository
	tokens  *token.Service
	mailer  email.Dispatcher
	cfg     *config.AuthConfig
	baseURL string
}

// NewService creates a new auth service.
func NewService(repo *repository.Repository, tokens *token.Service, mailer email.Dispatcher, cfg *config.AuthConfig, baseURL string) *Service {
	return &Service{
		repo:    repo,
		tokens:  tokens,
		mailer:  mailer,
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// SignupParams holds the parameters for account creation.
type SignupParams struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	PasswordConfirm string
	RoleName        string
}

// Signup creates a new account and logs it in.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*Session, error) {
	emailAddr := normalizeEmail(params.Email)
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return nil, ErrInvalidEmail
	}
	if err := checkNewPassword(params.Password, params.PasswordConfirm); err != nil {
		return nil, err
	}

	var roleID *string
	if params.RoleName != "" {
		role, err := s.repo.GetRoleByName(ctx, params.RoleName)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, ErrInvalidRole
			}
			return nil, fmt.Errorf("failed to resolve role: %w", err)
		}
		roleID = &role.ID
	}

	_, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := password.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         params.Name,
		Email:        emailAddr,
		Phone:        params.Phone,
		Status:       models.StatusActive,
		RoleID:       roleID,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("signup_success", "user_id", user.ID, "email", user.Email)

	user, err = s.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	return s.issueSession(user, now)
}

// Login authenticates a user by email and password.
func (s *Service) Login(ctx context.Context, emailAddr, plaintext string) (*Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if repository.IsNotFound(err) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plaintext))
			slog.Warn("login_failed", "email", emailAddr, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !password.Verify(plaintext, user.PasswordHash) {
		slog.Warn("login_failed", "email", emailAddr, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		slog.Warn("login_failed", "email", emailAddr, "reason", "account_disabled")
		return nil, ErrAccountDisabled
	}

	slog.Info("login_success", "user_id", user.ID, "email", user.Email)
	return s.issueSession(user, time.Now().UTC())
}

// ChangePassword changes the password of a logged-in user who knows their
// current one. All previously issued tokens go stale; a fresh session is
// returned.
func (s *Service) ChangePassword(ctx context.Context, userID, current, newPassword, newPasswordConfirm string) (*Session, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !password.Verify(current, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if err := checkNewPassword(newPassword, newPasswordConfirm); err != nil {
		return nil, err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdatePassword(ctx, user.ID, hash, now); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password_changed", "user_id", user.ID)

	user.PasswordChangedAt = &now
	return s.issueSession(user, now)
}

// RequestReset starts the forgot-password flow. The response is uniform
// whether or not the email is known, so the endpoint cannot be used to probe
// for accounts. On dispatch failure the stored token pair is rolled back; a
// reset token the owner never received must not stay live.
func (s *Service) RequestReset(ctx context.Context, emailAddr string) error {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if repository.IsNotFound(err) {
			slog.Info("reset_requested", "known_email", false)
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	plaintext, fingerprint, err := resettoken.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expires := time.Now().UTC().Add(s.cfg.ResetTokenLifetime)
	if err := s.repo.SetResetToken(ctx, user.ID, fingerprint, expires); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/api/v1/auth/reset-password/%s", s.baseURL, plaintext)
	subject := fmt.Sprintf("Your password reset token (valid for %d minutes)",
		int(s.cfg.ResetTokenLifetime.Minutes()))
	body := fmt.Sprintf("Forgot your password? Submit your new password together with this link: %s\n"+
		"If you didn't forget your password, please ignore this email.", resetURL)

	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		// The rollback must run even when the request context has already
		// expired; otherwise an undeliverable token stays live.
		if cerr := s.repo.ClearResetToken(context.WithoutCancel(ctx), user.ID); cerr != nil {
			slog.Error("reset_rollback_failed", "user_id", user.ID, "error", cerr)
		}
		slog.Error("reset_dispatch_failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	slog.Info("reset_requested", "known_email", true, "user_id", user.ID)
	return nil
}

// ResetPassword completes the forgot-password flow. The token is consumed
// atomically, so it succeeds exactly once; afterwards the user is logged in
// with a fresh session.
func (s *Service) ResetPassword(ctx context.Context, plaintextToken, newPassword, newPasswordConfirm string) (*Session, error) {
	if err := checkNewPassword(newPassword, newPasswordConfirm); err != nil {
		return nil, err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	fingerprint := resettoken.FingerprintOf(plaintextToken)
	user, err := s.repo.ConsumeResetToken(ctx, fingerprint, hash, now)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	slog.Info("password_reset", "user_id", user.ID)
	return s.issueSession(user, now)
}

// issueSession signs a fresh token for the user.
func (s *Service) issueSession(user *models.User, issuedAt time.Time) (*Session, error) {
	signed, err := s.tokens.Issue(user.ID, issuedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{Token: signed, User: user}, nil
}

func normalizeEmail(emailAddr string) string {
	return strings.ToLower(strings.TrimSpace(emailAddr))
}

func checkNewPassword(plaintext, confirm string) error {
	if len(plaintext) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if plaintext != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
