// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"codeberg.org/oliverandrich/classthread/internal/models"
)

const userColumns = `id, name, email, phone, status, role_id, password_hash,
	password_changed_at, password_reset_token, password_reset_expires,
	created_at, updated_at`

// CreateUser inserts a new user record.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, status, role_id, password_hash,
			password_changed_at, password_reset_token, password_reset_expires,
			created_at, updated_at)
		VALUES (:id, :name, :email, :phone, :status, :role_id, :password_hash,
			:password_changed_at, :password_reset_token, :password_reset_expires,
			:created_at, :updated_at)`, user)
	return err
}

// GetUserByID retrieves a user by id with the role attached.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	r.attachRole(ctx, &user)
	return &user, nil
}

// GetUserByEmail retrieves a user by email with the role attached.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	r.attachRole(ctx, &user)
	return &user, nil
}

// ListUsers returns all users, optionally filtered by role id, with roles
// attached.
func (r *Repository) ListUsers(ctx context.Context, roleID string) ([]models.User, error) {
	var users []models.User
	var err error
	if roleID == "" {
		err = r.db.SelectContext(ctx, &users,
			`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	} else {
		err = r.db.SelectContext(ctx, &users,
			`SELECT `+userColumns+` FROM users WHERE role_id = ? ORDER BY created_at`, roleID)
	}
	if err != nil {
		return nil, err
	}

	roles, err := r.rolesByID(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].RoleID != nil {
			users[i].Role = roles[*users[i].RoleID]
		}
	}
	return users, nil
}

// UpdateUser updates the mutable profile fields of a user.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE users
		SET name = :name, email = :email, phone = :phone, status = :status,
			role_id = :role_id, updated_at = :updated_at
		WHERE id = :id`, user)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteUser removes a user by id.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdatePassword sets a new password hash, records the change time and clears
// any outstanding reset token.
func (r *Repository) UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, password_changed_at = ?,
			password_reset_token = NULL, password_reset_expires = NULL,
			updated_at = ?
		WHERE id = ?`, hash, changedAt, changedAt, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetResetToken stores the reset fingerprint and expiry on a user. A previous
// outstanding token is overwritten, invalidating it.
func (r *Repository) SetResetToken(ctx context.Context, id, fingerprint string, expires time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_reset_token = ?, password_reset_expires = ?, updated_at = ?
		WHERE id = ?`, fingerprint, expires, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ClearResetToken removes the reset fingerprint and expiry from a user.
func (r *Repository) ClearResetToken(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_reset_token = NULL, password_reset_expires = NULL, updated_at = ?
		WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetUserByResetFingerprint retrieves the user holding an unexpired reset
// token with the given fingerprint.
func (r *Repository) GetUserByResetFingerprint(ctx context.Context, fingerprint string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT `+userColumns+` FROM users
		WHERE password_reset_token = ? AND password_reset_expires > ?`,
		fingerprint, now)
	if err != nil {
		return nil, wrapError(err)
	}
	r.attachRole(ctx, &user)
	return &user, nil
}

// ConsumeResetToken finds the user holding an unexpired reset token with the
// given fingerprint and, in the same transaction, installs the new password
// hash, records the change time and clears the token pair. The find-and-clear
// is atomic so two concurrent reset attempts cannot both succeed against the
// same token. Returns ErrNotFound when no matching token exists.
func (r *Repository) ConsumeResetToken(ctx context.Context, fingerprint, newHash string, now time.Time) (*models.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var user models.User
	err = tx.GetContext(ctx, &user, `
		SELECT `+userColumns+` FROM users
		WHERE password_reset_token = ? AND password_reset_expires > ?`,
		fingerprint, now)
	if err != nil {
		return nil, wrapError(err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, password_changed_at = ?,
			password_reset_token = NULL, password_reset_expires = NULL,
			updated_at = ?
		WHERE id = ?`, newHash, now, now, user.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	user.PasswordHash = newHash
	user.PasswordChangedAt = &now
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	r.attachRole(ctx, &user)
	return &user, nil
}

// attachRole resolves the user's role reference. A dangling or missing
// reference leaves Role nil; the caller treats such users as unauthorized for
// role-gated operations.
func (r *Repository) attachRole(ctx context.Context, user *models.User) {
	if user.RoleID == nil {
		return
	}
	role, err := r.GetRoleByID(ctx, *user.RoleID)
	if err != nil {
		return
	}
	user.Role = role
}

// requireRow converts a zero-rows-affected result into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err is the repository's not-found signal.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
