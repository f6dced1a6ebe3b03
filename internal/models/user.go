// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package models defines the persistent records shared by the repository and
// the service layer.
package models

import (
	"time"
)

// Account status values.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// User is a credential record. The password hash and the reset token pair are
// never serialized outward.
type User struct { //nolint:govet // fieldalignment not critical for models
	ID                   string     `db:"id" json:"id"`
	Name                 string     `db:"name" json:"name"`
	Email                string     `db:"email" json:"email"`
	Phone                string     `db:"phone" json:"phone,omitempty"`
	Status               string     `db:"status" json:"status"`
	RoleID               *string    `db:"role_id" json:"-"`
	PasswordHash         string     `db:"password_hash" json:"-"`
	PasswordChangedAt    *time.Time `db:"password_changed_at" json:"-"`
	PasswordResetToken   *string    `db:"password_reset_token" json:"-"`
	PasswordResetExpires *time.Time `db:"password_reset_expires" json:"-"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`

	// Role is the resolved role, attached by the repository. Nil when the
	// user has no role or the reference is dangling.
	Role *Role `db:"-" json:"role,omitempty"`
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// PasswordChangedAfter reports whether the password was changed after the
// given token issue time. Comparison is at second granularity because token
// issue times are unix timestamps.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}
