// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/classthread/internal/models"
	"github.com/google/uuid"
)

// CreateRole inserts a new role.
func (r *Repository) CreateRole(ctx context.Context, role *models.Role) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO roles (id, name, permissions)
		VALUES (:id, :name, :permissions)`, role)
	return err
}

// GetRoleByID retrieves a role by id.
func (r *Repository) GetRoleByID(ctx context.Context, id string) (*models.Role, error) {
	var role models.Role
	err := r.db.GetContext(ctx, &role,
		`SELECT id, name, permissions FROM roles WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &role, nil
}

// GetRoleByName retrieves a role by its unique name.
func (r *Repository) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.GetContext(ctx, &role,
		`SELECT id, name, permissions FROM roles WHERE name = ?`, name)
	if err != nil {
		return nil, wrapError(err)
	}
	return &role, nil
}

// SeedRoles inserts the given roles if they do not exist yet. Existing roles
// are left untouched.
func (r *Repository) SeedRoles(ctx context.Context, roles []models.Role) error {
	for _, role := range roles {
		if role.ID == "" {
			role.ID = uuid.New().String()
		}
		_, err := r.db.NamedExecContext(ctx, `
			INSERT INTO roles (id, name, permissions)
			VALUES (:id, :name, :permissions)
			ON CONFLICT (name) DO NOTHING`, role)
		if err != nil {
			return err
		}
	}
	return nil
}

// rolesByID loads all roles keyed by id.
func (r *Repository) rolesByID(ctx context.Context) (map[string]*models.Role, error) {
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, `SELECT id, name, permissions FROM roles`); err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Role, len(roles))
	for i := range roles {
		byID[roles[i].ID] = &roles[i]
	}
	return byID, nil
}
