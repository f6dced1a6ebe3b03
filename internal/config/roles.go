// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// RoleSeed describes one role to ensure at startup.
type RoleSeed struct {
	Name        string   `toml:"name"`
	Permissions []string `toml:"permissions"`
}

type roleSeedFile struct {
	Roles []RoleSeed `toml:"roles"`
}

// DefaultRoleSeeds returns the built-in role set.
func DefaultRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{Name: "admin", Permissions: []string{"users:manage", "threads:manage", "messages:write"}},
		{Name: "teacher", Permissions: []string{"threads:manage", "messages:write"}},
		{Name: "student", Permissions: []string{"messages:write"}},
	}
}

// LoadRoleSeeds reads role seeds from a TOML file, falling back to the
// built-in set when path is empty.
func LoadRoleSeeds(path string) ([]RoleSeed, error) {
	if path == "" {
		return DefaultRoleSeeds(), nil
	}

	var file roleSeedFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load role seeds from %s: %w", path, err)
	}
	if len(file.Roles) == 0 {
		return nil, fmt.Errorf("role seed file %s defines no roles", path)
	}
	return file.Roles, nil
}
