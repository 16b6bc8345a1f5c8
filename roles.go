package tracker

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Role is the user's role
type Role string

const (
	// RoleAdmin overrides ownership and assignment checks
	RoleAdmin Role = "ADMIN"
	// RoleManager can create and delete projects and tasks
	RoleManager Role = "MANAGER"
	// RoleUser works on tasks assigned to them
	RoleUser Role = "USER"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	default:
		return false
	}
}

// String returns the authority name for the role
func (r Role) String() string {
	return string(r)
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleManager,
		RoleUser,
	}
}

// ParseRole parses an authority string into a Role. Matching ignores case and
// surrounding space. Unknown authorities are an error, they never fall back
// to RoleUser.
func ParseRole(authority string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(authority)))
	if !role.IsValid() {
		return "", goerrors.New("unknown role: "+authority, goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("INVALID_ROLE").
			WithMetadata(map[string]any{"role": authority})
	}
	return role, nil
}
