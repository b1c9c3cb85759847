package auth

import (
	"fmt"
	"slices"
	"strings"
)

// Role is the single authorisation tier of an account.
//
// The set is closed. Switches over Role list every constant without a
// default branch so the exhaustive linter flags them when a role is added.
type Role string

const (
	// RoleSuperAdmin operates the platform: institutes, subscriptions, accounts.
	RoleSuperAdmin Role = "SUPER_ADMIN"

	// RoleInstituteAdmin runs one institute.
	RoleInstituteAdmin Role = "INSTITUTE_ADMIN"

	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
	RoleParent  Role = "PARENT"
)

// AllRoles returns every role in display order.
func AllRoles() []Role {
	return []Role{RoleSuperAdmin, RoleInstituteAdmin, RoleTeacher, RoleStudent, RoleParent}
}

// IsValid reports whether r is one of the defined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleInstituteAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// String returns the wire form of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole converts the wire form of a role. Matching is exact.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// RoleSet is an immutable allow-list of roles attached to a route.
type RoleSet struct {
	roles []Role
}

// Allow builds a RoleSet. Duplicates are ignored. An empty set admits nobody.
func Allow(roles ...Role) RoleSet {
	set := RoleSet{roles: make([]Role, 0, len(roles))}
	for _, r := range roles {
		if !slices.Contains(set.roles, r) {
			set.roles = append(set.roles, r)
		}
	}
	return set
}

// Contains reports whether r is in the set. Matching is exact.
func (s RoleSet) Contains(r Role) bool {
	return slices.Contains(s.roles, r)
}

// Roles returns a copy of the roles in the set.
func (s RoleSet) Roles() []Role {
	return slices.Clone(s.roles)
}

// Len returns the number of roles in the set.
func (s RoleSet) Len() int {
	return len(s.roles)
}

func (s RoleSet) String() string {
	names := make([]string, len(s.roles))
	for i, r := range s.roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
