// Package routes is the role route table: the login and dashboard location of
// each role and the navigation menu shown to it.
//
// The table is presentation data for clients. Access control lives in the
// server-side gate; nothing here grants or denies anything.
package routes

import (
	"strings"

	"github.com/vidyank/vidyank-core/internal/auth"
)

// Fallback is returned for any role outside the table.
const Fallback = "/"

// Entry is the route table row for one role.
type Entry struct {
	Role      auth.Role `json:"role"`
	Login     string    `json:"loginPath"`
	Dashboard string    `json:"dashboardPath"`
	Prefix    string    `json:"prefix"`
}

// lookup returns the row for role. Switch is exhaustive over auth.Role.
func lookup(role auth.Role) (Entry, bool) {
	switch role {
	case auth.RoleSuperAdmin:
		return Entry{Role: role, Login: "/superadmin", Dashboard: "/superadmin/dashboard", Prefix: "/superadmin"}, true
	case auth.RoleInstituteAdmin:
		return Entry{Role: role, Login: "/institute", Dashboard: "/institute/dashboard", Prefix: "/institute"}, true
	case auth.RoleTeacher:
		return Entry{Role: role, Login: "/teacher", Dashboard: "/teacher/dashboard", Prefix: "/teacher"}, true
	case auth.RoleStudent:
		return Entry{Role: role, Login: "/student", Dashboard: "/student/dashboard", Prefix: "/student"}, true
	case auth.RoleParent:
		return Entry{Role: role, Login: "/parent", Dashboard: "/parent/dashboard", Prefix: "/parent"}, true
	}
	return Entry{}, false
}

// LoginPath returns the login page of role, or Fallback.
func LoginPath(role auth.Role) string {
	if e, ok := lookup(role); ok {
		return e.Login
	}
	return Fallback
}

// DashboardPath returns the landing page of role, or Fallback.
func DashboardPath(role auth.Role) string {
	if e, ok := lookup(role); ok {
		return e.Dashboard
	}
	return Fallback
}

// Table returns every row in role display order.
func Table() []Entry {
	roles := auth.AllRoles()
	out := make([]Entry, 0, len(roles))
	for _, r := range roles {
		e, _ := lookup(r)
		out = append(out, e)
	}
	return out
}

// RoleForPath returns the role whose area contains path. Paths outside every
// area (including "/") report false.
func RoleForPath(path string) (auth.Role, bool) {
	for _, e := range Table() {
		if path == e.Prefix || strings.HasPrefix(path, e.Prefix+"/") {
			return e.Role, true
		}
	}
	return "", false
}
