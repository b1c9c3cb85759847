package routes

import (
	"strings"
	"testing"

	"github.com/vidyank/vidyank-core/internal/auth"
)

func TestPaths(t *testing.T) {
	tests := []struct {
		role      auth.Role
		login     string
		dashboard string
	}{
		{auth.RoleSuperAdmin, "/superadmin", "/superadmin/dashboard"},
		{auth.RoleInstituteAdmin, "/institute", "/institute/dashboard"},
		{auth.RoleTeacher, "/teacher", "/teacher/dashboard"},
		{auth.RoleStudent, "/student", "/student/dashboard"},
		{auth.RoleParent, "/parent", "/parent/dashboard"},
		{auth.Role("ADMIN"), "/", "/"},
		{auth.Role(""), "/", "/"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := LoginPath(tt.role); got != tt.login {
				t.Errorf("LoginPath() = %q, want %q", got, tt.login)
			}
			if got := DashboardPath(tt.role); got != tt.dashboard {
				t.Errorf("DashboardPath() = %q, want %q", got, tt.dashboard)
			}
		})
	}
}

func TestTable_CoversEveryRole(t *testing.T) {
	table := Table()
	if len(table) != len(auth.AllRoles()) {
		t.Fatalf("Table() has %d rows, want %d", len(table), len(auth.AllRoles()))
	}
	for i, role := range auth.AllRoles() {
		if table[i].Role != role {
			t.Errorf("row %d role = %q, want %q", i, table[i].Role, role)
		}
		if !strings.HasPrefix(table[i].Dashboard, table[i].Prefix+"/") {
			t.Errorf("%s dashboard %q is outside prefix %q", role, table[i].Dashboard, table[i].Prefix)
		}
	}
}

func TestRoleForPath(t *testing.T) {
	tests := []struct {
		path   string
		want   auth.Role
		wantOK bool
	}{
		{"/teacher", auth.RoleTeacher, true},
		{"/teacher/dashboard", auth.RoleTeacher, true},
		{"/superadmin/institutes", auth.RoleSuperAdmin, true},
		{"/institute/exams", auth.RoleInstituteAdmin, true},
		{"/parent/results", auth.RoleParent, true},
		{"/student", auth.RoleStudent, true},
		{"/", "", false},
		{"/teachers", "", false},
		{"/unknown/page", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := RoleForPath(tt.path)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("RoleForPath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMenu(t *testing.T) {
	for _, role := range auth.AllRoles() {
		menu := Menu(role)
		if len(menu) == 0 {
			t.Errorf("%s has an empty menu", role)
			continue
		}
		if menu[0].Path != DashboardPath(role) {
			t.Errorf("%s first item = %q, want dashboard", role, menu[0].Path)
		}
		for _, item := range menu {
			if got, ok := RoleForPath(item.Path); !ok || got != role {
				t.Errorf("%s menu item %q belongs to %q", role, item.Path, got)
			}
		}
	}

	if got := Menu(auth.Role("ADMIN")); got == nil || len(got) != 0 {
		t.Errorf("Menu(unknown) = %v, want empty slice", got)
	}
}

func TestNavigationFor(t *testing.T) {
	nav := NavigationFor(auth.RoleStudent)
	if nav.Dashboard != "/student/dashboard" || nav.Login != "/student" {
		t.Errorf("NavigationFor() = %+v", nav)
	}
	if len(nav.Menu) != 6 {
		t.Errorf("menu has %d items, want 6", len(nav.Menu))
	}
}
