package auth

import (
	"errors"
	"fmt"
	"testing"
)

func TestAuthorize_Matrix(t *testing.T) {
	sets := []RoleSet{
		Allow(RoleSuperAdmin),
		Allow(RoleInstituteAdmin),
		Allow(RoleSuperAdmin, RoleInstituteAdmin),
		Allow(RoleTeacher, RoleStudent),
		Allow(RoleParent),
		Allow(RoleSuperAdmin, RoleInstituteAdmin, RoleTeacher, RoleStudent, RoleParent),
		Allow(),
	}

	for _, set := range sets {
		for _, role := range AllRoles() {
			t.Run(fmt.Sprintf("%s in [%s]", role, set), func(t *testing.T) {
				err := Authorize(role, set)
				if set.Contains(role) {
					if err != nil {
						t.Fatalf("Authorize() error = %v, want nil", err)
					}
					return
				}
				if !errors.Is(err, ErrRoleNotAuthorized) {
					t.Fatalf("Authorize() error = %v, want ErrRoleNotAuthorized", err)
				}
			})
		}
	}
}

func TestAuthorize_NoHierarchy(t *testing.T) {
	// A super admin is not implicitly allowed on lower-tier routes.
	for _, role := range []Role{RoleInstituteAdmin, RoleTeacher, RoleStudent, RoleParent} {
		if err := Authorize(RoleSuperAdmin, Allow(role)); err == nil {
			t.Errorf("SUPER_ADMIN granted on route for %s only", role)
		}
	}
}

func TestAuthorize_UnknownRole(t *testing.T) {
	err := Authorize(Role("ADMIN"), Allow(Role("ADMIN")))
	if !errors.Is(err, ErrRoleNotAuthorized) {
		t.Fatalf("Authorize() error = %v, want ErrRoleNotAuthorized", err)
	}
}

func TestRoleNotAuthorizedError_Message(t *testing.T) {
	err := Authorize(RoleStudent, Allow(RoleSuperAdmin))

	var denied *RoleNotAuthorizedError
	if !errors.As(err, &denied) {
		t.Fatalf("error %T is not *RoleNotAuthorizedError", err)
	}
	if denied.Role != RoleStudent {
		t.Errorf("Role = %q, want STUDENT", denied.Role)
	}
	want := "account role 'STUDENT' is not authorized to access this route (allowed: SUPER_ADMIN)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
