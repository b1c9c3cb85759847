package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DemoInstituteAdminEmail is the demo INSTITUTE_ADMIN login.
const DemoInstituteAdminEmail = "institute@vidyank.com"

// DemoAccount is one fixed account created by SeedDemoAccounts.
type DemoAccount struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// DemoAccounts returns one known account per role for local development.
// The passwords are public; never enable seeding on a real deployment.
func DemoAccounts() []DemoAccount {
	return []DemoAccount{
		{Name: "Super Admin", Email: "superadmin@vidyank.com", Password: "SuperAdmin123", Role: RoleSuperAdmin},
		{Name: "Institute Admin", Email: DemoInstituteAdminEmail, Password: "Institute123", Role: RoleInstituteAdmin},
		{Name: "Teacher", Email: "teacher@vidyank.com", Password: "Teacher123", Role: RoleTeacher},
		{Name: "Student", Email: "student@vidyank.com", Password: "Student123", Role: RoleStudent},
		{Name: "Parent", Email: "parent@vidyank.com", Password: "Parent123", Role: RoleParent},
	}
}

// SeedDemoAccounts creates every demo account whose email is not yet taken.
// Existing accounts are left untouched. Returns the number created.
func SeedDemoAccounts(ctx context.Context, svc *AccountService, logger *slog.Logger) (int, error) {
	created := 0
	for _, demo := range DemoAccounts() {
		_, err := svc.Create(ctx, NewAccountInput{
			Name:     demo.Name,
			Email:    demo.Email,
			Password: demo.Password,
			Role:     demo.Role,
		})
		switch {
		case errors.Is(err, ErrEmailExists):
			logger.Debug("demo account exists, skipping", "email", demo.Email)
			continue
		case err != nil:
			return created, fmt.Errorf("seeding %s: %w", demo.Email, err)
		}

		created++
		logger.Warn("demo account created",
			"email", demo.Email,
			"role", string(demo.Role),
			"action_required", "disable seeding outside development",
		)
	}
	return created, nil
}
