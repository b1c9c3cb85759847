package routes

import "github.com/vidyank/vidyank-core/internal/auth"

// MenuItem is one sidebar link.
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Menu returns the sidebar for role. Unknown roles get an empty menu.
func Menu(role auth.Role) []MenuItem {
	switch role {
	case auth.RoleSuperAdmin:
		return []MenuItem{
			{"Dashboard", "/superadmin/dashboard"},
			{"Institutes", "/superadmin/institutes"},
			{"Subscriptions", "/superadmin/subscriptions"},
			{"Payments", "/superadmin/payments"},
			{"Analytics", "/superadmin/analytics"},
			{"Settings", "/superadmin/settings"},
		}
	case auth.RoleInstituteAdmin:
		return []MenuItem{
			{"Dashboard", "/institute/dashboard"},
			{"Students", "/institute/students"},
			{"Teachers", "/institute/teachers"},
			{"Parents", "/institute/parents"},
			{"Batches", "/institute/batches"},
			{"Exams", "/institute/exams"},
			{"Questions", "/institute/questions"},
			{"Results", "/institute/results"},
			{"Attendance", "/institute/attendance"},
			{"Subscription", "/institute/subscription"},
		}
	case auth.RoleTeacher:
		return []MenuItem{
			{"Dashboard", "/teacher/dashboard"},
			{"My Subjects", "/teacher/subjects"},
			{"Question Bank", "/teacher/questions"},
			{"Exams", "/teacher/exams"},
			{"Attendance", "/teacher/attendance"},
			{"Performance", "/teacher/performance"},
		}
	case auth.RoleStudent:
		return []MenuItem{
			{"Dashboard", "/student/dashboard"},
			{"My Exams", "/student/exams"},
			{"Practice Tests", "/student/practice"},
			{"Results", "/student/results"},
			{"Progress", "/student/progress"},
			{"Profile", "/student/profile"},
		}
	case auth.RoleParent:
		return []MenuItem{
			{"Dashboard", "/parent/dashboard"},
			{"Child Results", "/parent/results"},
			{"Attendance", "/parent/attendance"},
			{"Progress", "/parent/progress"},
			{"Profile", "/parent/profile"},
		}
	}
	return []MenuItem{}
}

// Navigation is what a signed-in client needs to lay out its shell.
type Navigation struct {
	Role      auth.Role  `json:"role"`
	Dashboard string     `json:"dashboardPath"`
	Login     string     `json:"loginPath"`
	Menu      []MenuItem `json:"menu"`
}

// NavigationFor assembles the navigation for role.
func NavigationFor(role auth.Role) Navigation {
	return Navigation{
		Role:      role,
		Dashboard: DashboardPath(role),
		Login:     LoginPath(role),
		Menu:      Menu(role),
	}
}
