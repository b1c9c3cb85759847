package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidyank/vidyank-core/internal/auth"
)

// Allow-lists attached to route groups. Membership is exact; no role
// implies another.
var (
	superAdminOnly  = auth.Allow(auth.RoleSuperAdmin)
	administrators  = auth.Allow(auth.RoleSuperAdmin, auth.RoleInstituteAdmin)
	instituteAdmins = auth.Allow(auth.RoleInstituteAdmin)
	teachersOnly    = auth.Allow(auth.RoleTeacher)
	studentsOnly    = auth.Allow(auth.RoleStudent)
	parentsOnly     = auth.Allow(auth.RoleParent)
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.metrics.instrument)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	if s.metricsCfg.Enabled {
		path := s.metricsCfg.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, s.metrics.handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/routes", s.handleRouteTable)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/me", s.handleMe)
			r.Get("/navigation", s.handleNavigation)

			// Dashboards, one role each
			r.With(s.requireRoles(superAdminOnly)).Get("/superadmin/dashboard", s.handleDashboard)
			r.With(s.requireRoles(instituteAdmins)).Get("/institute/dashboard", s.handleDashboard)
			r.With(s.requireRoles(teachersOnly)).Get("/teacher/dashboard", s.handleDashboard)
			r.With(s.requireRoles(studentsOnly)).Get("/student/dashboard", s.handleDashboard)
			r.With(s.requireRoles(parentsOnly)).Get("/parent/dashboard", s.handleDashboard)

			r.Route("/accounts", func(r chi.Router) {
				r.With(s.requireRoles(administrators)).Post("/", s.handleCreateAccount)

				r.Group(func(r chi.Router) {
					r.Use(s.requireRoles(superAdminOnly))
					r.Get("/", s.handleListAccounts)
					r.Get("/{id}", s.handleGetAccount)
					r.Patch("/{id}", s.handleUpdateAccount)
					r.Post("/{id}/deactivate", s.handleDeactivateAccount)
				})
			})

			r.Route("/institutes", func(r chi.Router) {
				r.With(s.requireRoles(superAdminOnly)).Get("/", s.handleListInstitutes)
				r.With(s.requireRoles(superAdminOnly)).Post("/", s.handleCreateInstitute)
				r.With(s.requireRoles(administrators)).Get("/{id}", s.handleGetInstitute)
				r.With(s.requireRoles(administrators)).Get("/{id}/subscriptions", s.handleListInstituteSubscriptions)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Use(s.requireRoles(superAdminOnly))
				r.Get("/", s.handleListSubscriptions)
				r.Post("/", s.handleCreateSubscription)
			})

			r.With(s.requireRoles(superAdminOnly)).Get("/audit", s.handleListAuditLogs)
		})
	})

	return r
}
