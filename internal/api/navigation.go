package api

import (
	"net/http"

	"github.com/vidyank/vidyank-core/internal/auth"
	"github.com/vidyank/vidyank-core/internal/routes"
)

type routeTableResponse struct {
	Routes   []routes.Entry `json:"routes"`
	Fallback string         `json:"fallback"`
}

type dashboardResponse struct {
	Role     auth.Role         `json:"role"`
	Greeting string            `json:"greeting"`
	Menu     []routes.MenuItem `json:"menu"`
}

// handleRouteTable serves the role route table. It is public so the login
// pages can be resolved before anyone signs in.
func (s *Server) handleRouteTable(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, routeTableResponse{
		Routes:   routes.Table(),
		Fallback: routes.Fallback,
	})
}

// handleNavigation returns the caller's dashboard, login page and menu.
func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r.Context())
	writeJSON(w, http.StatusOK, routes.NavigationFor(account.Role))
}

// handleDashboard serves every role dashboard. The router attaches a
// single-role allow-list to each path.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r.Context())
	writeJSON(w, http.StatusOK, dashboardResponse{
		Role:     account.Role,
		Greeting: "Welcome, " + account.Name,
		Menu:     routes.Menu(account.Role),
	})
}
