package api

import (
	"errors"
	"net/http"

	"github.com/vidyank/vidyank-core/internal/audit"
	"github.com/vidyank/vidyank-core/internal/auth"
	"github.com/vidyank/vidyank-core/internal/validation"
)

// loginRequest is the body of POST /api/auth/login.
type loginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// meResponse is the body of GET /api/auth/me.
type meResponse struct {
	User auth.Profile `json:"user"`
}

// handleLogin exchanges credentials for a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.metrics.logins.WithLabelValues(outcomeInvalid).Inc()
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := validation.Struct(req); err != nil {
		s.metrics.logins.WithLabelValues(outcomeInvalid).Inc()
		writeValidationError(w, err)
		return
	}

	email := auth.NormalizeEmail(req.Email)
	result, err := s.auth.Login(r.Context(), email, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Error("login failed", "error", err, "request_id", requestIDFrom(r.Context()))
			writeInternalError(w, "login failed")
			return
		}
		s.metrics.logins.WithLabelValues(outcomeFailure).Inc()
		s.recorder.Record(audit.AuditLog{
			Action:     audit.ActionLoginFailed,
			EntityType: audit.EntityAccount,
			Details:    map[string]any{"email": email},
		})
		writeError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, msgInvalidCredentials)
		return
	}

	s.metrics.logins.WithLabelValues(outcomeSuccess).Inc()
	s.recorder.Record(audit.AuditLog{
		Action:     audit.ActionLoginSucceeded,
		EntityType: audit.EntityAccount,
		EntityID:   result.User.ID,
		AccountID:  result.User.ID,
		Details:    map[string]any{"role": string(result.User.Role)},
	})
	s.logger.Info("login succeeded", "account_id", result.User.ID, "role", result.User.Role)
	writeJSON(w, http.StatusOK, result)
}

// handleMe returns the caller's current profile.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r.Context())
	writeJSON(w, http.StatusOK, meResponse{User: account.Profile()})
}
