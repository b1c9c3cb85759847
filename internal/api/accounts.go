package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidyank/vidyank-core/internal/audit"
	"github.com/vidyank/vidyank-core/internal/auth"
)

// updateAccountRequest is the body of PATCH /api/accounts/{id}. Role is
// accepted by the decoder only so it can be refused explicitly.
type updateAccountRequest struct {
	Name        *string          `json:"name,omitempty"`
	InstituteID *string          `json:"instituteId,omitempty"`
	Password    *string          `json:"password,omitempty"`
	Role        *json.RawMessage `json:"role,omitempty"`
}

type accountResponse struct {
	Account auth.Profile `json:"account"`
}

type accountListResponse struct {
	Accounts []auth.Profile `json:"accounts"`
	Count    int            `json:"count"`
}

// handleCreateAccount provisions an account. Institute administrators may
// only create teachers, students and parents, always inside their own
// institute.
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	caller := accountFrom(r.Context())

	var in auth.NewAccountInput
	if err := decodeJSON(r, &in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if in.Role.IsValid() && !auth.CanProvision(caller.Role, in.Role) {
		writeForbidden(w, fmt.Sprintf("account role '%s' may not create %s accounts", caller.Role, in.Role))
		return
	}
	if caller.Role == auth.RoleInstituteAdmin {
		if caller.InstituteID == nil {
			writeForbidden(w, "institute admin account is not assigned to an institute")
			return
		}
		in.InstituteID = caller.InstituteID
	}

	account, err := s.accounts.Create(r.Context(), in)
	if writeAccountError(w, err, "failed to create account") {
		s.logger.Debug("account creation refused", "error", err)
		return
	}

	s.recorder.Record(audit.AuditLog{
		Action:     audit.ActionAccountCreated,
		EntityType: audit.EntityAccount,
		EntityID:   account.ID,
		AccountID:  caller.ID,
		Details:    map[string]any{"role": string(account.Role)},
	})
	writeJSON(w, http.StatusCreated, accountResponse{Account: account.Profile()})
}

// handleListAccounts lists accounts, optionally filtered by role and institute.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := auth.AccountFilter{InstituteID: q.Get("instituteId")}
	if raw := q.Get("role"); raw != "" {
		role, err := auth.ParseRole(raw)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		filter.Role = role
	}

	accounts, err := s.accounts.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing accounts", "error", err)
		writeInternalError(w, "failed to list accounts")
		return
	}

	profiles := make([]auth.Profile, len(accounts))
	for i := range accounts {
		profiles[i] = accounts[i].Profile()
	}
	writeJSON(w, http.StatusOK, accountListResponse{Accounts: profiles, Count: len(profiles)})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if writeAccountError(w, err, "failed to get account") {
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{Account: account.Profile()})
}

// handleUpdateAccount changes name, institute or password. Roles are fixed
// at creation, so a body naming a role is refused.
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Role != nil {
		writeBadRequest(w, "an account's role cannot be changed")
		return
	}

	id := chi.URLParam(r, "id")
	account, err := s.accounts.Update(r.Context(), id, auth.AccountUpdate{
		Name:        req.Name,
		InstituteID: req.InstituteID,
		Password:    req.Password,
	})
	if writeAccountError(w, err, "failed to update account") {
		return
	}

	changed := []string{}
	if req.Name != nil {
		changed = append(changed, "name")
	}
	if req.InstituteID != nil {
		changed = append(changed, "instituteId")
	}
	if req.Password != nil {
		changed = append(changed, "password")
	}
	s.recorder.Record(audit.AuditLog{
		Action:     audit.ActionAccountUpdated,
		EntityType: audit.EntityAccount,
		EntityID:   account.ID,
		AccountID:  accountFrom(r.Context()).ID,
		Details:    map[string]any{"role": string(account.Role), "fields": changed},
	})
	writeJSON(w, http.StatusOK, accountResponse{Account: account.Profile()})
}

// handleDeactivateAccount blocks further logins. Tokens already issued stay
// valid until they expire.
func (s *Server) handleDeactivateAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.Deactivate(r.Context(), chi.URLParam(r, "id"))
	if writeAccountError(w, err, "failed to deactivate account") {
		return
	}

	s.recorder.Record(audit.AuditLog{
		Action:     audit.ActionAccountDeactivated,
		EntityType: audit.EntityAccount,
		EntityID:   account.ID,
		AccountID:  accountFrom(r.Context()).ID,
		Details:    map[string]any{"role": string(account.Role)},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"account":  account.Profile(),
		"isActive": account.IsActive,
	})
}
