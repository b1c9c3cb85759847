package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidyank/vidyank-core/internal/auth"
	"github.com/vidyank/vidyank-core/internal/institute"
)

const msgInstituteNotFound = "institute not found"

type instituteListResponse struct {
	Institutes []institute.Institute `json:"institutes"`
	Count      int                   `json:"count"`
}

type subscriptionListResponse struct {
	Subscriptions []institute.Subscription `json:"subscriptions"`
	Count         int                      `json:"count"`
}

// canSeeInstitute scopes institute administrators to their own institute.
// Other institutes look absent to them.
func canSeeInstitute(account *auth.Account, id string) bool {
	switch account.Role {
	case auth.RoleSuperAdmin:
		return true
	case auth.RoleInstituteAdmin:
		return account.InstituteID != nil && *account.InstituteID == id
	case auth.RoleTeacher, auth.RoleStudent, auth.RoleParent:
		return false
	}
	return false
}

func (s *Server) handleListInstitutes(w http.ResponseWriter, r *http.Request) {
	list, err := s.institutes.List(r.Context())
	if writeInstituteError(w, err, msgInstituteNotFound, "failed to list institutes") {
		return
	}
	writeJSON(w, http.StatusOK, instituteListResponse{Institutes: list, Count: len(list)})
}

func (s *Server) handleCreateInstitute(w http.ResponseWriter, r *http.Request) {
	var in institute.NewInstituteInput
	if err := decodeJSON(r, &in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	inst, err := s.institutes.Create(r.Context(), in)
	if writeInstituteError(w, err, msgInstituteNotFound, "failed to create institute") {
		return
	}
	s.logger.Info("institute created", "institute_id", inst.ID, "by", accountFrom(r.Context()).ID)
	writeJSON(w, http.StatusCreated, inst)
}

func (s *Server) handleGetInstitute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !canSeeInstitute(accountFrom(r.Context()), id) {
		writeNotFound(w, msgInstituteNotFound)
		return
	}

	inst, err := s.institutes.GetByID(r.Context(), id)
	if writeInstituteError(w, err, msgInstituteNotFound, "failed to get institute") {
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (s *Server) handleListInstituteSubscriptions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !canSeeInstitute(accountFrom(r.Context()), id) {
		writeNotFound(w, msgInstituteNotFound)
		return
	}

	if _, err := s.institutes.GetByID(r.Context(), id); writeInstituteError(w, err, msgInstituteNotFound, "failed to get institute") {
		return
	}
	subs, err := s.institutes.ListSubscriptions(r.Context(), id)
	if writeInstituteError(w, err, msgInstituteNotFound, "failed to list subscriptions") {
		return
	}
	writeJSON(w, http.StatusOK, subscriptionListResponse{Subscriptions: subs, Count: len(subs)})
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.institutes.ListSubscriptions(r.Context(), r.URL.Query().Get("instituteId"))
	if writeInstituteError(w, err, msgInstituteNotFound, "failed to list subscriptions") {
		return
	}
	writeJSON(w, http.StatusOK, subscriptionListResponse{Subscriptions: subs, Count: len(subs)})
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var in institute.NewSubscriptionInput
	if err := decodeJSON(r, &in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	sub, err := s.institutes.CreateSubscription(r.Context(), in)
	if writeInstituteError(w, err, msgInstituteNotFound, "failed to create subscription") {
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}
