package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vidyank/vidyank-core/internal/auth"
	"github.com/vidyank/vidyank-core/internal/institute"
	"github.com/vidyank/vidyank-core/internal/validation"
)

// Error is the JSON error envelope.
type Error struct {
	Status  int                     `json:"status"`
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// Error codes.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeValidation         = "validation_error"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeForbidden          = "forbidden"
	ErrCodeInternal           = "internal_error"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeTokenInvalid       = "token_invalid"
	ErrCodeRoleNotAuthorized  = "role_not_authorized"
)

// Messages for the auth failures. Every token failure shares the
// token_invalid code; only a missing token gets its own message.
const (
	msgInvalidCredentials = "invalid email or password"
	msgTokenMissing       = "not authorized, no token"
	msgTokenInvalid       = "not authorized, token failed"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // best-effort write; the client may have gone
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

func writeTokenInvalid(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeTokenInvalid, message)
}

// writeValidationError reports field problems when err carries them.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusBadRequest, Error{
		Status:  http.StatusBadRequest,
		Code:    ErrCodeValidation,
		Message: verrs.Error(),
		Fields:  verrs,
	})
}

// writeRoleNotAuthorized names the caller's role and the roles the route
// admits. The caller's identity is already established at this point.
func writeRoleNotAuthorized(w http.ResponseWriter, err error) {
	writeError(w, http.StatusForbidden, ErrCodeRoleNotAuthorized, err.Error())
}

// decodeJSON reads a JSON body, rejecting unknown fields and trailing data.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// writeAccountError maps account service errors to responses.
func writeAccountError(w http.ResponseWriter, err error, fallback string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, auth.ErrAccountNotFound):
		writeNotFound(w, "account not found")
	case errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, "email already registered")
	case errors.Is(err, auth.ErrInvalidAccount):
		writeValidationError(w, err)
	default:
		writeInternalError(w, fallback)
	}
	return true
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInstituteError maps institute repository errors to responses.
func writeInstituteError(w http.ResponseWriter, err error, notFound, fallback string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, institute.ErrNotFound):
		writeNotFound(w, notFound)
	case errors.Is(err, institute.ErrInvalidInput):
		writeValidationError(w, err)
	default:
		writeInternalError(w, fallback)
	}
	return true
}
