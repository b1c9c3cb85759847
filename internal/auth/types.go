package auth

import (
	"errors"
	"fmt"
	"time"
)

// Account is a login identity. The role is fixed at creation.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialised
	Role         Role      `json:"role"`
	InstituteID  *string   `json:"instituteId,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the safe projection of an Account returned to callers.
type Profile struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Role        Role    `json:"role"`
	InstituteID *string `json:"instituteId,omitempty"`
}

// Profile returns the caller-safe view of the account.
func (a *Account) Profile() Profile {
	p := Profile{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
		Role:  a.Role,
	}
	if a.InstituteID != nil {
		id := *a.InstituteID
		p.InstituteID = &id
	}
	return p
}

// Sentinel errors for auth operations.
var (
	// ErrInvalidCredentials covers unknown email, wrong password and inactive
	// accounts alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenInvalid covers missing, malformed, expired and forged tokens,
	// and tokens for accounts that no longer exist.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrRoleNotAuthorized is matched by *RoleNotAuthorizedError.
	ErrRoleNotAuthorized = errors.New("role not authorized")

	ErrAccountNotFound = errors.New("account not found")
	ErrEmailExists     = errors.New("email already registered")
	ErrUnknownRole     = errors.New("unknown role")
	ErrInvalidAccount  = errors.New("invalid account")
)

// RoleNotAuthorizedError is returned by Authorize when an authenticated
// account's role is outside a route's allow-list.
type RoleNotAuthorizedError struct {
	Role    Role
	Allowed RoleSet
}

func (e *RoleNotAuthorizedError) Error() string {
	return fmt.Sprintf("account role '%s' is not authorized to access this route (allowed: %s)", e.Role, e.Allowed)
}

// Is lets errors.Is match ErrRoleNotAuthorized.
func (e *RoleNotAuthorizedError) Is(target error) bool {
	return target == ErrRoleNotAuthorized
}
