package auth

// Authorize is the one authorisation rule of the system: the account's role
// must be a member of the allowed set. There is no hierarchy between roles.
//
// It returns nil when access is granted and a *RoleNotAuthorizedError
// otherwise. An unknown role is never granted, whatever the set contains.
func Authorize(role Role, allowed RoleSet) error {
	if role.IsValid() && allowed.Contains(role) {
		return nil
	}
	return &RoleNotAuthorizedError{Role: role, Allowed: allowed}
}
