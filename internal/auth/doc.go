// Package auth provides authentication and authorisation for Vidyank Core.
//
// It implements a flat five-role model (SUPER_ADMIN, INSTITUTE_ADMIN,
// TEACHER, STUDENT, PARENT) with:
//   - bcrypt password hashing at cost 10
//   - stateless HS256 session tokens that bind one account ID and expire
//     after a configurable lifetime (seven days by default)
//   - a single authorisation predicate, Authorize, that tests set membership
//     of the caller's role in a route's allow-list
//
// Roles do not form a hierarchy. SUPER_ADMIN does not satisfy a TEACHER-only
// route; every route lists the exact roles it admits.
//
// Login failures never reveal whether the email exists or the account is
// inactive: every failure is ErrInvalidCredentials. Token failures of any
// kind (missing, malformed, expired, bad signature, unknown account) are
// ErrTokenInvalid.
//
// Known gap: tokens cannot be revoked or refreshed. A token stays valid until
// it expires, even if the account is deactivated in the meantime.
package auth
