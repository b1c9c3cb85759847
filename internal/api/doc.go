// Package api is the Vidyank HTTP API.
//
// Every protected route passes through two middleware in order:
// authenticate, which turns the bearer token into the caller's current
// account record, and requireRoles, which admits the caller only if the
// account's role is in the route's allow-list. This pair is the one
// enforcement point for access control. Client-side route guards only
// mirror it for navigation.
//
// Errors use one JSON envelope:
//
//	{"status": 401, "code": "token_invalid", "message": "not authorized, token failed"}
//
// The server follows the usual lifecycle:
//
//	srv, err := api.New(deps)
//	srv.Start(ctx)
//	defer srv.Close()
package api
