// Package session holds the client-side authentication state: the bearer
// token and the signed-in user's profile.
//
// A Session is created explicitly and passed to whatever needs it. Its
// lifecycle is Restore at start-up (from a Store), Login after a successful
// credential exchange, and Logout on sign-out or when the server rejects the
// token. Every read goes through Snapshot, an immutable copy.
//
// Nothing in this package is a trust boundary. A Snapshot only drives
// navigation; the server re-verifies the token on every request.
package session
