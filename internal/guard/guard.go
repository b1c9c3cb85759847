// Package guard decides client-side navigation for role-scoped pages.
//
// The guard is advisory UX only. It keeps a signed-out user off a page they
// could not load anyway and sends a user who strayed into another role's area
// back to their own dashboard. It is NOT a security boundary: every API call
// behind these pages is authorised by the server gate, which must stay in
// place regardless of what this package does.
package guard

import (
	"context"
	"fmt"
	"sync"

	"github.com/vidyank/vidyank-core/internal/auth"
	"github.com/vidyank/vidyank-core/internal/routes"
	"github.com/vidyank/vidyank-core/internal/session"
)

// State is the outcome of evaluating a page against the session.
type State int

const (
	// Unauthenticated means nobody is signed in.
	Unauthenticated State = iota
	// RoleMismatch means someone is signed in with a different role.
	RoleMismatch
	// Authorized means the page may render.
	Authorized
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case RoleMismatch:
		return "authenticated-role-mismatch"
	case Authorized:
		return "authenticated-authorized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Decision is what the client should do. Redirect is empty when the page
// renders.
type Decision struct {
	State    State
	Redirect string
}

// Render reports whether the page content may be shown.
func (d Decision) Render() bool {
	return d.Redirect == ""
}

// Evaluate decides a page that requires role. A signed-in user whose role is
// unknown is treated as signed out.
func Evaluate(required auth.Role, snap session.Snapshot) Decision {
	role := snap.Role()
	if !snap.Authenticated || !role.IsValid() {
		return Decision{State: Unauthenticated, Redirect: routes.LoginPath(required)}
	}
	if role != required {
		return Decision{State: RoleMismatch, Redirect: routes.DashboardPath(role)}
	}
	return Decision{State: Authorized}
}

// EvaluateLogin decides the login page of pageRole. A user already signed in
// with that role goes straight to its dashboard; anyone else sees the form.
func EvaluateLogin(pageRole auth.Role, snap session.Snapshot) Decision {
	if snap.Authenticated && snap.Role() == pageRole && pageRole.IsValid() {
		return Decision{State: Authorized, Redirect: routes.DashboardPath(pageRole)}
	}
	if snap.Authenticated {
		return Decision{State: RoleMismatch}
	}
	return Decision{State: Unauthenticated}
}

// Navigator performs a history-replacing navigation.
type Navigator interface {
	Replace(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

func (f NavigatorFunc) Replace(ctx context.Context, path string) error {
	return f(ctx, path)
}

type pageKind int

const (
	protectedPage pageKind = iota
	loginPage
)

// input is everything a decision depends on.
type input struct {
	kind          pageKind
	role          auth.Role
	authenticated bool
	sessionRole   auth.Role
}

// Guard applies decisions through a Navigator. Re-evaluating with unchanged
// inputs does not navigate again, so re-renders of one page redirect at most
// once. Callers must call Reset whenever the user navigates to a new page;
// otherwise re-entering the page last redirected from is not redirected.
type Guard struct {
	nav Navigator

	mu   sync.Mutex
	last *input
}

// New creates a Guard.
func New(nav Navigator) *Guard {
	return &Guard{nav: nav}
}

// Protect guards a page that requires role.
func (g *Guard) Protect(ctx context.Context, required auth.Role, snap session.Snapshot) (Decision, error) {
	in := input{kind: protectedPage, role: required, authenticated: snap.Authenticated, sessionRole: snap.Role()}
	return g.apply(ctx, in, Evaluate(required, snap))
}

// LoginPage guards the login page of pageRole.
func (g *Guard) LoginPage(ctx context.Context, pageRole auth.Role, snap session.Snapshot) (Decision, error) {
	in := input{kind: loginPage, role: pageRole, authenticated: snap.Authenticated, sessionRole: snap.Role()}
	return g.apply(ctx, in, EvaluateLogin(pageRole, snap))
}

// Reset forgets the last evaluation, so the next one navigates if needed.
// Call it on every page change.
func (g *Guard) Reset() {
	g.mu.Lock()
	g.last = nil
	g.mu.Unlock()
}

func (g *Guard) apply(ctx context.Context, in input, d Decision) (Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if d.Render() {
		g.last = &in
		return d, nil
	}
	if g.last != nil && *g.last == in {
		return d, nil
	}

	// Navigated away before the redirect ran: drop it.
	if err := ctx.Err(); err != nil {
		return d, err
	}
	if err := g.nav.Replace(ctx, d.Redirect); err != nil {
		return d, fmt.Errorf("redirecting to %s: %w", d.Redirect, err)
	}
	g.last = &in
	return d, nil
}
