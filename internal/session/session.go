package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vidyank/vidyank-core/internal/auth"
)

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	Authenticated bool
	Token         string
	User          auth.Profile
}

// Role returns the signed-in role, or "" when logged out.
func (s Snapshot) Role() auth.Role {
	if !s.Authenticated {
		return ""
	}
	return s.User.Role
}

// Session is the injectable authentication state of one client.
type Session struct {
	store  Store
	logger *slog.Logger

	mu  sync.RWMutex
	rec *Record
}

// New creates a logged-out session backed by store. Call Restore to pick up
// a previously persisted login.
func New(store Store, logger *slog.Logger) *Session {
	return &Session{store: store, logger: logger}
}

// Restore loads the persisted session. Unreadable state, a missing token or
// an unknown role are cleared from the store and leave the session logged
// out; only a failure to clear is returned.
func (s *Session) Restore() error {
	rec, err := s.store.Load()
	if err == nil && rec == nil {
		s.set(nil)
		return nil
	}
	if err == nil {
		err = validate(rec)
	}
	if err != nil {
		s.logger.Warn("discarding stored session", "error", err)
		s.set(nil)
		if clearErr := s.store.Clear(); clearErr != nil {
			return fmt.Errorf("clearing stored session: %w", clearErr)
		}
		return nil
	}

	s.set(rec)
	s.logger.Debug("session restored", "account_id", rec.User.ID, "role", string(rec.User.Role))
	return nil
}

// Login records a successful sign-in and persists it.
func (s *Session) Login(user auth.Profile, token string) error {
	rec := &Record{Token: token, User: user}
	if err := validate(rec); err != nil {
		return err
	}
	if err := s.store.Save(rec); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	s.set(rec)
	return nil
}

// Logout forgets the session in memory and in the store. The in-memory state
// is cleared even if the store fails.
func (s *Session) Logout() error {
	s.set(nil)
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec == nil {
		return Snapshot{}
	}
	return Snapshot{Authenticated: true, Token: s.rec.Token, User: s.rec.User}
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	return s.Snapshot().Token
}

func (s *Session) set(rec *Record) {
	s.mu.Lock()
	s.rec = rec
	s.mu.Unlock()
}

func validate(rec *Record) error {
	if rec.Token == "" {
		return errors.New("session has no token")
	}
	if !rec.User.Role.IsValid() {
		return fmt.Errorf("session user: %w: %q", auth.ErrUnknownRole, rec.User.Role)
	}
	return nil
}
