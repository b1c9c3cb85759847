package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vidyank/vidyank-core/internal/auth"
	"github.com/vidyank/vidyank-core/internal/infrastructure/logging"
)

func teacher() auth.Profile {
	return auth.Profile{ID: "acc-1", Name: "Teacher", Email: "teacher@vidyank.com", Role: auth.RoleTeacher}
}

func newFileSession(t *testing.T) (*Session, *FileStore) {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "state", "session.json"))
	return New(store, logging.Nop().Logger), store
}

func TestSession_LoginPersistsAndRestores(t *testing.T) {
	s, store := newFileSession(t)

	if err := s.Login(teacher(), "tok-1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	snap := s.Snapshot()
	if !snap.Authenticated || snap.Token != "tok-1" || snap.Role() != auth.RoleTeacher {
		t.Errorf("Snapshot() = %+v", snap)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("session file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != filePermissions {
		t.Errorf("file mode = %o, want %o", perm, filePermissions)
	}

	// A fresh session over the same store sees the login.
	restored := New(store, logging.Nop().Logger)
	if err := restored.Restore(); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := restored.Snapshot(); got.User.ID != "acc-1" || got.Token != "tok-1" {
		t.Errorf("restored Snapshot() = %+v", got)
	}
}

func TestSession_RestoreEmpty(t *testing.T) {
	s, _ := newFileSession(t)
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	snap := s.Snapshot()
	if snap.Authenticated || snap.Role() != "" {
		t.Errorf("Snapshot() = %+v, want logged out", snap)
	}
}

func TestSession_RestoreDiscardsBadState(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "corrupted json", content: "{not json"},
		{name: "no token", content: `{"token":"","user":{"id":"acc-1","role":"TEACHER"}}`},
		{name: "no role", content: `{"token":"tok","user":{"id":"acc-1"}}`},
		{name: "unknown role", content: `{"token":"tok","user":{"id":"acc-1","role":"ADMIN"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newFileSession(t)
			if err := os.MkdirAll(filepath.Dir(store.Path()), 0o700); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(store.Path(), []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			if err := s.Restore(); err != nil {
				t.Fatalf("Restore() error = %v", err)
			}
			if s.Snapshot().Authenticated {
				t.Error("session should be logged out")
			}
			if _, err := os.Stat(store.Path()); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("bad session file should be removed, stat error = %v", err)
			}
		})
	}
}

func TestSession_Logout(t *testing.T) {
	s, store := newFileSession(t)
	if err := s.Login(teacher(), "tok-1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := s.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if s.Snapshot().Authenticated || s.Token() != "" {
		t.Error("session should be logged out")
	}
	rec, err := store.Load()
	if err != nil || rec != nil {
		t.Errorf("store.Load() = (%v, %v), want nothing stored", rec, err)
	}

	// Logging out twice is harmless.
	if err := s.Logout(); err != nil {
		t.Errorf("second Logout() error = %v", err)
	}
}

func TestSession_LoginRejectsInvalid(t *testing.T) {
	s := New(NewMemoryStore(), logging.Nop().Logger)

	if err := s.Login(teacher(), ""); err == nil {
		t.Error("Login() without token should fail")
	}
	bad := teacher()
	bad.Role = "teacher"
	if err := s.Login(bad, "tok"); !errors.Is(err, auth.ErrUnknownRole) {
		t.Errorf("Login() error = %v, want ErrUnknownRole", err)
	}
	if s.Snapshot().Authenticated {
		t.Error("failed Login() must not authenticate")
	}
}

func TestMemoryStore_CopiesRecords(t *testing.T) {
	store := NewMemoryStore()
	rec := &Record{Token: "tok", User: teacher()}
	if err := store.Save(rec); err != nil {
		t.Fatal(err)
	}
	rec.Token = "mutated"

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Token != "tok" {
		t.Errorf("Token = %q, want tok", got.Token)
	}
}
