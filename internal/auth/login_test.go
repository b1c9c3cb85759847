package auth

import (
	"context"
	"errors"
	"testing"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *SQLiteAccountRepository) {
	t.Helper()
	repo := newTestRepo(t)
	return NewAuthenticator(repo, newTestIssuer(t)), repo
}

func TestLogin_Success(t *testing.T) {
	authn, repo := newTestAuthenticator(t)
	account := createTestAccount(t, repo, "teacher@vidyank.com", "Teacher123", RoleTeacher)

	result, err := authn.Login(context.Background(), "  TEACHER@vidyank.com ", "Teacher123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token == "" {
		t.Error("Login() should return a token")
	}
	if result.User.ID != account.ID || result.User.Role != RoleTeacher {
		t.Errorf("User = %+v", result.User)
	}
	if result.User.Email != "teacher@vidyank.com" {
		t.Errorf("Email = %q", result.User.Email)
	}

	got, err := authn.Authenticate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != account.ID {
		t.Errorf("Authenticate() ID = %q, want %q", got.ID, account.ID)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	authn, repo := newTestAuthenticator(t)
	ctx := context.Background()
	createTestAccount(t, repo, "student@vidyank.com", "Student123", RoleStudent)
	inactive := createTestAccount(t, repo, "gone@vidyank.com", "Gone1234", RoleStudent)
	if err := repo.Deactivate(ctx, inactive.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@vidyank.com", password: "Student123"},
		{name: "wrong password", email: "student@vidyank.com", password: "wrong-pass"},
		{name: "inactive account", email: "gone@vidyank.com", password: "Gone1234"},
		{name: "empty password", email: "student@vidyank.com", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authn.Login(ctx, tt.email, tt.password)
			if err != ErrInvalidCredentials { //nolint:errorlint // must be the bare sentinel
				t.Fatalf("Login() error = %v, want exactly ErrInvalidCredentials", err)
			}
			if result != nil {
				t.Error("Login() should not return a result on failure")
			}
		})
	}
}

func TestAuthenticate_ReadsRoleFromAccount(t *testing.T) {
	authn, repo := newTestAuthenticator(t)
	ctx := context.Background()
	account := createTestAccount(t, repo, "parent@vidyank.com", "Parent123", RoleParent)

	token, _, err := authn.Tokens().Issue(account.ID)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Flip the stored role; the next request must see the new role.
	if _, err := repo.db.ExecContext(ctx, "UPDATE accounts SET role = 'TEACHER' WHERE id = ?", account.ID); err != nil {
		t.Fatalf("updating role: %v", err)
	}

	got, err := authn.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.Role != RoleTeacher {
		t.Errorf("Role = %q, want TEACHER", got.Role)
	}
}

func TestAuthenticate_InactiveAccountStillAuthenticates(t *testing.T) {
	authn, repo := newTestAuthenticator(t)
	ctx := context.Background()
	account := createTestAccount(t, repo, "t@vidyank.com", "Teacher123", RoleTeacher)

	result, err := authn.Login(ctx, "t@vidyank.com", "Teacher123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := repo.Deactivate(ctx, account.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	// Issued tokens stay valid until expiry; only new logins are refused.
	if _, err := authn.Authenticate(ctx, result.Token); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if _, err := authn.Login(ctx, "t@vidyank.com", "Teacher123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() after deactivation error = %v", err)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	authn, _ := newTestAuthenticator(t)
	ctx := context.Background()

	if _, err := authn.Authenticate(ctx, "garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Authenticate(garbage) error = %v, want ErrTokenInvalid", err)
	}

	orphan, _, err := authn.Tokens().Issue("acc-deleted")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := authn.Authenticate(ctx, orphan); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Authenticate(orphan) error = %v, want ErrTokenInvalid", err)
	}
}
