package auth

import (
	"context"
	"testing"
	"time"

	"github.com/vidyank/vidyank-core/internal/infrastructure/database/databasetest"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

const testTTL = 7 * 24 * time.Hour

func newTestRepo(t *testing.T) *SQLiteAccountRepository {
	t.Helper()
	return NewAccountRepository(databasetest.Open(t).DB)
}

// createTestAccount stores an account with the given role and password.
func createTestAccount(t *testing.T, repo AccountRepository, email, password string, role Role) *Account {
	t.Helper()

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	account := &Account{
		Name:         "Test " + string(role),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("creating account %s: %v", email, err)
	}
	return account
}

func newTestIssuer(t *testing.T, opts ...TokenOption) *TokenIssuer {
	t.Helper()

	issuer, err := NewTokenIssuer(testSecret, testTTL, opts...)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	return issuer
}
