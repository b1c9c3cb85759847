package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	User      Profile   `json:"user"`
	ExpiresAt time.Time `json:"-"`
}

// Authenticator verifies credentials and resolves session tokens to accounts.
// It holds no per-request state.
type Authenticator struct {
	accounts AccountRepository
	tokens   *TokenIssuer
}

// NewAuthenticator creates an Authenticator over the given account store.
func NewAuthenticator(accounts AccountRepository, tokens *TokenIssuer) *Authenticator {
	return &Authenticator{accounts: accounts, tokens: tokens}
}

// Tokens returns the issuer used for login tokens.
func (a *Authenticator) Tokens() *TokenIssuer {
	return a.tokens
}

// Login checks an email/password pair and issues a session token.
//
// Unknown email, inactive account and wrong password all return
// ErrInvalidCredentials, and all three pay for one bcrypt comparison.
// Storage failures are returned wrapped and are not credential errors.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := a.accounts.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			VerifyPassword(password, dummyHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	passwordOK := VerifyPassword(password, account.PasswordHash)
	if !passwordOK || !account.IsActive {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := a.tokens.Issue(account.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		User:      account.Profile(),
		ExpiresAt: expiresAt,
	}, nil
}

// Authenticate verifies a token and loads the account it names. This is the
// first half of the authorisation gate; Authorize is the second.
//
// A token that fails verification never causes an account lookup. A valid
// token for an account that no longer exists is ErrTokenInvalid. The
// account's active flag is not consulted: tokens live until they expire.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Account, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	account, err := a.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", ErrTokenInvalid)
		}
		return nil, fmt.Errorf("loading account: %w", err)
	}
	return account, nil
}
