// Package client talks to the Vidyank API on behalf of a signed-in user.
//
// A Client attaches the session's bearer token to every authenticated call.
// When the server answers 401 the session is cleared, so the next guard
// evaluation sends the user back to a login page.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vidyank/vidyank-core/internal/auth"
	"github.com/vidyank/vidyank-core/internal/routes"
	"github.com/vidyank/vidyank-core/internal/session"
)

const defaultTimeout = 10 * time.Second

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// ErrUnexpectedResponse is returned when the server answers with something
// that is not the documented JSON.
var ErrUnexpectedResponse = errors.New("unexpected response from server")

// Error is a structured error answered by the server.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Unwrap maps the wire codes back to the auth sentinels, so callers can use
// errors.Is(err, auth.ErrTokenInvalid) and friends.
func (e *Error) Unwrap() error {
	switch e.Code {
	case "invalid_credentials":
		return auth.ErrInvalidCredentials
	case "token_invalid":
		return auth.ErrTokenInvalid
	case "role_not_authorized":
		return auth.ErrRoleNotAuthorized
	}
	return nil
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client is an API client bound to one Session.
type Client struct {
	baseURL string
	session *session.Session
	http    *http.Client
}

// New creates a Client for the API at baseURL.
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: sess,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a token and stores both token and user in
// the session. A failed login leaves the session untouched.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	var result auth.LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &result); err != nil {
		return nil, err
	}
	if err := c.session.Login(result.User, result.Token); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	return &result, nil
}

// Logout clears the session. Tokens are stateless, so the server is not told.
func (c *Client) Logout() error {
	return c.session.Logout()
}

// Me fetches the caller's current profile and refreshes the session's copy.
func (c *Client) Me(ctx context.Context) (*auth.Profile, error) {
	var resp struct {
		User auth.Profile `json:"user"`
	}
	token, err := c.authorized(ctx, http.MethodGet, "/api/auth/me", &resp)
	if err != nil {
		return nil, err
	}
	if err := c.session.Login(resp.User, token); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	return &resp.User, nil
}

// Navigation fetches the caller's dashboard, login page and menu.
func (c *Client) Navigation(ctx context.Context) (*routes.Navigation, error) {
	var nav routes.Navigation
	if _, err := c.authorized(ctx, http.MethodGet, "/api/navigation", &nav); err != nil {
		return nil, err
	}
	return &nav, nil
}

// Dashboard fetches the dashboard of the signed-in role.
func (c *Client) Dashboard(ctx context.Context) ([]routes.MenuItem, error) {
	role := c.session.Snapshot().Role()
	var resp struct {
		Menu []routes.MenuItem `json:"menu"`
	}
	if _, err := c.authorized(ctx, http.MethodGet, "/api"+routes.DashboardPath(role), &resp); err != nil {
		return nil, err
	}
	return resp.Menu, nil
}

// authorized performs an authenticated GET. Without a token no request is
// made. A 401 clears the session.
func (c *Client) authorized(ctx context.Context, method, path string, out any) (string, error) {
	token := c.session.Token()
	if token == "" {
		return "", fmt.Errorf("%w: not signed in", auth.ErrTokenInvalid)
	}

	err := c.do(ctx, method, path, token, nil, out)
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		if logoutErr := c.session.Logout(); logoutErr != nil {
			return "", errors.Join(err, logoutErr)
		}
	}
	return token, err
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return errorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s %s: %w", ErrUnexpectedResponse, method, path, err)
	}
	return nil
}

func errorFromResponse(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(apiErr); err != nil || apiErr.Code == "" {
		return fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
