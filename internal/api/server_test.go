package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vidyank/vidyank-core/internal/audit"
	"github.com/vidyank/vidyank-core/internal/auth"
	"github.com/vidyank/vidyank-core/internal/infrastructure/config"
	"github.com/vidyank/vidyank-core/internal/infrastructure/database"
	"github.com/vidyank/vidyank-core/internal/infrastructure/database/databasetest"
	"github.com/vidyank/vidyank-core/internal/infrastructure/logging"
	"github.com/vidyank/vidyank-core/internal/institute"
)

const testSecret = "api-test-secret-that-is-at-least-32-bytes"

// testEnv is a server over a seeded, migrated database.
type testEnv struct {
	server     *Server
	handler    http.Handler
	db         *database.DB
	accounts   *auth.AccountService
	institutes *institute.SQLiteRepository
	auditRepo  *audit.SQLiteRepository
	recorder   *audit.Recorder
	stop       context.CancelFunc
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := databasetest.Open(t)
	logger := logging.Nop()

	repo := auth.NewAccountRepository(db.DB)
	accounts := auth.NewAccountService(repo)
	if _, err := auth.SeedDemoAccounts(context.Background(), accounts, logger.Logger); err != nil {
		t.Fatalf("SeedDemoAccounts() error = %v", err)
	}

	issuer, err := auth.NewTokenIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	auditRepo := audit.NewSQLiteRepository(db.DB)
	recorder := audit.NewRecorder(auditRepo, logger.Logger, 64)
	ctx, cancel := context.WithCancel(context.Background())
	go recorder.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-recorder.Done()
	})

	institutes := institute.NewSQLiteRepository(db.DB)
	srv, err := New(Deps{
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Logger:     logger,
		Auth:       auth.NewAuthenticator(repo, issuer),
		Accounts:   accounts,
		Institutes: institutes,
		AuditRepo:  auditRepo,
		Recorder:   recorder,
		Database:   db,
		Version:    "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return &testEnv{
		server:     srv,
		handler:    srv.Handler(),
		db:         db,
		accounts:   accounts,
		institutes: institutes,
		auditRepo:  auditRepo,
		recorder:   recorder,
		stop:       cancel,
	}
}

// flushAudit stops the recorder and waits until every queued event is stored.
func (e *testEnv) flushAudit(t *testing.T) {
	t.Helper()
	e.stop()
	select {
	case <-e.recorder.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("audit recorder did not stop")
	}
}

// do sends a request through the full router. body is JSON-encoded unless it
// is a string, which is sent verbatim.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// login signs in and returns the token, failing the test otherwise.
func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d, body = %s", email, rec.Code, rec.Body.String())
	}
	var resp auth.LoginResult
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatalf("login %s: empty token", email)
	}
	return resp.Token
}

// loginAs signs in as the seeded demo account for role.
func (e *testEnv) loginAs(t *testing.T, role auth.Role) string {
	t.Helper()
	for _, demo := range auth.DemoAccounts() {
		if demo.Role == role {
			return e.login(t, demo.Email, demo.Password)
		}
	}
	t.Fatalf("no demo account for role %s", role)
	return ""
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding body %q: %v", rec.Body.String(), err)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) Error {
	t.Helper()
	var e Error
	decodeBody(t, rec, &e)
	return e
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) Error {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	e := decodeError(t, rec)
	if e.Code != code {
		t.Fatalf("code = %q, want %q", e.Code, code)
	}
	if e.Status != status {
		t.Errorf("envelope status = %d, want %d", e.Status, status)
	}
	return e
}

func TestNew_RequiresDependencies(t *testing.T) {
	env := newTestEnv(t)
	full := Deps{
		Logger:     env.server.logger,
		Auth:       env.server.auth,
		Accounts:   env.server.accounts,
		Institutes: env.server.institutes,
		AuditRepo:  env.server.auditRepo,
	}

	tests := []struct {
		name  string
		strip func(*Deps)
	}{
		{"logger", func(d *Deps) { d.Logger = nil }},
		{"authenticator", func(d *Deps) { d.Auth = nil }},
		{"accounts", func(d *Deps) { d.Accounts = nil }},
		{"institutes", func(d *Deps) { d.Institutes = nil }},
		{"audit repository", func(d *Deps) { d.AuditRepo = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := full
			tt.strip(&deps)
			if _, err := New(deps); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}

	if _, err := New(full); err != nil {
		t.Errorf("New() with optional deps omitted: %v", err)
	}
}

func TestServer_StartAndClose(t *testing.T) {
	env := newTestEnv(t)
	env.server.cfg = config.APIConfig{
		Host:     "127.0.0.1",
		Port:     0,
		Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5},
	}

	if err := env.server.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start = nil, want error")
	}
	if err := env.server.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + env.server.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}

	if err := env.server.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := env.server.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

type failingChecker struct{}

func (failingChecker) HealthCheck(context.Context) error { return errors.New("disk on fire") }

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeBody(t, rec, &body)
	if body.Status != "ok" || body.Checks["database"] != "ok" {
		t.Errorf("body = %+v", body)
	}

	env.server.database = failingChecker{}
	rec = env.do(t, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status with closed database = %d, want 503", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "x@y.z", "password": "nope"})
	env.do(t, http.MethodGet, "/api/auth/me", "", nil)

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`vidyank_login_attempts_total{outcome="failure"} 1`,
		`vidyank_gate_denials_total{reason="token_missing"} 1`,
		`vidyank_http_requests_total{method="POST",route="/api/auth/login",status="401"} 1`,
	} {
		if !bytes.Contains([]byte(body), []byte(want)) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)
	env.server.cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	handler := env.server.Handler()

	tests := []struct {
		origin    string
		wantAllow string
	}{
		{"http://localhost:3000", "http://localhost:3000"},
		{"http://evil.example", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
		req.Header.Set("Origin", tt.origin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("%s: status = %d, want 204", tt.origin, rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
			t.Errorf("%s: Allow-Origin = %q, want %q", tt.origin, got, tt.wantAllow)
		}
	}
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", "", nil)
	if id := rec.Header().Get("X-Request-ID"); len(id) != 2*requestIDBytes {
		t.Errorf("generated X-Request-ID = %q", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc123" {
		t.Errorf("X-Request-ID = %q, want abc123", got)
	}
}

func newRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

func serve(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	return serveHandler(env.handler, req)
}

func serveHandler(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
