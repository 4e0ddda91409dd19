package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nexerp/edge-access/internal/api/middleware"
	"github.com/nexerp/edge-access/internal/core/domain"
	"github.com/nexerp/edge-access/internal/core/ports"
)

type stubAuthService struct {
	loginFn  func(ctx context.Context, email, password string) (string, *domain.User, error)
	createFn func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func newContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			if email != "alice@nexerp.io" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "tok", &domain.User{ID: "u1", Email: email, Role: domain.RoleHR, PasswordHash: "hash"}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/auth/login", `{"email":"alice@nexerp.io","password":"secret"}`)

	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true || resp["token"] != "tok" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	user := resp["user"].(map[string]any)
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
	if user["role"] != "HR" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Login_PassesServiceErrors(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrTooManyAttempts
		},
	}
	c, _ := newContext(http.MethodPost, "/auth/login", `{"email":"alice@nexerp.io","password":"x"}`)

	if err := NewAuthHandler(stub).Login(c); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthHandler_Login_BadRequest(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	for _, body := range []string{"not-json", `{"email":"nope","password":"x"}`, `{"email":"a@b.io"}`} {
		c, _ := newContext(http.MethodPost, "/auth/login", body)
		if code := httpCode(t, NewAuthHandler(stub).Login(c)); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, code)
		}
	}
}

func TestAuthHandler_CreateUser(t *testing.T) {
	var got ports.CreateUserInput
	stub := &stubAuthService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
			got = in
			return &domain.User{ID: "u9", Email: in.Email, Role: in.Role, EmployeeJob: in.EmployeeJob}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/auth/users",
		`{"email":"tech@nexerp.io","password":"longenough","role":"EMPLOYEE","employee_job":"TECHNICIAN","branch_id":"br-1"}`)

	if err := NewAuthHandler(stub).CreateUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.Role != domain.RoleEmployee || got.EmployeeJob != domain.JobTechnician || got.BranchID != "br-1" {
		t.Fatalf("unexpected input: %+v", got)
	}
}

func TestAuthHandler_CreateUser_Validation(t *testing.T) {
	stub := &stubAuthService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	bodies := []string{
		`{"email":"a@b.io","password":"short","role":"HR"}`,
		`{"email":"a@b.io","password":"longenough","role":"OWNER"}`,
		`{"email":"a@b.io","password":"longenough","role":"EMPLOYEE","employee_job":"PILOT"}`,
	}
	for _, body := range bodies {
		c, _ := newContext(http.MethodPost, "/auth/users", body)
		if code := httpCode(t, NewAuthHandler(stub).CreateUser(c)); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, code)
		}
	}
}

func TestAuthHandler_Me(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/auth/me", "")
	req := c.Request()
	c.SetRequest(req.WithContext(middleware.WithPrincipal(req.Context(), domain.Principal{
		UserID: "u1", Role: domain.RoleEmployee, EmployeeJob: domain.JobCRM, ExpiresAt: time.Now().Add(time.Hour),
	})))

	if err := NewAuthHandler(nil).Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp principalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.UserID != "u1" || resp.EmployeeJob != "CRM" || !resp.Success {
		t.Fatalf("unexpected response: %+v", resp)
	}

	c, _ = newContext(http.MethodGet, "/auth/me", "")
	if err := NewAuthHandler(nil).Me(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated without principal, got %v", err)
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler("gateway")
	h.started = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return h.started.Add(90 * time.Second) }

	c, rec := newContext(http.MethodGet, "/health", "")
	if err := h.Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "UP" || resp.Service != "gateway" || !resp.Success || resp.Uptime != 90 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Fatalf("timestamp not RFC 3339: %q", resp.Timestamp)
	}
}

func TestReadinessHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	c, rec := newContext(http.MethodGet, "/health/ready", "")
	if err := NewReadinessHandler(map[string]Check{"mongodb": ok, "redis": ok}).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = newContext(http.MethodGet, "/health/ready", "")
	_ = NewReadinessHandler(map[string]Check{"mongodb": ok, "redis": down}).Readiness(c)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Dependencies["redis"].Status != "unhealthy" || resp.Dependencies["mongodb"].Status != "ok" {
		t.Fatalf("unexpected dependencies: %+v", resp.Dependencies)
	}

	c, rec = newContext(http.MethodGet, "/health/ready", "")
	_ = NewReadinessHandler(nil).Readiness(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("no checks configured: expected 200, got %d", rec.Code)
	}
}
