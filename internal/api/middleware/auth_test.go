package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nexerp/edge-access/internal/api/respond"
	"github.com/nexerp/edge-access/internal/core/domain"
	"github.com/nexerp/edge-access/internal/core/service"
)

func TestAuthenticate_ValidToken(t *testing.T) {
	codec := newCodec(t)
	token := issue(t, codec, domain.Principal{UserID: "alice", Role: domain.RoleEmployee, EmployeeJob: domain.JobSales, BranchID: "br-1"})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Authenticate(codec)(func(c echo.Context) error {
		called = true
		p, ok := CurrentPrincipal(c)
		if !ok {
			t.Fatalf("principal not attached")
		}
		if p.UserID != "alice" || p.Role != domain.RoleEmployee || p.EmployeeJob != domain.JobSales || p.BranchID != "br-1" {
			t.Fatalf("unexpected principal: %+v", p)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_SchemeIsCaseInsensitive(t *testing.T) {
	codec := newCodec(t)
	token := issue(t, codec, domain.Principal{UserID: "alice", Role: domain.RoleAdmin})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	if err := Authenticate(codec)(okHandler(&called))(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	codec := newCodec(t)
	expired := issue(t, newCodec(t, service.WithClock(func() time.Time { return time.Now().Add(-48 * time.Hour) })),
		domain.Principal{UserID: "alice", Role: domain.RoleAdmin})
	foreign, err := service.NewTokenCodec("ffffffffffffffffffffffffffffffff", time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	forged := issue(t, foreign, domain.Principal{UserID: "mallory", Role: domain.RoleAdmin})

	cases := map[string]func(r *http.Request){
		"missing header":  func(r *http.Request) {},
		"wrong scheme":    func(r *http.Request) { r.Header.Set("Authorization", "Token abc") },
		"empty bearer":    func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") },
		"garbage token":   func(r *http.Request) { r.Header.Set("Authorization", "Bearer not-a-token") },
		"expired token":   func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) },
		"forged token":    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+forged) },
		"token in cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: forged}) },
		"token in query":  func(r *http.Request) { r.URL.RawQuery = "token=" + expired },
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			setup(req)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := Authenticate(codec)(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})
			if err := handler(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			env := decodeEnvelope(t, rec)
			if env.Success || env.Message != respond.MsgNotAuthenticated {
				t.Fatalf("unexpected body: %+v", env)
			}
		})
	}
}

func TestAuthenticate_ExactUnauthenticatedBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = Authenticate(newCodec(t))(func(c echo.Context) error { return nil })(c)

	want := `{"message":"Not authenticated","success":false}` + "\n"
	if rec.Body.String() != want {
		t.Fatalf("expected body %q, got %q", want, rec.Body.String())
	}
}
