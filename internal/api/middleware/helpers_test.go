package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nexerp/edge-access/internal/api/respond"
	"github.com/nexerp/edge-access/internal/core/domain"
	"github.com/nexerp/edge-access/internal/core/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (s *recordingSink) Record(_ context.Context, ev domain.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) all() []domain.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditEvent(nil), s.events...)
}

func newCodec(t *testing.T, opts ...service.CodecOption) *service.TokenCodec {
	t.Helper()
	c, err := service.NewTokenCodec(testSecret, time.Hour, opts...)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return c
}

func issue(t *testing.T, codec *service.TokenCodec, p domain.Principal) string {
	t.Helper()
	token, err := codec.Issue(p)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func setPrincipal(c echo.Context, p domain.Principal) {
	c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) respond.Envelope {
	t.Helper()
	var env respond.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return env
}

func okHandler(called *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*called = true
		return c.NoContent(200)
	}
}
