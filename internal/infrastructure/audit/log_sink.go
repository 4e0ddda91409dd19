package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nexerp/edge-access/internal/core/domain"
)

// LogSink writes audit events as structured warnings. It serves both as a
// direct ports.AuditSink and as a dispatcher writer.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Record(_ context.Context, ev domain.AuditEvent) {
	e := s.log.Warn().
		Bool("audit", true).
		Str("event_id", ev.ID).
		Str("kind", string(ev.Kind)).
		Str("user_id", ev.UserID).
		Str("role", string(ev.Role)).
		Str("method", ev.Method).
		Str("path", ev.Path).
		Time("occurred_at", ev.OccurredAt)
	if ev.Service != "" {
		e = e.Str("service", ev.Service)
	}
	if ev.Job != "" {
		e = e.Str("job", string(ev.Job))
	}
	if len(ev.Required) > 0 {
		e = e.Strs("required", ev.Required)
	}
	if ev.RequestID != "" {
		e = e.Str("request_id", ev.RequestID)
	}
	e.Msg("authorization denied")
}

func (s *LogSink) Write(ctx context.Context, ev domain.AuditEvent) error {
	s.Record(ctx, ev)
	return nil
}
