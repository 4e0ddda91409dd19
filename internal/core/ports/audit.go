package ports

import (
	"context"

	"github.com/nexerp/edge-access/internal/core/domain"
)

// AuditSink receives authorization denials. Record is called on the request
// path and must not block.
type AuditSink interface {
	Record(ctx context.Context, event domain.AuditEvent)
}

// AuditWriter persists audit events. Writers may block; they are driven by
// the audit dispatcher workers, never by a request.
type AuditWriter interface {
	Write(ctx context.Context, event domain.AuditEvent) error
}
