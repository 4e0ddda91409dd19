package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"github.com/nexerp/edge-access/internal/api/metrics"
	"github.com/nexerp/edge-access/internal/api/respond"
	"github.com/nexerp/edge-access/internal/core/domain"
	"github.com/nexerp/edge-access/internal/core/ports"
)

// RequireJob enforces an allow-list of employee jobs. The checks run in a
// fixed order:
//
//  1. no principal                → 401
//  2. role != EMPLOYEE            → allow (role bypass)
//  3. EMPLOYEE without a job      → 403 "Employee job not defined", audited
//  4. job == MANAGER              → allow (job bypass)
//  5. job not in the allow-list   → 403 job denial, audited
//  6. otherwise                   → allow
//
// The role bypass must stay ahead of the missing-job check.
func RequireJob(sink ports.AuditSink, jobs ...domain.EmployeeJob) echo.MiddlewareFunc {
	allowed := domain.NewJobSet(jobs...)
	required := allowed.Strings()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok {
				return unauthenticated(c, "job")
			}

			if p.Role != domain.RoleEmployee {
				return next(c)
			}

			if !p.HasJob() {
				record(c, sink, auditEvent(c, domain.AuditJobUndefined, p, nil))
				metrics.AuthzDenialsTotal.WithLabelValues("job", "job_undefined").Inc()
				return respond.Fail(c, http.StatusForbidden, respond.MsgJobNotDefined)
			}

			if p.EmployeeJob == domain.JobManager {
				return next(c)
			}

			if !allowed.Contains(p.EmployeeJob) {
				record(c, sink, auditEvent(c, domain.AuditJobDenied, p, required))
				metrics.AuthzDenialsTotal.WithLabelValues("job", "job_denied").Inc()
				return respond.Fail(c, http.StatusForbidden, respond.MsgJobNotAuthorized)
			}

			return next(c)
		}
	}
}

func auditEvent(c echo.Context, kind domain.AuditKind, p domain.Principal, required []string) domain.AuditEvent {
	req := c.Request()
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = req.Header.Get(echo.HeaderXRequestID)
	}

	var jobs []string
	if required != nil {
		jobs = append([]string(nil), required...)
	}

	return domain.AuditEvent{
		ID:         ulid.Make().String(),
		Kind:       kind,
		UserID:     p.UserID,
		Role:       p.Role,
		Job:        p.EmployeeJob,
		Required:   jobs,
		Method:     req.Method,
		Path:       req.URL.Path,
		RequestID:  requestID,
		OccurredAt: time.Now().UTC(),
	}
}

func record(c echo.Context, sink ports.AuditSink, ev domain.AuditEvent) {
	if sink == nil {
		return
	}
	sink.Record(c.Request().Context(), ev)
}
