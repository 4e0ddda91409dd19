// Package metrics defines and registers the custom Prometheus metrics of the
// edge gateway and the service hosts. It is the single source of truth for
// metric names, labels, and help strings.
//
// All metrics register with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "edge"

// ── Authorization metrics ─────────────────────────────────────────────────────

// AuthzDenialsTotal counts requests stopped by the authorization chain.
// Labels:
//   - stage: "authenticate", "role" or "job"
//   - reason: e.g. "unauthenticated", "role_denied", "job_undefined", "job_denied"
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of requests denied by the authorization chain.",
	},
	[]string{"stage", "reason"},
)

// AuditEventsDroppedTotal counts audit events discarded because the audit
// queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped because the queue was full.",
	},
)

// AuditWriteErrorsTotal counts audit writer failures.
// Label:
//   - writer: the writer name (e.g. "mongo")
var AuditWriteErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_errors_total",
		Help:      "Total number of audit events a writer failed to persist.",
	},
	[]string{"writer"},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRequestsTotal counts gateway requests by terminal state.
// Labels:
//   - target: the matched target name, or "none"
//   - outcome: "completed", "upstream_error", "timeout", "aborted" or "not_found"
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of gateway requests, by target and terminal state.",
	},
	[]string{"target", "outcome"},
)

// GatewayUpstreamDuration measures the time spent forwarding to an upstream.
// Label:
//   - target: the matched target name
var GatewayUpstreamDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_upstream_duration_seconds",
		Help:      "Duration of proxied requests from forward to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"target"},
)

// ── Login metrics ─────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "failure" or "throttled"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
