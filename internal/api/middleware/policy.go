package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/nexerp/edge-access/internal/core/domain"
	"github.com/nexerp/edge-access/internal/core/ports"
)

// Guard returns the middleware chain for a route policy, always in the order
// Authenticate → RequireRole → RequireJob. Role and job stages are added
// only when the policy declares them.
func Guard(verifier ports.TokenVerifier, sink ports.AuditSink, policy domain.RoutePolicy) []echo.MiddlewareFunc {
	chain := []echo.MiddlewareFunc{Authenticate(verifier)}
	if policy.RequiresRole() {
		chain = append(chain, RequireRole(policy.Roles...))
	}
	if policy.RequiresJob() {
		chain = append(chain, RequireJob(sink, policy.Jobs...))
	}
	return chain
}
