package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nexerp/edge-access/internal/api/metrics"
	"github.com/nexerp/edge-access/internal/api/respond"
	"github.com/nexerp/edge-access/internal/core/domain"
)

// RequireRole enforces a static allow-list of roles. An empty list allows
// nobody.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := domain.NewRoleSet(roles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok {
				return unauthenticated(c, "role")
			}
			if !allowed.Contains(p.Role) {
				metrics.AuthzDenialsTotal.WithLabelValues("role", "role_denied").Inc()
				return respond.Fail(c, http.StatusForbidden, respond.MsgInsufficientPermissions)
			}
			return next(c)
		}
	}
}
