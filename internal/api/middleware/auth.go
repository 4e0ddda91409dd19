package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nexerp/edge-access/internal/api/metrics"
	"github.com/nexerp/edge-access/internal/api/respond"
	"github.com/nexerp/edge-access/internal/core/ports"
)

// Authenticate verifies the bearer token and attaches the principal to the
// request context. Any failure is a 401 with the fixed body; the raw token
// is never logged.
func Authenticate(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthenticated(c, "authenticate")
			}

			p, err := verifier.Verify(raw)
			if err != nil {
				return unauthenticated(c, "authenticate")
			}

			req := c.Request()
			c.SetRequest(req.WithContext(WithPrincipal(req.Context(), p)))
			return next(c)
		}
	}
}

// bearerToken extracts the credential from an "Authorization: Bearer <t>" value.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthenticated(c echo.Context, stage string) error {
	metrics.AuthzDenialsTotal.WithLabelValues(stage, "unauthenticated").Inc()
	return respond.Fail(c, http.StatusUnauthorized, respond.MsgNotAuthenticated)
}
