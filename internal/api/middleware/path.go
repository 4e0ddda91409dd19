package middleware

import (
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nexerp/edge-access/internal/api/metrics"
	"github.com/nexerp/edge-access/internal/api/respond"
)

// CanonicalPath rejects request paths that route matching and forwarding
// could read differently: any non-default percent-encoding, dot segments
// and repeated slashes. It must run as a Pre middleware, before routing.
func CanonicalPath() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := c.Request().URL
			if u.RawPath != "" || !isClean(u.Path) {
				metrics.AuthzDenialsTotal.WithLabelValues("path", "non_canonical").Inc()
				return respond.Fail(c, http.StatusBadRequest, respond.MsgInvalidPath)
			}
			return next(c)
		}
	}
}

// isClean reports whether p is already in path.Clean form, allowing a
// single trailing slash.
func isClean(p string) bool {
	if !strings.HasPrefix(p, "/") {
		return false
	}
	cleaned := path.Clean(p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned == p
}
