package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/nexerp/edge-access/internal/core/domain"
)

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached by Authenticate, if any.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// CurrentPrincipal is PrincipalFrom for an echo request.
func CurrentPrincipal(c echo.Context) (domain.Principal, bool) {
	return PrincipalFrom(c.Request().Context())
}
