package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nexerp/edge-access/internal/api/respond"
	"github.com/nexerp/edge-access/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps known domain
// errors to status codes, logs unexpected errors without leaking details,
// and renders the {"message", "success": false} envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = respond.Fail(c, code, msg)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound {
			return he.Code, respond.MsgRouteNotFound
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, respond.MsgNotAuthenticated
	case errors.Is(err, domain.ErrRoleDenied):
		return http.StatusForbidden, respond.MsgInsufficientPermissions
	case errors.Is(err, domain.ErrJobUndefined):
		return http.StatusForbidden, respond.MsgJobNotDefined
	case errors.Is(err, domain.ErrJobDenied):
		return http.StatusForbidden, respond.MsgJobNotAuthorized
	case errors.Is(err, domain.ErrOriginNotAllowed):
		return http.StatusForbidden, respond.MsgOriginNotAllowed
	case errors.Is(err, domain.ErrRouteNotFound):
		return http.StatusNotFound, respond.MsgRouteNotFound
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrInvalidUser):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, respond.MsgTooManyAttempts
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, respond.MsgUpstreamUnavailable
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, respond.MsgUpstreamTimeout
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, respond.MsgInternal
}
