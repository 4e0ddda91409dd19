package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/nexerp/edge-access/internal/api/respond"
	"github.com/nexerp/edge-access/internal/core/domain"
)

// CORSConfig configures the single-origin CORS policy.
type CORSConfig struct {
	AllowedOrigin string
	AllowMethods  []string
	AllowHeaders  []string
	MaxAge        int
}

// NormalizeOrigin validates an origin for use with credentials. Wildcards,
// paths and non-http schemes are rejected.
func NormalizeOrigin(origin string) (string, error) {
	origin = strings.TrimSuffix(strings.TrimSpace(origin), "/")
	if origin == "" || strings.Contains(origin, "*") {
		return "", fmt.Errorf("%w: allowed origin must be a single explicit origin", domain.ErrInvalidConfig)
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || u.Path != "" || u.RawQuery != "" {
		return "", fmt.Errorf("%w: invalid allowed origin %q", domain.ErrInvalidConfig, origin)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}

// CORS rejects requests whose Origin differs from the configured origin
// and applies credentialed CORS headers for the allowed one. Requests
// without an Origin header pass untouched.
func CORS(cfg CORSConfig) (echo.MiddlewareFunc, error) {
	origin, err := NormalizeOrigin(cfg.AllowedOrigin)
	if err != nil {
		return nil, err
	}

	methods := cfg.AllowMethods
	if len(methods) == 0 {
		methods = []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}
	}
	headers := cfg.AllowHeaders
	if len(headers) == 0 {
		headers = []string{
			echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderXRequestID, echo.HeaderXRequestedWith,
		}
	}

	cors := echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{origin},
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withCORS := cors(next)
		return func(c echo.Context) error {
			reqOrigin := c.Request().Header.Get(echo.HeaderOrigin)
			if reqOrigin == "" {
				return next(c)
			}
			if !strings.EqualFold(strings.TrimSuffix(reqOrigin, "/"), origin) {
				return respond.Fail(c, http.StatusForbidden, respond.MsgOriginNotAllowed)
			}
			return withCORS(c)
		}
	}, nil
}
