// Package respond renders the fixed failure envelope shared by every service
// and the gateway. Existing clients match on these exact messages.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	MsgNotAuthenticated        = "Not authenticated"
	MsgInsufficientPermissions = "Access denied: insufficient permissions"
	MsgJobNotDefined           = "Employee job not defined"
	MsgJobNotAuthorized        = "Access denied: job not authorized for this resource"
	MsgOriginNotAllowed        = "Origin not allowed"
	MsgRouteNotFound           = "Route not found"
	MsgInvalidPath             = "Invalid request path"
	MsgUpstreamUnavailable     = "Upstream service unavailable"
	MsgUpstreamTimeout         = "Upstream service timed out"
	MsgTooManyAttempts         = "Too many login attempts, try again later"
	MsgInternal                = "Internal server error"
)

// Envelope is the body of every failure response.
type Envelope struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Fail writes a failure envelope through echo.
func Fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, Envelope{Message: msg})
}

// FailHTTP writes a failure envelope on a plain ResponseWriter, for code that
// runs outside an echo handler (proxy error hooks).
func FailHTTP(w http.ResponseWriter, status int, msg string) {
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Message: msg})
}
