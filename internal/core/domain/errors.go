package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated covers every token failure. Callers must treat its
// variants identically.
var ErrUnauthenticated = errors.New("not authenticated")

var (
	ErrTokenMalformed        = fmt.Errorf("%w: malformed token", ErrUnauthenticated)
	ErrTokenSignatureInvalid = fmt.Errorf("%w: invalid token signature", ErrUnauthenticated)
	ErrTokenExpired          = fmt.Errorf("%w: token expired", ErrUnauthenticated)
)

// Authorization failures.
var (
	ErrRoleDenied       = errors.New("role not allowed")
	ErrJobUndefined     = errors.New("employee job not defined")
	ErrJobDenied        = errors.New("job not allowed")
	ErrOriginNotAllowed = errors.New("origin not allowed")
)

// Gateway failures.
var (
	ErrRouteNotFound       = errors.New("route not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
)

// ErrPrincipalInvalid is returned when a principal breaks its invariants.
var ErrPrincipalInvalid = errors.New("invalid principal")

// ErrInvalidConfig marks startup configuration that must stop the process.
var ErrInvalidConfig = errors.New("invalid configuration")

// Login collaborator failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUser        = errors.New("invalid user")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)
