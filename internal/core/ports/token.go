package ports

import "github.com/nexerp/edge-access/internal/core/domain"

// TokenVerifier turns a raw bearer token into a Principal.
// Every failure wraps domain.ErrUnauthenticated.
type TokenVerifier interface {
	Verify(raw string) (domain.Principal, error)
}

// TokenIssuer signs a Principal into a bearer token.
type TokenIssuer interface {
	Issue(p domain.Principal) (string, error)
}
