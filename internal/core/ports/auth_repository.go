package ports

import (
	"context"

	"github.com/nexerp/edge-access/internal/core/domain"
)

// UserRepository defines the persistence the login flow needs.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// LoginThrottle limits failed login attempts per key.
type LoginThrottle interface {
	Blocked(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
