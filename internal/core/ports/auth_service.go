package ports

import (
	"context"

	"github.com/nexerp/edge-access/internal/core/domain"
)

// CreateUserInput carries the fields of a new account.
type CreateUserInput struct {
	Email       string
	Name        string
	Password    string
	Role        domain.Role
	EmployeeJob domain.EmployeeJob
	BranchID    string
}

// AuthService is the login and issuance collaborator.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)
}
