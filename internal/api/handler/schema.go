package handler

import (
	"time"

	"github.com/nexerp/edge-access/internal/core/domain"
)

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createUserRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Name        string `json:"name"`
	Password    string `json:"password"     validate:"required,min=8"`
	Role        string `json:"role"         validate:"required,oneof=ADMIN HR FINANCE MANAGER EMPLOYEE"`
	EmployeeJob string `json:"employee_job" validate:"omitempty,oneof=SALES RENT_LEASE CRM MANAGER FINANCE_SALES FINANCE_RENT_LEASE FINANCE_MANAGER TECHNICIAN DELIVERY READING_AGENT"`
	BranchID    string `json:"branch_id"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

type userResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
}

type principalResponse struct {
	Success     bool      `json:"success"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	EmployeeJob string    `json:"employee_job,omitempty"`
	BranchID    string    `json:"branch_id,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type healthResponse struct {
	Status    string  `json:"status"`
	Service   string  `json:"service"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
	Success   bool    `json:"success"`
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
	Success      bool                        `json:"success"`
}
