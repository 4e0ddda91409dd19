package domain

import "time"

// User is the stored account the login flow turns into a Principal.
type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name,omitempty"`
	PasswordHash string      `json:"-"`
	Role         Role        `json:"role"`
	EmployeeJob  EmployeeJob `json:"employee_job,omitempty"`
	BranchID     string      `json:"branch_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Principal derives the token identity for u. A job stored on a
// non-EMPLOYEE account is dropped.
func (u *User) Principal() Principal {
	p := Principal{
		UserID:   u.ID,
		Role:     u.Role,
		BranchID: u.BranchID,
	}
	if u.Role == RoleEmployee {
		p.EmployeeJob = u.EmployeeJob
	}
	return p
}
