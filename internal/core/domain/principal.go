package domain

import (
	"sort"
	"time"
)

// Role is the coarse-grained identity category carried by every token.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleHR       Role = "HR"
	RoleFinance  Role = "FINANCE"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

var validRoles = map[Role]struct{}{
	RoleAdmin:    {},
	RoleHR:       {},
	RoleFinance:  {},
	RoleManager:  {},
	RoleEmployee: {},
}

// Valid reports whether r is one of the platform roles.
func (r Role) Valid() bool {
	_, ok := validRoles[r]
	return ok
}

// EmployeeJob is the fine-grained classification of an EMPLOYEE principal.
// The zero value means "no job".
type EmployeeJob string

const (
	JobSales            EmployeeJob = "SALES"
	JobRentLease        EmployeeJob = "RENT_LEASE"
	JobCRM              EmployeeJob = "CRM"
	JobManager          EmployeeJob = "MANAGER"
	JobFinanceSales     EmployeeJob = "FINANCE_SALES"
	JobFinanceRentLease EmployeeJob = "FINANCE_RENT_LEASE"
	JobFinanceManager   EmployeeJob = "FINANCE_MANAGER"
	JobTechnician       EmployeeJob = "TECHNICIAN"
	JobDelivery         EmployeeJob = "DELIVERY"
	JobReadingAgent     EmployeeJob = "READING_AGENT"
)

var validJobs = map[EmployeeJob]struct{}{
	JobSales:            {},
	JobRentLease:        {},
	JobCRM:              {},
	JobManager:          {},
	JobFinanceSales:     {},
	JobFinanceRentLease: {},
	JobFinanceManager:   {},
	JobTechnician:       {},
	JobDelivery:         {},
	JobReadingAgent:     {},
}

// Valid reports whether j is a known job classification. The empty job is not valid.
func (j EmployeeJob) Valid() bool {
	_, ok := validJobs[j]
	return ok
}

// ParseRole converts s into a Role, failing for unknown values.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// ParseJob converts s into an EmployeeJob, failing for unknown values.
func ParseJob(s string) (EmployeeJob, bool) {
	j := EmployeeJob(s)
	return j, j.Valid()
}

// Principal is the authenticated identity rebuilt from the token on every request.
type Principal struct {
	UserID      string      `json:"user_id"`
	Role        Role        `json:"role"`
	EmployeeJob EmployeeJob `json:"employee_job,omitempty"`
	BranchID    string      `json:"branch_id,omitempty"`
	ExpiresAt   time.Time   `json:"token_expiry"`
}

// HasJob reports whether the principal carries a job classification.
func (p Principal) HasJob() bool {
	return p.EmployeeJob != ""
}

// Validate enforces the structural invariants of a principal:
//   - user id and role are required;
//   - a job may only be present on an EMPLOYEE and must be a known value.
func (p Principal) Validate() error {
	if p.UserID == "" {
		return ErrPrincipalInvalid
	}
	if !p.Role.Valid() {
		return ErrPrincipalInvalid
	}
	if p.HasJob() {
		if p.Role != RoleEmployee || !p.EmployeeJob.Valid() {
			return ErrPrincipalInvalid
		}
	}
	return nil
}

// RoleSet is an allow-list of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from roles.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Contains reports whether r is allowed.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// JobSet is an allow-list of employee jobs.
type JobSet map[EmployeeJob]struct{}

// NewJobSet builds a JobSet from jobs.
func NewJobSet(jobs ...EmployeeJob) JobSet {
	s := make(JobSet, len(jobs))
	for _, j := range jobs {
		s[j] = struct{}{}
	}
	return s
}

// Contains reports whether j is allowed.
func (s JobSet) Contains(j EmployeeJob) bool {
	_, ok := s[j]
	return ok
}

// Strings returns the jobs in the set, sorted.
func (s JobSet) Strings() []string {
	out := make([]string, 0, len(s))
	for j := range s {
		out = append(out, string(j))
	}
	sort.Strings(out)
	return out
}
