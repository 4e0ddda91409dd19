package domain

import "time"

// AuditKind classifies a security-relevant denial.
type AuditKind string

const (
	AuditJobUndefined AuditKind = "JOB_UNDEFINED"
	AuditJobDenied    AuditKind = "JOB_DENIED"
)

// AuditEvent is emitted when an EMPLOYEE is refused by the job check.
type AuditEvent struct {
	ID         string      `json:"id"`
	Kind       AuditKind   `json:"kind"`
	Service    string      `json:"service,omitempty"`
	UserID     string      `json:"user_id"`
	Role       Role        `json:"role"`
	Job        EmployeeJob `json:"job,omitempty"`
	Required   []string    `json:"required,omitempty"`
	Method     string      `json:"method"`
	Path       string      `json:"path"`
	RequestID  string      `json:"request_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}
