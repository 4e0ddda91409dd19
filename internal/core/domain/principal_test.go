package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestPrincipal_Validate(t *testing.T) {
	cases := []struct {
		name string
		p    Principal
		ok   bool
	}{
		{"admin", Principal{UserID: "u1", Role: RoleAdmin}, true},
		{"employee with job", Principal{UserID: "u1", Role: RoleEmployee, EmployeeJob: JobSales}, true},
		{"employee without job", Principal{UserID: "u1", Role: RoleEmployee}, true},
		{"missing user id", Principal{Role: RoleAdmin}, false},
		{"unknown role", Principal{UserID: "u1", Role: "ROOT"}, false},
		{"job on finance role", Principal{UserID: "u1", Role: RoleFinance, EmployeeJob: JobSales}, false},
		{"unknown job", Principal{UserID: "u1", Role: RoleEmployee, EmployeeJob: "ASTRONAUT"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrPrincipalInvalid) {
				t.Fatalf("expected ErrPrincipalInvalid, got %v", err)
			}
		})
	}
}

func TestUser_PrincipalDropsJobForNonEmployee(t *testing.T) {
	u := &User{ID: "u1", Role: RoleHR, EmployeeJob: JobSales, BranchID: "br-1"}
	p := u.Principal()
	if p.HasJob() {
		t.Fatalf("expected job to be dropped, got %q", p.EmployeeJob)
	}
	if p.BranchID != "br-1" {
		t.Fatalf("expected branch to be kept, got %q", p.BranchID)
	}

	emp := &User{ID: "u2", Role: RoleEmployee, EmployeeJob: JobCRM}
	if got := emp.Principal().EmployeeJob; got != JobCRM {
		t.Fatalf("expected CRM job, got %q", got)
	}
}

func TestJobSet_StringsSorted(t *testing.T) {
	s := NewJobSet(JobSales, JobCRM, JobDelivery)
	want := []string{"CRM", "DELIVERY", "SALES"}
	if got := s.Strings(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRoutePolicy_Validate(t *testing.T) {
	ok := RoutePolicy{Method: "get", Path: "/e/employees", Roles: []Role{RoleHR}, Jobs: []EmployeeJob{JobSales}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []RoutePolicy{
		{Method: "FETCH", Path: "/e"},
		{Method: "GET", Path: "e"},
		{Method: "GET", Path: "/e", Roles: []Role{"admin"}},
		{Method: "GET", Path: "/e", Jobs: []EmployeeJob{"sales"}},
	}
	for _, p := range bad {
		if err := p.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig for %+v, got %v", p, err)
		}
	}
}
