package domain

import (
	"fmt"
	"net/http"
	"strings"
)

// RoutePolicy declares the role and job requirements of one route.
// Empty Roles and Jobs means authenticated-only.
type RoutePolicy struct {
	Method string        `yaml:"method" validate:"required"`
	Path   string        `yaml:"path"   validate:"required,startswith=/"`
	Roles  []Role        `yaml:"roles"`
	Jobs   []EmployeeJob `yaml:"jobs"`
}

var policyMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
	"ANY":              {},
}

// Validate rejects unknown methods, roles and jobs so that a typo in a
// policy never widens access.
func (p RoutePolicy) Validate() error {
	if _, ok := policyMethods[strings.ToUpper(p.Method)]; !ok {
		return fmt.Errorf("%w: policy %s %s: unknown method", ErrInvalidConfig, p.Method, p.Path)
	}
	if !strings.HasPrefix(p.Path, "/") {
		return fmt.Errorf("%w: policy %s %s: path must start with /", ErrInvalidConfig, p.Method, p.Path)
	}
	for _, r := range p.Roles {
		if !r.Valid() {
			return fmt.Errorf("%w: policy %s %s: unknown role %q", ErrInvalidConfig, p.Method, p.Path, r)
		}
	}
	for _, j := range p.Jobs {
		if !j.Valid() {
			return fmt.Errorf("%w: policy %s %s: unknown job %q", ErrInvalidConfig, p.Method, p.Path, j)
		}
	}
	return nil
}

// RequiresRole reports whether the policy restricts roles.
func (p RoutePolicy) RequiresRole() bool { return len(p.Roles) > 0 }

// RequiresJob reports whether the policy restricts jobs.
func (p RoutePolicy) RequiresJob() bool { return len(p.Jobs) > 0 }

// CheckPolicies validates every policy and rejects pairs that would claim
// the same route. ANY overlaps every method on its path, so mounting it next
// to a method-specific policy would silently replace one chain with the other.
func CheckPolicies(policies []RoutePolicy) error {
	byPath := make(map[string]map[string]struct{}, len(policies))
	for _, p := range policies {
		if err := p.Validate(); err != nil {
			return err
		}
		method := strings.ToUpper(p.Method)
		methods, ok := byPath[p.Path]
		if !ok {
			methods = make(map[string]struct{}, 1)
			byPath[p.Path] = methods
		}
		_, dup := methods[method]
		_, wildcard := methods["ANY"]
		if dup || wildcard || (method == "ANY" && len(methods) > 0) {
			return fmt.Errorf("%w: policy %s %s overlaps another policy on the same path", ErrInvalidConfig, method, p.Path)
		}
		methods[method] = struct{}{}
	}
	return nil
}
