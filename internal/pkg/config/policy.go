package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nexerp/edge-access/internal/core/domain"
)

// policyFile is the YAML layout of POLICY_FILE:
//
//	routes:
//	  - method: GET
//	    path: /leads
//	    roles: [EMPLOYEE, MANAGER]
//	    jobs: [SALES, CRM]
type policyFile struct {
	Routes []domain.RoutePolicy `yaml:"routes" validate:"required,min=1,dive"`
}

// LoadPolicies reads and validates the route policy file at path.
func LoadPolicies(path string) ([]domain.RoutePolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read policy file: %v", domain.ErrInvalidConfig, err)
	}
	return ParsePolicies(raw)
}

// ParsePolicies decodes a policy document. Unknown keys, unknown roles or
// jobs and policies that overlap on the same route are rejected.
func ParsePolicies(raw []byte) ([]domain.RoutePolicy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var doc policyFile
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse policy file: %v", domain.ErrInvalidConfig, err)
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: policy file: %v", domain.ErrInvalidConfig, err)
	}

	for i := range doc.Routes {
		doc.Routes[i].Method = strings.ToUpper(doc.Routes[i].Method)
	}
	if err := domain.CheckPolicies(doc.Routes); err != nil {
		return nil, err
	}
	return doc.Routes, nil
}
