// Package gateway implements the edge routing table and the reverse proxies
// that forward matched requests to backend services.
package gateway

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nexerp/edge-access/internal/core/domain"
)

// reservedPrefixes are served by the gateway itself and can never be proxied.
var reservedPrefixes = []string{"/health", "/metrics"}

// Table is an immutable prefix → target map. Targets are kept longest prefix
// first.
type Table struct {
	targets []domain.ProxyTarget
}

// NewTable validates targets and builds the table. Empty, duplicate,
// overlapping or reserved prefixes are configuration errors.
func NewTable(targets []domain.ProxyTarget) (*Table, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: at least one proxy target is required", domain.ErrInvalidConfig)
	}

	v := validator.New()
	names := make(map[string]struct{}, len(targets))
	out := make([]domain.ProxyTarget, 0, len(targets))

	for _, t := range targets {
		t.Prefix = normalizePrefix(t.Prefix)
		if t.Rewrite == "" {
			t.Rewrite = domain.RewriteStrip
		}
		if err := v.Struct(t); err != nil {
			return nil, fmt.Errorf("%w: target %q: %v", domain.ErrInvalidConfig, t.Name, err)
		}
		if t.Prefix == "/" {
			return nil, fmt.Errorf("%w: target %q: root prefix is not allowed", domain.ErrInvalidConfig, t.Name)
		}
		if _, err := ParseUpstream(t.Upstream); err != nil {
			return nil, fmt.Errorf("target %q: %w", t.Name, err)
		}
		if _, dup := names[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate target name %q", domain.ErrInvalidConfig, t.Name)
		}
		names[t.Name] = struct{}{}

		for _, r := range reservedPrefixes {
			if overlaps(t.Prefix, r) {
				return nil, fmt.Errorf("%w: target %q: prefix %s collides with reserved %s", domain.ErrInvalidConfig, t.Name, t.Prefix, r)
			}
		}
		for _, o := range out {
			if overlaps(t.Prefix, o.Prefix) {
				return nil, fmt.Errorf("%w: prefixes %s (%s) and %s (%s) overlap", domain.ErrInvalidConfig, t.Prefix, t.Name, o.Prefix, o.Name)
			}
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool { return len(out[i].Prefix) > len(out[j].Prefix) })
	return &Table{targets: out}, nil
}

// Match returns the target whose prefix covers path on a segment boundary:
// "/e" matches "/e" and "/e/x" but not "/employees".
func (t *Table) Match(path string) (domain.ProxyTarget, bool) {
	for _, target := range t.targets {
		if coversPath(target.Prefix, path) {
			return target, true
		}
	}
	return domain.ProxyTarget{}, false
}

// Targets returns a copy of the table, longest prefix first.
func (t *Table) Targets() []domain.ProxyTarget {
	return append([]domain.ProxyTarget(nil), t.targets...)
}

// ParseUpstream parses an absolute http(s) base URL.
func ParseUpstream(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid upstream url %q", domain.ErrInvalidConfig, raw)
	}
	return u, nil
}

func normalizePrefix(prefix string) string {
	return "/" + strings.Trim(strings.TrimSpace(prefix), "/")
}

func coversPath(prefix, path string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func overlaps(a, b string) bool {
	return coversPath(a, b) || coversPath(b, a)
}
