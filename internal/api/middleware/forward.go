package middleware

import (
	"net/http"
	"strings"
)

// Principal headers set on requests forwarded to a business upstream.
const (
	HeaderPrincipalID     = "X-Principal-Id"
	HeaderPrincipalRole   = "X-Principal-Role"
	HeaderPrincipalJob    = "X-Principal-Job"
	HeaderPrincipalBranch = "X-Principal-Branch"

	principalHeaderPrefix = "X-Principal-"
)

// ForwardPrincipal replaces any client-supplied X-Principal-* headers on out
// with values taken from the principal verified on in. Without a verified
// principal out carries none of them.
func ForwardPrincipal(in, out *http.Request) {
	for key := range out.Header {
		if strings.HasPrefix(http.CanonicalHeaderKey(key), principalHeaderPrefix) {
			out.Header.Del(key)
		}
	}

	p, ok := PrincipalFrom(in.Context())
	if !ok {
		return
	}
	out.Header.Set(HeaderPrincipalID, p.UserID)
	out.Header.Set(HeaderPrincipalRole, string(p.Role))
	if p.HasJob() {
		out.Header.Set(HeaderPrincipalJob, string(p.EmployeeJob))
	}
	if p.BranchID != "" {
		out.Header.Set(HeaderPrincipalBranch, p.BranchID)
	}
}
