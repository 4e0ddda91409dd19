package domain

// Rewrite tells the proxy what to do with the matched prefix.
type Rewrite string

const (
	// RewriteStrip removes the matched prefix before forwarding.
	RewriteStrip Rewrite = "strip"
	// RewritePreserve forwards the path unchanged.
	RewritePreserve Rewrite = "preserve"
)

// ProxyTarget maps a path prefix to an upstream base URL.
type ProxyTarget struct {
	Name     string  `validate:"required"`
	Prefix   string  `validate:"required,startswith=/"`
	Upstream string  `validate:"required,url"`
	Rewrite  Rewrite `validate:"omitempty,oneof=strip preserve"`
}

// Outcome is the terminal state of one gateway request.
type Outcome string

const (
	OutcomeCompleted     Outcome = "completed"
	OutcomeUpstreamError Outcome = "upstream_error"
	OutcomeTimeout       Outcome = "timeout"
	OutcomeAborted       Outcome = "aborted"
	OutcomeNotFound      Outcome = "not_found"
)
