package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nexerp/edge-access/internal/api/metrics"
	"github.com/nexerp/edge-access/internal/api/respond"
	"github.com/nexerp/edge-access/internal/core/domain"
)

const (
	defaultDialTimeout     = 5 * time.Second
	defaultResponseTimeout = 30 * time.Second
	defaultRequestTimeout  = 60 * time.Second
)

// ProxyConfig bounds every forwarded request.
type ProxyConfig struct {
	// DialTimeout limits connection establishment to the upstream.
	DialTimeout time.Duration
	// ResponseHeaderTimeout limits the wait for upstream response headers.
	ResponseHeaderTimeout time.Duration
	// RequestTimeout is the overall ceiling for one forwarded request.
	RequestTimeout time.Duration
	// Decorate, when set, runs on every outbound request after the URL
	// rewrite. in is the inbound request.
	Decorate func(in, out *http.Request)
}

func (c ProxyConfig) withDefaults() ProxyConfig {
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.ResponseHeaderTimeout <= 0 {
		c.ResponseHeaderTimeout = defaultResponseTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	return c
}

// Proxy forwards requests to a single upstream. Method, headers and body are
// passed through and streamed back; exactly one response is written and
// nothing is retried.
type Proxy struct {
	target   domain.ProxyTarget
	upstream *url.URL
	timeout  time.Duration
	rp       *httputil.ReverseProxy
	log      zerolog.Logger
}

type forwardStateKey struct{}

// forwardState carries the terminal state from the proxy hooks back to
// ServeHTTP.
type forwardState struct {
	path    string
	outcome domain.Outcome
}

// NewProxy builds the reverse proxy for target.
func NewProxy(target domain.ProxyTarget, cfg ProxyConfig, log zerolog.Logger) (*Proxy, error) {
	upstream, err := ParseUpstream(target.Upstream)
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	p := &Proxy{
		target:   target,
		upstream: upstream,
		timeout:  cfg.RequestTimeout,
		log:      log.With().Str("target", target.Name).Logger(),
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: cfg.DialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   cfg.DialTimeout,
	}

	p.rp = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			if target.Rewrite != domain.RewritePreserve {
				stripPrefix(pr.Out.URL, target.Prefix)
			}
			pr.SetURL(upstream)
			pr.SetXForwarded()
			if cfg.Decorate != nil {
				cfg.Decorate(pr.In, pr.Out)
			}
		},
		Transport:      otelhttp.NewTransport(transport),
		ModifyResponse: stripCORSHeaders,
		ErrorHandler:   p.fail,
	}

	return p, nil
}

// Target returns the target this proxy serves.
func (p *Proxy) Target() domain.ProxyTarget { return p.target }

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	state := &forwardState{path: r.URL.Path, outcome: domain.OutcomeCompleted}

	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, forwardStateKey{}, state)

	// ReverseProxy panics with http.ErrAbortHandler when copying the body
	// fails mid-stream; record the request before letting the panic through.
	defer func() {
		rec := recover()
		if rec != nil {
			state.outcome = domain.OutcomeAborted
		}
		metrics.GatewayUpstreamDuration.WithLabelValues(p.target.Name).Observe(time.Since(start).Seconds())
		metrics.GatewayRequestsTotal.WithLabelValues(p.target.Name, string(state.outcome)).Inc()
		if rec != nil {
			panic(rec)
		}
	}()

	p.rp.ServeHTTP(w, r.WithContext(ctx))
}

func (p *Proxy) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, outcome := http.StatusBadGateway, respond.MsgUpstreamUnavailable, domain.OutcomeUpstreamError
	if isTimeout(err) {
		status, msg, outcome = http.StatusGatewayTimeout, respond.MsgUpstreamTimeout, domain.OutcomeTimeout
	}

	path := r.URL.Path
	if state, ok := r.Context().Value(forwardStateKey{}).(*forwardState); ok {
		state.outcome = outcome
		path = state.path
	}

	p.log.Error().
		Err(err).
		Str("path", path).
		Str("method", r.Method).
		Str("outcome", string(outcome)).
		Msg("upstream request failed")

	respond.FailHTTP(w, status, msg)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// stripPrefix removes prefix from u, keeping the escaped form in sync.
func stripPrefix(u *url.URL, prefix string) {
	u.Path = ensureLeadingSlash(strings.TrimPrefix(u.Path, prefix))
	if u.RawPath != "" {
		if raw := strings.TrimPrefix(u.RawPath, prefix); raw != u.RawPath {
			u.RawPath = ensureLeadingSlash(raw)
		} else {
			u.RawPath = ""
		}
	}
}

func ensureLeadingSlash(p string) string {
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

// stripCORSHeaders drops upstream Access-Control-* headers so the gateway's
// own CORS headers are the only ones the client sees.
func stripCORSHeaders(resp *http.Response) error {
	for key := range resp.Header {
		if strings.HasPrefix(key, "Access-Control-") {
			resp.Header.Del(key)
		}
	}
	return nil
}
