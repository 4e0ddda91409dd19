package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/nexerp/edge-access/internal/api/handler"
	"github.com/nexerp/edge-access/internal/api/middleware"
	"github.com/nexerp/edge-access/internal/core/domain"
	"github.com/nexerp/edge-access/internal/core/ports"
	"github.com/nexerp/edge-access/internal/gateway"
)

// GatewayDeps are the collaborators of the edge gateway router.
type GatewayDeps struct {
	CORS    middleware.CORSConfig
	Proxies http.Handler
	Log     zerolog.Logger
}

// NewGatewayRouter builds the gateway: local probes and metrics, everything
// else dispatched through the routing table.
func NewGatewayRouter(d GatewayDeps) (*echo.Echo, error) {
	e, err := newBase("gateway", d.CORS, d.Log)
	if err != nil {
		return nil, err
	}

	e.Any("/*", echo.WrapHandler(d.Proxies))
	return e, nil
}

// ServiceDeps are the collaborators of a service host router.
type ServiceDeps struct {
	Name   string
	Prefix string
	CORS   middleware.CORSConfig

	Verifier ports.TokenVerifier
	Audit    ports.AuditSink

	// Policies are mounted behind Guard and forwarded to Upstream.
	Policies []domain.RoutePolicy
	Upstream string
	Proxy    gateway.ProxyConfig

	// Auth enables the login routes when non-nil.
	Auth      ports.AuthService
	Readiness map[string]handler.Check

	Log zerolog.Logger
}

// NewServiceRouter builds a service host. Only paths declared by a policy
// or by the host itself are served; anything else is 404.
func NewServiceRouter(d ServiceDeps) (*echo.Echo, error) {
	e, err := newBase(d.Name, d.CORS, d.Log)
	if err != nil {
		return nil, err
	}

	readiness := handler.NewReadinessHandler(d.Readiness)
	e.GET("/health/ready", readiness.Readiness)

	g := e.Group(strings.TrimSuffix(d.Prefix, "/"))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	authenticate := middleware.Authenticate(d.Verifier)
	g.GET("/auth/me", authHandler.Me, authenticate)
	if d.Auth != nil {
		g.POST("/auth/login", authHandler.Login)
		g.POST("/auth/users", authHandler.CreateUser, authenticate, middleware.RequireRole(domain.RoleAdmin, domain.RoleHR))
	}

	// --- Policy routes ---
	if len(d.Policies) > 0 {
		if err := domain.CheckPolicies(d.Policies); err != nil {
			return nil, err
		}
		cfg := d.Proxy
		cfg.Decorate = middleware.ForwardPrincipal
		proxy, err := gateway.NewProxy(domain.ProxyTarget{
			Name:     d.Name,
			Upstream: d.Upstream,
			Rewrite:  domain.RewritePreserve,
		}, cfg, d.Log)
		if err != nil {
			return nil, err
		}
		forward := echo.WrapHandler(proxy)

		for _, p := range d.Policies {
			chain := middleware.Guard(d.Verifier, d.Audit, p)
			if p.Method == "ANY" {
				g.Any(p.Path, forward, chain...)
				continue
			}
			g.Add(p.Method, p.Path, forward, chain...)
		}
	}

	return e, nil
}

// newBase wires what both routers share: recovery, request ids, access logs,
// the CORS guard, /health and /metrics.
func newBase(service string, cors middleware.CORSConfig, log zerolog.Logger) (*echo.Echo, error) {
	corsGuard, err := middleware.CORS(cors)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// Routing and forwarding must see the same path.
	e.Pre(middleware.CanonicalPath())

	// Each router gets its own registry for request metrics so several can
	// coexist in one process.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			c.Request().Header.Set(echo.HeaderXRequestID, id)
		},
	}))
	e.Use(middleware.RequestLogger(log))
	e.Use(corsGuard)
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:                 "edge",
		Subsystem:                 "http",
		Registerer:                reg,
		DoNotUseRequestPathFor404: true,
	}))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler(service)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))

	return e, nil
}
