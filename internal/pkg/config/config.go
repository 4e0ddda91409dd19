// Package config loads the gateway and service host configuration from the
// environment. A .env file in the working directory is read first when
// present; real environment variables win over it.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/nexerp/edge-access/internal/core/domain"
)

// Common holds the settings shared by both binaries.
type Common struct {
	Port          string `env:"PORT,           default=8080"`
	Env           string `env:"ENV,            default=development"`
	LogLevel      string `env:"LOG_LEVEL,      default=info"`
	LogPretty     bool   `env:"LOG_PRETTY,     default=false"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN, required"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Gateway configures cmd/gateway.
type Gateway struct {
	Common

	EmployeeURL  string `env:"EMPLOYEE_SERVICE_URL"`
	InventoryURL string `env:"INVENTORY_SERVICE_URL"`
	BillingURL   string `env:"BILLING_SERVICE_URL"`
	CRMURL       string `env:"CRM_SERVICE_URL"`

	DialTimeout     time.Duration `env:"UPSTREAM_DIAL_TIMEOUT,     default=5s"`
	ResponseTimeout time.Duration `env:"UPSTREAM_RESPONSE_TIMEOUT, default=30s"`
	RequestTimeout  time.Duration `env:"UPSTREAM_TIMEOUT,          default=60s"`
	StripPrefix     bool          `env:"STRIP_PREFIX,              default=true"`
}

// Service configures cmd/service.
type Service struct {
	Common

	Name        string        `env:"SERVICE_NAME,   required"`
	Prefix      string        `env:"SERVICE_PREFIX"`
	JWTSecret   string        `env:"JWT_SECRET,     required"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,      default=24h"`
	PolicyFile  string        `env:"POLICY_FILE"`
	UpstreamURL string        `env:"UPSTREAM_URL"`

	Mongo MongoConfig
	Redis RedisConfig
	Login LoginConfig
	Audit AuditConfig
}

// MongoConfig is optional: an empty URI disables the user and audit stores.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=edge_access"`
}

// RedisConfig is optional: an empty address disables the login throttle.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,      default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT, default=5s"`
}

type LoginConfig struct {
	Enabled     bool          `env:"LOGIN_ENABLED,      default=false"`
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Window      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=2"`
	Buffer  int `env:"AUDIT_BUFFER,  default=1024"`
}

// LoadGateway reads the gateway configuration and builds its target list.
func LoadGateway(ctx context.Context) (*Gateway, error) {
	return LoadGatewayFrom(ctx, envconfig.OsLookuper())
}

// LoadGatewayFrom is LoadGateway with an explicit lookuper, for tests.
func LoadGatewayFrom(ctx context.Context, l envconfig.Lookuper) (*Gateway, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	var cfg Gateway
	if err := process(ctx, &cfg, l); err != nil {
		return nil, err
	}
	if len(cfg.Targets()) == 0 {
		return nil, fmt.Errorf("%w: at least one of EMPLOYEE_SERVICE_URL, INVENTORY_SERVICE_URL, BILLING_SERVICE_URL, CRM_SERVICE_URL is required", domain.ErrInvalidConfig)
	}
	return &cfg, nil
}

// Targets returns the enabled proxy targets. An empty URL disables its target.
func (g *Gateway) Targets() []domain.ProxyTarget {
	rewrite := domain.RewriteStrip
	if !g.StripPrefix {
		rewrite = domain.RewritePreserve
	}

	all := []domain.ProxyTarget{
		{Name: "employee", Prefix: "/e", Upstream: g.EmployeeURL},
		{Name: "inventory", Prefix: "/i", Upstream: g.InventoryURL},
		{Name: "billing", Prefix: "/b", Upstream: g.BillingURL},
		{Name: "crm", Prefix: "/c", Upstream: g.CRMURL},
	}

	out := make([]domain.ProxyTarget, 0, len(all))
	for _, t := range all {
		if t.Upstream == "" {
			continue
		}
		t.Rewrite = rewrite
		out = append(out, t)
	}
	return out
}

// LoadService reads the service host configuration.
func LoadService(ctx context.Context) (*Service, error) {
	return LoadServiceFrom(ctx, envconfig.OsLookuper())
}

// LoadServiceFrom is LoadService with an explicit lookuper, for tests.
func LoadServiceFrom(ctx context.Context, l envconfig.Lookuper) (*Service, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	var cfg Service
	if err := process(ctx, &cfg, l); err != nil {
		return nil, err
	}
	if cfg.PolicyFile != "" && cfg.UpstreamURL == "" {
		return nil, fmt.Errorf("%w: POLICY_FILE requires UPSTREAM_URL", domain.ErrInvalidConfig)
	}
	if cfg.Login.Enabled && cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("%w: LOGIN_ENABLED requires MONGO_URI", domain.ErrInvalidConfig)
	}
	return &cfg, nil
}

func process(ctx context.Context, target any, l envconfig.Lookuper) error {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: target, Lookuper: l}); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// loadDotEnv loads .env without overriding variables already set.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: read .env: %w", err)
	}
	return nil
}
