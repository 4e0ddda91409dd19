package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexerp/edge-access/internal/api"
	"github.com/nexerp/edge-access/internal/api/handler"
	"github.com/nexerp/edge-access/internal/api/middleware"
	"github.com/nexerp/edge-access/internal/core/domain"
	"github.com/nexerp/edge-access/internal/core/ports"
	"github.com/nexerp/edge-access/internal/core/service"
	"github.com/nexerp/edge-access/internal/gateway"
	"github.com/nexerp/edge-access/internal/infrastructure/audit"
	"github.com/nexerp/edge-access/internal/infrastructure/db/mongo"
	"github.com/nexerp/edge-access/internal/infrastructure/db/redis"
	"github.com/nexerp/edge-access/internal/infrastructure/telemetry"
	"github.com/nexerp/edge-access/internal/pkg/config"
	"github.com/nexerp/edge-access/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadService(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: cfg.Name})

	codec, err := service.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid token configuration")
	}

	tracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: cfg.Name,
		Environment: cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
	}, log)
	if err != nil {
		log.Warn().Err(err).Msg("tracing unavailable")
	}

	var policies []domain.RoutePolicy
	if cfg.PolicyFile != "" {
		policies, err = config.LoadPolicies(cfg.PolicyFile)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid policy file")
		}
		log.Info().Int("routes", len(policies)).Str("file", cfg.PolicyFile).Msg("route policies loaded")
	}

	readiness := make(map[string]handler.Check)

	// --- Audit pipeline ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := audit.NewDispatcher(cfg.Audit.Workers, cfg.Audit.Buffer, cfg.Name, log)
	dispatcher.AddWriter("log", audit.NewLogSink(log))

	// --- MongoDB (optional) ---
	var users ports.UserRepository
	if cfg.Mongo.URI != "" {
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Tracing:  cfg.OTLPEndpoint != "",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo unavailable")
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		readiness["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }

		auditRepo := mongo.NewAuditRepository(db)
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to ensure audit indexes")
		}
		dispatcher.AddWriter("mongo", auditRepo)

		userRepo := mongo.NewUserRepository(db)
		if err := userRepo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to ensure user indexes")
		}
		users = userRepo
	}

	// --- Redis (optional) ---
	var throttle ports.LoginThrottle
	if cfg.Redis.Addr != "" {
		redisCfg := redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		}
		rdb, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("redis unavailable")
		}
		defer rdb.Close()
		readiness["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, rdb, redisCfg.Timeout) }
		throttle = redis.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)
	}

	dispatcher.Start(workerCtx)

	var authService ports.AuthService
	if cfg.Login.Enabled {
		authService = service.NewAuthService(users, codec, throttle, log)
		log.Info().Bool("throttle", throttle != nil).Msg("login enabled")
	}

	e, err := api.NewServiceRouter(api.ServiceDeps{
		Name:      cfg.Name,
		Prefix:    cfg.Prefix,
		CORS:      middleware.CORSConfig{AllowedOrigin: cfg.AllowedOrigin},
		Verifier:  codec,
		Audit:     dispatcher,
		Policies:  policies,
		Upstream:  cfg.UpstreamURL,
		Proxy:     gateway.ProxyConfig{},
		Auth:      authService,
		Readiness: readiness,
		Log:       log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	stopWorkers()
	dispatcher.Wait()

	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown failed")
	}
}
