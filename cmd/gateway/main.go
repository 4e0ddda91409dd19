package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexerp/edge-access/internal/api"
	"github.com/nexerp/edge-access/internal/api/middleware"
	"github.com/nexerp/edge-access/internal/gateway"
	"github.com/nexerp/edge-access/internal/infrastructure/telemetry"
	"github.com/nexerp/edge-access/internal/pkg/config"
	"github.com/nexerp/edge-access/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadGateway(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: "gateway"})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "gateway"})

	tracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "gateway",
		Environment: cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
	}, log)
	if err != nil {
		log.Warn().Err(err).Msg("tracing unavailable")
	}

	table, err := gateway.NewTable(cfg.Targets())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid routing table")
	}
	for _, t := range table.Targets() {
		log.Info().Str("target", t.Name).Str("prefix", t.Prefix).Str("upstream", t.Upstream).Str("rewrite", string(t.Rewrite)).Msg("route")
	}

	proxies, err := gateway.NewHandler(table, gateway.ProxyConfig{
		DialTimeout:           cfg.DialTimeout,
		ResponseHeaderTimeout: cfg.ResponseTimeout,
		RequestTimeout:        cfg.RequestTimeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build proxies")
	}

	e, err := api.NewGatewayRouter(api.GatewayDeps{
		CORS:    middleware.CORSConfig{AllowedOrigin: cfg.AllowedOrigin},
		Proxies: proxies,
		Log:     log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("gateway listening")
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
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown failed")
	}
}
