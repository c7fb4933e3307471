// Package main is the IMEI lookup API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/imeilookup/imeilookup/internal/api"
	"github.com/imeilookup/imeilookup/internal/api/handler"
	"github.com/imeilookup/imeilookup/internal/api/middleware"
	"github.com/imeilookup/imeilookup/internal/lookup"
	"github.com/imeilookup/imeilookup/internal/notes"
	"github.com/imeilookup/imeilookup/internal/provider"
	"github.com/imeilookup/imeilookup/internal/provider/resilience"
	"github.com/imeilookup/imeilookup/internal/recent"
	"github.com/imeilookup/imeilookup/internal/station"
	"github.com/imeilookup/imeilookup/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "imeilookup-api"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("api exited")
	}
}

func run(log zerolog.Logger) error {
	log.Info().Str("build_time", BuildTime).Msg("starting IMEI lookup API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelConfig := telemetry.ConfigFromEnv(serviceName, Version)
	tp, err := telemetry.Init(ctx, otelConfig)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer shutdownTelemetry(tp, log)
	if tp.Enabled() {
		log.Info().
			Str("otlp_endpoint", otelConfig.Endpoint).
			Str("environment", otelConfig.Environment).
			Float64("sample_ratio", otelConfig.SampleRatio).
			Msg("telemetry exporting")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		return fmt.Errorf("creating http metrics: %w", err)
	}
	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		return fmt.Errorf("creating provider metrics: %w", err)
	}

	checks := make(map[string]handler.CheckFunc)

	store, err := notes.Open(ctx, envOr("NOTES_BACKEND", notes.BackendMemory), true)
	if err != nil {
		return err
	}
	defer store.Close()
	if store.Ping != nil {
		checks["database"] = store.Ping
	}
	if store.Backend == notes.BackendMemory {
		log.Warn().Msg("notes are kept in memory and lost on restart")
	}
	log.Info().Str("backend", store.Backend).Msg("notes store ready")

	recentRepo, closeRecent := openRecentRepository(checks, log)
	defer closeRecent()
	recentService := recent.NewService(recent.ServiceConfig{Repository: recentRepo, Logger: log})

	registry := resilience.NewRegistry()
	lookupService := lookup.NewService(lookup.ServiceConfig{
		Adapters: provider.Adapters(provider.ConfigFromEnv(), registry, log),
		Recent:   recentService,
		Metrics:  providerMetrics,
		Logger:   log,
	})
	log.Info().Int("providers", registry.ProviderCount()).Msg("lookup providers configured")

	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         httpMetrics,
		LookupService:   lookupService,
		RecentService:   recentService,
		NotesService:    notes.NewService(notes.ServiceConfig{Repository: store, Logger: log}),
		StationTokens:   stationTokens(log),
		Registry:        registry,
		ReadinessChecks: checks,
		RequireTLS:      os.Getenv("REQUIRE_TLS") == "true",
	})

	server := &http.Server{
		Addr:         ":" + envOr("APP_PORT", "8080"),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second, // provider calls retry within the request
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// openRecentRepository uses Redis when REDIS_ADDR is set, registering its
// readiness check.
func openRecentRepository(checks map[string]handler.CheckFunc, log zerolog.Logger) (recent.Repository, func()) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return recent.NewInMemoryRepository(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	checks["redis"] = func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
	log.Info().Str("addr", addr).Msg("recent lookups stored in redis")
	return recent.NewRedisRepository(rdb), func() { _ = rdb.Close() }
}

// stationTokens returns nil when STATION_SIGNING_KEY is unset, which leaves
// stations identified by header only.
func stationTokens(log zerolog.Logger) *station.TokenService {
	key := os.Getenv("STATION_SIGNING_KEY")
	if key == "" {
		log.Warn().Msg("STATION_SIGNING_KEY not set - station tokens disabled")
		return nil
	}
	return station.NewTokenService(station.TokenConfig{SigningKey: key, Issuer: serviceName})
}

func shutdownTelemetry(tp *telemetry.Provider, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to flush telemetry")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
