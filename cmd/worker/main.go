// Package main is the background worker. It drains job messages from
// Pub/Sub and serves a health endpoint for the platform.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/imeilookup/imeilookup/internal/notes"
	"github.com/imeilookup/imeilookup/internal/provider"
	"github.com/imeilookup/imeilookup/internal/provider/resilience"
	"github.com/imeilookup/imeilookup/internal/telemetry"
	"github.com/imeilookup/imeilookup/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "imeilookup-worker"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("worker exited")
	}
}

func run(log zerolog.Logger) error {
	log.Info().Str("build_time", BuildTime).Msg("starting worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.ConfigFromEnv(serviceName, Version))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(flushCtx); err != nil {
			log.Error().Err(err).Msg("failed to flush telemetry")
		}
	}()

	// The API owns the schema; the worker only reads.
	store, err := notes.Open(ctx, os.Getenv("NOTES_BACKEND"), false)
	if err != nil {
		return err
	}
	defer store.Close()
	if store.Backend == notes.BackendMemory {
		log.Warn().Msg("in-memory notes store - stats cover this process only")
	}

	probeConfig := worker.DefaultProbeConfig()
	if probeConfig.Targets, err = worker.ParseProbeTargets(os.Getenv("PROBE_TARGETS")); err != nil {
		return fmt.Errorf("invalid PROBE_TARGETS: %w", err)
	}

	registry := resilience.NewRegistry()
	probe := worker.NewProbeJob(worker.ProbeJobConfig{
		Config:   probeConfig,
		Adapters: provider.Adapters(provider.ConfigFromEnv(), registry, log),
		Logger:   log,
	})

	jobs := worker.NewJobs(worker.JobsConfig{
		Notes:  notes.NewService(notes.ServiceConfig{Repository: store, Logger: log}),
		Probe:  probe,
		Logger: log,
	})

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      healthHandler(probe, registry),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server failed")
		}
	}()

	if err := receive(ctx, jobs, log); err != nil {
		return err
	}
	<-ctx.Done()

	log.Info().Msg("shutting down worker")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
	return nil
}

// receive starts draining PUBSUB_SUBSCRIPTION in the background. Without a
// subscription the worker only serves health checks.
func receive(ctx context.Context, jobs *worker.Jobs, log zerolog.Logger) error {
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	if projectID == "" {
		projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if subscription == "" || projectID == "" {
		log.Warn().Msg("PUBSUB_SUBSCRIPTION not configured - running health server only")
		return nil
	}

	handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        projectID,
		SubscriptionName: subscription,
		Jobs:             jobs,
		Logger:           log,
	})
	if err != nil {
		return fmt.Errorf("creating pubsub handler: %w", err)
	}

	go func() {
		defer handler.Close()
		if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("pubsub handler stopped")
		}
	}()
	return nil
}

func healthHandler(probe *worker.ProbeJob, registry *resilience.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"version":   Version,
			"probe":     probe.MetricsSnapshot(),
			"providers": registry.GetAllHealth(),
		})
	})
	return mux
}
