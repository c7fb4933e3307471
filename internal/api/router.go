// Package api provides the HTTP API for the IMEI lookup service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/imeilookup/imeilookup/internal/api/handler"
	"github.com/imeilookup/imeilookup/internal/api/middleware"
	"github.com/imeilookup/imeilookup/internal/lookup"
	"github.com/imeilookup/imeilookup/internal/notes"
	"github.com/imeilookup/imeilookup/internal/provider/resilience"
	"github.com/imeilookup/imeilookup/internal/recent"
	"github.com/imeilookup/imeilookup/internal/station"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version       string
	BuildTime     string
	Logger        zerolog.Logger
	ServiceName   string
	Metrics       *middleware.Metrics
	LookupService *lookup.Service
	RecentService *recent.Service
	NotesService  *notes.Service

	// StationTokens enables signed station tokens. May be nil.
	StationTokens *station.TokenService

	// Registry and ReadinessChecks feed the ops endpoints.
	Registry        *resilience.Registry
	ReadinessChecks map[string]handler.CheckFunc

	// RequireTLS rejects plain-HTTP requests forwarded by the load balancer.
	RequireTLS bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "imeilookup-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID) // Generate/propagate request ID first
	r.Use(middleware.Tracing()) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON) // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Service:   serviceName,
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Registry:  cfg.Registry,
		Checks:    cfg.ReadinessChecks,
	})
	lookupHandler := handler.NewLookupHandler(cfg.LookupService, cfg.RecentService, cfg.Logger)
	notesHandler := handler.NewNotesHandler(cfg.NotesService)
	stationHandler := handler.NewStationHandler(cfg.StationTokens, cfg.Logger)

	// Resolve the station from a token or X-Station-* headers
	var tokens middleware.TokenValidator
	if cfg.StationTokens != nil {
		tokens = cfg.StationTokens
	}
	stationMiddleware := middleware.Station(tokens)

	tokenRateLimit := middleware.RateLimitByIP(middleware.TokenRateLimit)            // 10 req/min
	lookupRateLimit := middleware.RateLimitByStation(middleware.LookupRateLimit)     // 30 req/min
	standardRateLimit := middleware.RateLimitByStation(middleware.StandardRateLimit) // 100 req/min
	recentRateLimit := middleware.RateLimitByStation(middleware.StandardRateLimit.WithFailEnvelope())

	// Ops endpoints (public)
	r.Route("/v1/ops", func(r chi.Router) {
		r.Get("/health", opsHandler.HealthCheck)
		r.Get("/ready", opsHandler.ReadinessCheck)
		r.Get("/status", opsHandler.SystemStatus)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireJSON)
		r.Use(stationMiddleware)

		// Station identity
		r.Route("/station", func(r chi.Router) {
			r.Get("/", stationHandler.GetStation)
			r.With(tokenRateLimit).Post("/token", stationHandler.IssueToken)
		})

		// Notes, keyed by the same provider and identifier as lookups
		r.Route("/notes", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", notesHandler.ListNotes)
			r.Get("/search", notesHandler.SearchNotes)
			r.Get("/stats", notesHandler.Stats)
			r.Route("/{provider}/{imei}", func(r chi.Router) {
				r.Get("/", notesHandler.GetNote)
				r.Put("/", notesHandler.SaveNote)
				r.Get("/history", notesHandler.GetHistory)
				r.Get("/details", notesHandler.GetDetails)
			})
		})

		// Provider lookups - billed upstream, strict rate limiting
		r.Route("/{provider}", func(r chi.Router) {
			r.With(lookupRateLimit).Post("/", lookupHandler.Lookup)
			r.With(recentRateLimit).Get("/recent", lookupHandler.ListRecent)
			r.With(recentRateLimit).Delete("/recent", lookupHandler.ClearRecent)
		})
	})

	return r
}
