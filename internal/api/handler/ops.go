// Package handler provides HTTP handlers for the IMEI lookup API.
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/imeilookup/imeilookup/internal/api/models"
	"github.com/imeilookup/imeilookup/internal/api/response"
	"github.com/imeilookup/imeilookup/internal/provider/resilience"
)

// readinessTimeout bounds each subsystem check.
const readinessTimeout = 2 * time.Second

// CheckFunc reports whether a subsystem is reachable.
type CheckFunc func(ctx context.Context) error

// OpsConfig holds configuration for the ops handler.
type OpsConfig struct {
	Service   string
	Version   string
	BuildTime string

	// Registry supplies provider circuit health. May be nil.
	Registry *resilience.Registry

	// Checks are the subsystems the service needs to be ready, by name.
	Checks map[string]CheckFunc
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	service   string
	version   string
	buildTime string
	registry  *resilience.Registry
	checks    map[string]CheckFunc
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{
		service:   cfg.Service,
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		registry:  cfg.Registry,
		checks:    cfg.Checks,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Service:   h.service,
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(time.Now()),
		Version:   h.version,
		BuildTime: h.buildTime,
	})
}

// ReadinessCheck handles GET /v1/ops/ready. It fails with 503 when any
// configured store is unreachable; provider circuits do not affect it.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status:  models.HealthStatusOK,
		Time:    models.Timestamp(time.Now()),
		Version: h.version,
	}
	for _, s := range h.checkSubsystems(r.Context()) {
		if s.Status != models.HealthStatusOK {
			health.Failing = append(health.Failing, s.Name)
		}
	}

	if len(health.Failing) > 0 {
		health.Status = models.HealthStatusFail
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Version:    h.version,
		Subsystems: h.checkSubsystems(r.Context()),
		Providers:  h.providerStatuses(),
	}

	for _, s := range status.Subsystems {
		if s.Status != models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
		}
	}
	for _, p := range status.Providers {
		if p.Status != models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
			status.DegradedProviders = append(status.DegradedProviders, p.Provider)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) checkSubsystems(ctx context.Context) []models.SubsystemStatus {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	subsystems := make([]models.SubsystemStatus, 0, len(names))
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, readinessTimeout)
		err := h.checks[name](checkCtx)
		cancel()

		s := models.SubsystemStatus{Name: name, Status: models.HealthStatusOK}
		if err != nil {
			detail := err.Error()
			s.Status = models.HealthStatusFail
			s.Detail = &detail
		}
		subsystems = append(subsystems, s)
	}
	return subsystems
}

func (h *OpsHandler) providerStatuses() []models.ProviderStatus {
	if h.registry == nil {
		return []models.ProviderStatus{}
	}

	all := h.registry.GetAllHealth()
	providers := make([]models.ProviderStatus, 0, len(all))
	for _, p := range all {
		ps := models.ProviderStatus{
			Provider:            p.Name,
			Status:              models.HealthStatusOK,
			Circuit:             p.State,
			Requests:            p.Counts.Requests,
			ConsecutiveFailures: p.Counts.ConsecutiveFailures,
			LastSuccessAt:       timestampOf(p.LastSuccessAt),
			LastFailureAt:       timestampOf(p.LastFailureAt),
			StateChangedAt:      timestampOf(p.StateChangedAt),
		}
		switch {
		case p.IsUnhealthy():
			ps.Status = models.HealthStatusFail
		case p.IsDegraded():
			ps.Status = models.HealthStatusDegraded
		}
		if p.LastError != "" {
			msg := p.LastError
			ps.Message = &msg
		}
		providers = append(providers, ps)
	}
	return providers
}

func timestampOf(t *time.Time) *models.Timestamp {
	if t == nil {
		return nil
	}
	return models.NewTimestamp(*t)
}
