package models

// Health is the body of the liveness and readiness probes.
type Health struct {
	Service   string       `json:"service,omitempty"`
	Status    HealthStatus `json:"status"`
	Time      Timestamp    `json:"time"`
	Version   string       `json:"version,omitempty"`
	BuildTime string       `json:"buildTime,omitempty"`

	// Failing names the subsystems that failed a readiness check.
	Failing []string `json:"failing,omitempty"`
}

// SystemStatus aggregates subsystem checks and provider circuits.
type SystemStatus struct {
	Status     HealthStatus      `json:"status"`
	Time       Timestamp         `json:"time"`
	Version    string            `json:"version,omitempty"`
	Subsystems []SubsystemStatus `json:"subsystems"`
	Providers  []ProviderStatus  `json:"providers"`

	// DegradedProviders lists providers whose circuit is not closed.
	DegradedProviders []string `json:"degradedProviders,omitempty"`
}

// SubsystemStatus is the outcome of one readiness check.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus reports a lookup provider's circuit and recent outcomes.
type ProviderStatus struct {
	Provider string       `json:"provider"`
	Status   HealthStatus `json:"status"`

	// Circuit is "closed", "half-open" or "open".
	Circuit             string `json:"circuit"`
	Requests            uint32 `json:"requests"`
	ConsecutiveFailures uint32 `json:"consecutiveFailures"`

	LastSuccessAt  *Timestamp `json:"lastSuccessAt,omitempty"`
	LastFailureAt  *Timestamp `json:"lastFailureAt,omitempty"`
	StateChangedAt *Timestamp `json:"stateChangedAt,omitempty"`
	Message        *string    `json:"message,omitempty"`
}
