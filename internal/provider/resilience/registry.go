package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ProviderHealth is a point-in-time view of one provider.
type ProviderHealth struct {
	Name string `json:"name"`

	// State is CircuitState rendered as "closed", "half-open" or "open".
	State        string           `json:"state"`
	CircuitState gobreaker.State  `json:"-"`
	Counts       gobreaker.Counts `json:"counts"`

	LastSuccessAt  *time.Time `json:"lastSuccessAt,omitempty"`
	LastFailureAt  *time.Time `json:"lastFailureAt,omitempty"`
	StateChangedAt *time.Time `json:"stateChangedAt,omitempty"`

	// LastError is the most recent failure message, if any.
	LastError string `json:"lastError,omitempty"`
}

// IsHealthy reports whether the circuit is closed.
func (h *ProviderHealth) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// IsDegraded reports whether the circuit is half-open.
func (h *ProviderHealth) IsDegraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// IsUnhealthy reports whether the circuit is open.
func (h *ProviderHealth) IsUnhealthy() bool {
	return h.CircuitState == gobreaker.StateOpen
}

// Registry tracks provider clients and the outcome of their calls.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*registeredProvider
	now       func() time.Time
}

type registeredProvider struct {
	client         *Client
	lastSuccessAt  *time.Time
	lastFailureAt  *time.Time
	stateChangedAt *time.Time
	lastError      string
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]*registeredProvider),
		now:       time.Now,
	}
}

// Register adds a provider client, replacing any client of the same name.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = &registeredProvider{client: client}
}

// RecordSuccess records a successful call.
func (r *Registry) RecordSuccess(name string) {
	r.update(name, func(p *registeredProvider, now time.Time) {
		p.lastSuccessAt = &now
	})
}

// RecordFailure records a failed call and its error.
func (r *Registry) RecordFailure(name string, err error) {
	r.update(name, func(p *registeredProvider, now time.Time) {
		p.lastFailureAt = &now
		if err != nil {
			p.lastError = err.Error()
		}
	})
}

// RecordStateChange records when the provider's circuit last changed state.
func (r *Registry) RecordStateChange(name string) {
	r.update(name, func(p *registeredProvider, now time.Time) {
		p.stateChangedAt = &now
	})
}

func (r *Registry) update(name string, fn func(p *registeredProvider, now time.Time)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		fn(p, r.now())
	}
}

// GetHealth returns the health of one provider, or nil if it is unknown.
func (r *Registry) GetHealth(name string) *ProviderHealth {
	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return r.health(name, p)
}

// GetAllHealth returns the health of every provider, ordered by name.
func (r *Registry) GetAllHealth() []*ProviderHealth {
	r.mu.RLock()
	providers := make(map[string]*registeredProvider, len(r.providers))
	for name, p := range r.providers {
		providers[name] = p
	}
	r.mu.RUnlock()

	health := make([]*ProviderHealth, 0, len(providers))
	for name, p := range providers {
		health = append(health, r.health(name, p))
	}

	sort.Slice(health, func(i, j int) bool { return health[i].Name < health[j].Name })
	return health
}

// ProviderCount returns the number of registered providers.
func (r *Registry) ProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// health reads the breaker before taking the lock: reading an expired open
// breaker moves it to half-open, which calls back into RecordStateChange.
func (r *Registry) health(name string, p *registeredProvider) *ProviderHealth {
	state := p.client.State()
	counts := p.client.Counts()

	r.mu.RLock()
	defer r.mu.RUnlock()
	return &ProviderHealth{
		Name:           name,
		State:          state.String(),
		CircuitState:   state,
		Counts:         counts,
		LastSuccessAt:  p.lastSuccessAt,
		LastFailureAt:  p.lastFailureAt,
		StateChangedAt: p.stateChangedAt,
		LastError:      p.lastError,
	}
}
