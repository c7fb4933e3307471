// Package lookup runs a device lookup against a provider and derives the display fields.
package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/imeilookup/imeilookup/internal/device"
	"github.com/imeilookup/imeilookup/internal/recent"
)

// Adapter is a provider client able to fetch and normalize device records.
type Adapter interface {
	Provider() device.Provider
	FetchRaw(ctx context.Context, id string) (device.Payload, error)
	Normalize(payload device.Payload) device.Data
}

// MetricsRecorder receives the outcome of every provider call.
type MetricsRecorder interface {
	RecordRequest(ctx context.Context, provider string, duration time.Duration, err error)
	RecordOutcome(ctx context.Context, provider, inputType string, found bool)
}

// Result is the outcome of a successful lookup.
type Result struct {
	Provider device.Provider  `json:"provider"`
	Input    string           `json:"input"`
	Kind     device.InputType `json:"inputType"`
	Found    bool             `json:"found"`
	Data     device.Data      `json:"data"`
	Display  device.Display   `json:"display"`
}

// ServiceConfig holds configuration for the lookup service.
type ServiceConfig struct {
	Adapters []Adapter
	Recent   *recent.Service
	Metrics  MetricsRecorder
	Logger   zerolog.Logger
}

// Service dispatches lookups to the configured adapters.
type Service struct {
	adapters map[device.Provider]Adapter
	recent   *recent.Service
	metrics  MetricsRecorder
	logger   zerolog.Logger
}

// NewService creates a new lookup service.
func NewService(cfg ServiceConfig) *Service {
	adapters := make(map[device.Provider]Adapter, len(cfg.Adapters))
	for _, a := range cfg.Adapters {
		adapters[a.Provider()] = a
	}
	return &Service{
		adapters: adapters,
		recent:   cfg.Recent,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
}

// Supports reports whether an adapter is registered for the provider.
func (s *Service) Supports(provider device.Provider) bool {
	_, ok := s.adapters[provider]
	return ok
}

// Lookup validates the identifier, queries the provider, normalizes the answer
// and records it in the recency list.
func (s *Service) Lookup(ctx context.Context, provider device.Provider, input string) (*Result, error) {
	adapter, ok := s.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", device.ErrUnknownProvider, provider)
	}

	id, kind, err := device.ValidateInput(input)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	payload, err := adapter.FetchRaw(ctx, id)
	if s.metrics != nil {
		s.metrics.RecordRequest(ctx, provider.String(), time.Since(start), err)
	}
	if err != nil {
		s.logger.Warn().Err(err).
			Str("provider", provider.String()).
			Str("input_type", string(kind)).
			Msg("device lookup failed")
		return nil, err
	}

	data := adapter.Normalize(payload)
	result := &Result{
		Provider: provider,
		Input:    id,
		Kind:     kind,
		Found:    !payload.IsEmpty() && !data.IsEmpty(),
		Data:     data,
		Display:  device.Derive(data, provider),
	}

	if s.metrics != nil {
		s.metrics.RecordOutcome(ctx, provider.String(), string(kind), result.Found)
	}
	if result.Found && s.recent != nil {
		s.recent.Record(ctx, provider, id, data)
	}

	s.logger.Debug().
		Str("provider", provider.String()).
		Str("input_type", string(kind)).
		Bool("found", result.Found).
		Dur("duration", time.Since(start)).
		Msg("device lookup completed")

	return result, nil
}
