// Package worker provides background job processing for the lookup service.
package worker

import (
	"fmt"
	"strings"
	"time"

	"github.com/imeilookup/imeilookup/internal/device"
)

// ProbeTarget is a known identifier looked up against one provider to
// verify connectivity.
type ProbeTarget struct {
	Provider   device.Provider
	Identifier string
}

// ProbeConfig holds configuration for the provider probe job.
type ProbeConfig struct {
	// Targets are the identifiers to probe.
	Targets []ProbeTarget

	// Concurrency is the number of probes in flight.
	// Default: 2
	Concurrency int

	// Timeout bounds each probe.
	// Default: 15 seconds
	Timeout time.Duration
}

// DefaultProbeConfig returns the default probe configuration with no targets.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Concurrency: 2,
		Timeout:     15 * time.Second,
	}
}

// ParseProbeTargets parses a comma separated list of provider:identifier
// pairs, e.g. "iceq:356938035643809,phonecheck:F2LXK1ABHG7F".
func ParseProbeTargets(s string) ([]ProbeTarget, error) {
	var targets []ProbeTarget
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, id, ok := strings.Cut(part, ":")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid probe target %q", part)
		}
		provider, ok := device.ParseProvider(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("invalid probe target %q: %w", part, device.ErrUnknownProvider)
		}

		targets = append(targets, ProbeTarget{Provider: provider, Identifier: strings.TrimSpace(id)})
	}
	return targets, nil
}

func (c ProbeConfig) withDefaults() ProbeConfig {
	def := DefaultProbeConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}
