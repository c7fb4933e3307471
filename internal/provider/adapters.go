// Package provider assembles the device-record provider adapters.
package provider

import (
	"github.com/rs/zerolog"

	"github.com/imeilookup/imeilookup/internal/iceq"
	"github.com/imeilookup/imeilookup/internal/lookup"
	"github.com/imeilookup/imeilookup/internal/phonecheck"
	"github.com/imeilookup/imeilookup/internal/provider/resilience"
)

// Config selects the credentials of each provider.
type Config struct {
	Phonecheck phonecheck.Config
	ICEQ       iceq.Config
}

// ConfigFromEnv reads every provider's credentials from the environment.
func ConfigFromEnv() Config {
	return Config{
		Phonecheck: phonecheck.ConfigFromEnv(),
		ICEQ:       iceq.ConfigFromEnv(),
	}
}

// Adapters builds a client for both providers. Each client reports its call
// outcomes to registry. A provider without credentials is still built so that
// its lookups fail with device.ErrNotConfigured instead of disappearing.
func Adapters(cfg Config, registry *resilience.Registry, logger zerolog.Logger) []lookup.Adapter {
	if !cfg.Phonecheck.Configured() {
		logger.Warn().Msg("phonecheck not configured - lookups will fail until credentials are set")
	}
	if !cfg.ICEQ.Configured() {
		logger.Warn().Msg("iceq not configured - lookups will fail until credentials are set")
	}

	return []lookup.Adapter{
		phonecheck.NewClient(phonecheck.ClientConfig{
			Config:   cfg.Phonecheck,
			Registry: registry,
		}),
		iceq.NewClient(iceq.ClientConfig{
			Config:   cfg.ICEQ,
			Registry: registry,
		}),
	}
}
