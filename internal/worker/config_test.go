package worker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imeilookup/imeilookup/internal/device"
	"github.com/imeilookup/imeilookup/internal/worker"
)

func TestDefaultProbeConfig(t *testing.T) {
	cfg := worker.DefaultProbeConfig()

	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.Targets)
}

func TestParseProbeTargets(t *testing.T) {
	targets, err := worker.ParseProbeTargets(" iceq:356938035643809 , phonecheck:F2LXK1ABHG7F,")
	require.NoError(t, err)

	assert.Equal(t, []worker.ProbeTarget{
		{Provider: device.ProviderICEQ, Identifier: "356938035643809"},
		{Provider: device.ProviderPhonecheck, Identifier: "F2LXK1ABHG7F"},
	}, targets)
}

func TestParseProbeTargets_Empty(t *testing.T) {
	targets, err := worker.ParseProbeTargets("")
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestParseProbeTargets_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "missing identifier", in: "iceq:"},
		{name: "missing separator", in: "iceq"},
		{name: "unknown provider", in: "checkmend:356938035643809"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := worker.ParseProbeTargets(tt.in)
			assert.Error(t, err)
		})
	}

	_, err := worker.ParseProbeTargets("checkmend:1")
	assert.ErrorIs(t, err, device.ErrUnknownProvider)
}
