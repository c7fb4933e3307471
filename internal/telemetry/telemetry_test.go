package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/imeilookup/imeilookup/internal/telemetry"
)

func TestInit_DisabledInstallsPropagatorOnly(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "imeilookup-api",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		Endpoint:       "localhost:4317",
	})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestProvider_ShutdownZeroValue(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
		"OTEL_TRACES_SAMPLE_RATIO", "OTEL_METRIC_EXPORT_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := telemetry.ConfigFromEnv("imeilookup-worker", "dev")

	assert.Equal(t, telemetry.Config{
		ServiceName:    "imeilookup-worker",
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRatio:    1,
		MetricInterval: 15 * time.Second,
	}, cfg)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "false")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "0.25")
	t.Setenv("OTEL_METRIC_EXPORT_INTERVAL", "60000")

	cfg := telemetry.ConfigFromEnv("imeilookup-api", "1.2.0")

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "collector:4317", cfg.Endpoint)
	assert.True(t, cfg.Enabled)
	assert.False(t, cfg.Insecure)
	assert.InDelta(t, 0.25, cfg.SampleRatio, 1e-9)
	assert.Equal(t, time.Minute, cfg.MetricInterval)
}

func TestConfigFromEnv_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "lots")
	t.Setenv("OTEL_METRIC_EXPORT_INTERVAL", "soon")
	cfg := telemetry.ConfigFromEnv("svc", "dev")
	assert.InDelta(t, 1.0, cfg.SampleRatio, 1e-9)
	assert.Equal(t, 15*time.Second, cfg.MetricInterval)

	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "-1")
	t.Setenv("OTEL_METRIC_EXPORT_INTERVAL", "0")
	cfg = telemetry.ConfigFromEnv("svc", "dev")
	assert.InDelta(t, 1.0, cfg.SampleRatio, 1e-9)
	assert.Equal(t, 15*time.Second, cfg.MetricInterval)
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), telemetry.Sampler(1).Description())
	assert.Contains(t, telemetry.Sampler(0.1).Description(), "ParentBased")
	assert.Contains(t, telemetry.Sampler(0.1).Description(), "TraceIDRatioBased{0.1}")
}
