package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/imeilookup/imeilookup/internal/api/middleware"

// unmatchedRoute labels requests no route matched.
const unmatchedRoute = "unmatched"

// Metrics holds the HTTP server instruments.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestsInFlight metric.Int64UpDownCounter
	responseSize     metric.Int64Histogram
}

// NewMetrics creates HTTP server instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithMeter(otel.Meter(meterName))
}

// NewMetricsWithMeter creates HTTP server instruments on meter.
func NewMetricsWithMeter(meter metric.Meter) (*Metrics, error) {
	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestsInFlight, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of HTTP requests being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"http.server.response.body.size",
		metric.WithDescription("Size of HTTP response bodies"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration:  requestDuration,
		requestsInFlight: requestsInFlight,
		responseSize:     responseSize,
	}, nil
}

// Middleware records duration and size per route pattern. Raw paths carry
// IMEIs, so they never become attributes.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			method := attribute.String("http.request.method", r.Method)
			m.requestsInFlight.Add(ctx, 1, metric.WithAttributes(method))
			defer m.requestsInFlight.Add(ctx, -1, metric.WithAttributes(method))

			rec := recordStatus(w)
			next.ServeHTTP(rec, r)

			attrs := metric.WithAttributes(
				method,
				attribute.String("http.route", routePattern(r)),
				attribute.Int("http.response.status_code", rec.status),
			)
			m.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
			m.responseSize.Record(ctx, rec.written, attrs)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}

// Lookup outcomes recorded by ProviderMetrics.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
)

// ProviderMetrics records upstream lookup calls.
type ProviderMetrics struct {
	requestDuration metric.Float64Histogram
	lookups         metric.Int64Counter
}

// NewProviderMetrics creates provider instruments on the global meter provider.
func NewProviderMetrics() (*ProviderMetrics, error) {
	return NewProviderMetricsWithMeter(otel.Meter(meterName))
}

// NewProviderMetricsWithMeter creates provider instruments on meter.
func NewProviderMetricsWithMeter(meter metric.Meter) (*ProviderMetrics, error) {
	requestDuration, err := meter.Float64Histogram(
		"imeilookup.provider.request.duration",
		metric.WithDescription("Duration of provider lookups, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	lookups, err := meter.Int64Counter(
		"imeilookup.provider.lookups",
		metric.WithDescription("Completed provider lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	return &ProviderMetrics{
		requestDuration: requestDuration,
		lookups:         lookups,
	}, nil
}

// RecordRequest records one provider call. Failed calls carry error.type.
func (m *ProviderMetrics) RecordRequest(ctx context.Context, provider string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{attribute.String("imeilookup.provider", provider)}
	if err != nil {
		errType := "error"
		if ctx.Err() != nil {
			errType = "canceled"
		}
		attrs = append(attrs, attribute.String("error.type", errType))
	}

	// The request context may already be done; the measurement still counts.
	m.requestDuration.Record(context.WithoutCancel(ctx), duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordOutcome counts a completed lookup as found or not found.
func (m *ProviderMetrics) RecordOutcome(ctx context.Context, provider, inputType string, found bool) {
	outcome := OutcomeNotFound
	if found {
		outcome = OutcomeFound
	}
	m.lookups.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(
		attribute.String("imeilookup.provider", provider),
		attribute.String("imeilookup.input_type", inputType),
		attribute.String("imeilookup.outcome", outcome),
	))
}
