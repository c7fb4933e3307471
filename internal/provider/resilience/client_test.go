package resilience_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imeilookup/imeilookup/internal/provider/resilience"
)

// fastConfig retries quickly and never trips unless the test says so.
func fastConfig(name string, retries uint64) resilience.ClientConfig {
	cb := resilience.DefaultCircuitBreakerConfig(name)
	cb.ReadyToTrip = func(gobreaker.Counts) bool { return false }
	return resilience.ClientConfig{
		Name:            name,
		Timeout:         time.Second,
		MaxRetries:      retries,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
		CircuitBreaker:  &cb,
	}
}

// countingServer answers with statuses in order, repeating the last one.
func countingServer(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		w.WriteHeader(statuses[n])
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func get(t *testing.T, ctx context.Context, c *resilience.Client, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	require.NoError(t, err)
	return c.Do(req)
}

func TestClient_Do(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		retries   uint64
		wantCode  int
		wantCalls int32
	}{
		{name: "success", statuses: []int{http.StatusOK}, retries: 2, wantCode: http.StatusOK, wantCalls: 1},
		{name: "5xx retried until success", statuses: []int{503, 502, 200}, retries: 5, wantCode: http.StatusOK, wantCalls: 3},
		{name: "4xx not retried", statuses: []int{http.StatusBadRequest}, retries: 3, wantCode: http.StatusBadRequest, wantCalls: 1},
		{name: "no content", statuses: []int{http.StatusNoContent}, retries: 1, wantCode: http.StatusNoContent, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := countingServer(t, tt.statuses...)
			client := resilience.NewClient(fastConfig("iceq", tt.retries))

			resp, err := get(t, context.Background(), client, srv.URL)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_BreakerOpensAndRejects(t *testing.T) {
	srv, calls := countingServer(t, http.StatusInternalServerError)

	cfg := fastConfig("phonecheck", 1)
	cfg.CircuitBreaker.ReadyToTrip = resilience.DefaultReadyToTrip
	client := resilience.NewClient(cfg)

	// Each call makes two attempts; the fifth failed attempt trips the breaker.
	for i := 0; i < 3; i++ {
		resp, _ := get(t, context.Background(), client, srv.URL)
		if resp != nil {
			resp.Body.Close()
		}
	}
	require.Equal(t, gobreaker.StateOpen, client.State())
	before := calls.Load()

	resp, err := get(t, context.Background(), client, srv.URL)
	if resp != nil {
		resp.Body.Close()
	}
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, calls.Load(), "open breaker must not reach the provider")
}

func TestClient_AttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	cfg := fastConfig("iceq", 1)
	cfg.Timeout = 50 * time.Millisecond
	client := resilience.NewClient(cfg)

	resp, err := get(t, context.Background(), client, srv.URL)
	if resp != nil {
		resp.Body.Close()
	}
	assert.Error(t, err)
}

func TestClient_RetryReplaysBody(t *testing.T) {
	var calls atomic.Int32
	bodies := make(chan string, 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies <- string(b)
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := resilience.NewClient(fastConfig("iceq", 3))

	const payload = `{"imei":"356938035643809"}`
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, srv.URL, strings.NewReader(payload))
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(2), calls.Load())
	assert.Equal(t, payload, <-bodies)
	assert.Equal(t, payload, <-bodies)
}

func TestClient_ExhaustedServerErrorReturnsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	registry := resilience.NewRegistry()
	cfg := fastConfig("iceq", 1)
	cfg.Registry = registry
	client := resilience.NewClient(cfg)

	resp, err := get(t, context.Background(), client, srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "upstream down", string(body))

	health := registry.GetHealth("iceq")
	require.NotNil(t, health)
	assert.NotNil(t, health.LastFailureAt)
	assert.Equal(t, "server error: 500 Internal Server Error", health.LastError)
}

func TestClient_RecordsSuccess(t *testing.T) {
	srv, _ := countingServer(t, http.StatusOK)

	registry := resilience.NewRegistry()
	cfg := resilience.DefaultClientConfig("phonecheck")
	cfg.Registry = registry
	client := resilience.NewClient(cfg)

	resp, err := get(t, context.Background(), client, srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	health := registry.GetHealth("phonecheck")
	require.NotNil(t, health)
	assert.NotNil(t, health.LastSuccessAt)
	assert.Nil(t, health.LastFailureAt)
}

func TestClient_CancellationDoesNotCountAsFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	client := resilience.NewClient(resilience.DefaultClientConfig("iceq"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	resp, err := get(t, ctx, client, srv.URL)
	if resp != nil {
		resp.Body.Close()
	}
	require.Error(t, err)
	assert.Zero(t, client.Counts().TotalFailures)
}

func TestNewClient_FillsDefaults(t *testing.T) {
	client := resilience.NewClient(resilience.ClientConfig{Name: "iceq"})

	assert.Equal(t, "iceq", client.Name())
	assert.Equal(t, gobreaker.StateClosed, client.State())
}

func TestDefaultClientConfig(t *testing.T) {
	cfg := resilience.DefaultClientConfig("iceq")

	assert.Equal(t, "iceq", cfg.Name)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, uint64(2), cfg.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.InitialInterval)
	assert.Equal(t, 2*time.Second, cfg.MaxInterval)
	require.NotNil(t, cfg.CircuitBreaker)
	assert.Equal(t, "iceq", cfg.CircuitBreaker.Name)
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := resilience.DefaultCircuitBreakerConfig("phonecheck")

	assert.Equal(t, "phonecheck", cfg.Name)
	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, 2*time.Minute, cfg.Interval)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.NotNil(t, cfg.ReadyToTrip)
	assert.NotNil(t, cfg.IsSuccessful)
}

func TestIgnoreCancellation(t *testing.T) {
	assert.True(t, resilience.IgnoreCancellation(nil))
	assert.True(t, resilience.IgnoreCancellation(context.Canceled))
	assert.True(t, resilience.IgnoreCancellation(fmt.Errorf("Get \"http://iceq\": %w", context.Canceled)))
	assert.False(t, resilience.IgnoreCancellation(context.DeadlineExceeded))
	assert.False(t, resilience.IgnoreCancellation(&resilience.ServerError{StatusCode: http.StatusBadGateway}))
}

func TestDefaultReadyToTrip(t *testing.T) {
	tests := []struct {
		requests, failures uint32
		trip               bool
	}{
		{requests: 4, failures: 4, trip: false},
		{requests: 10, failures: 4, trip: false},
		{requests: 10, failures: 5, trip: true},
		{requests: 5, failures: 5, trip: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of %d", tt.failures, tt.requests), func(t *testing.T) {
			counts := gobreaker.Counts{Requests: tt.requests, TotalFailures: tt.failures}
			assert.Equal(t, tt.trip, resilience.DefaultReadyToTrip(counts))
		})
	}
}

func TestServerError(t *testing.T) {
	err := &resilience.ServerError{StatusCode: http.StatusServiceUnavailable}
	assert.Equal(t, "server error: 503 Service Unavailable", err.Error())
}
