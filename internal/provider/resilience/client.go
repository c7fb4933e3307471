package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned without calling the provider while its breaker
// is open, or half-open with its trial requests in flight.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig configures a provider HTTP client. Zero fields take their
// DefaultClientConfig values.
type ClientConfig struct {
	// Name is the provider name used for the breaker and health reports.
	Name string

	// Timeout bounds each attempt.
	Timeout time.Duration

	// MaxRetries is the number of attempts after the first.
	MaxRetries uint64

	// InitialInterval and MaxInterval bound the exponential retry backoff.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// CircuitBreaker overrides DefaultCircuitBreakerConfig.
	CircuitBreaker *CircuitBreakerConfig

	// Registry, when set, tracks the client's outcomes and breaker changes.
	Registry *Registry
}

// DefaultClientConfig returns the settings used for device record providers.
// A lookup makes at most three attempts inside one station request.
func DefaultClientConfig(name string) ClientConfig {
	cb := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         15 * time.Second,
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		CircuitBreaker:  &cb,
	}
}

func (cfg ClientConfig) withDefaults() ClientConfig {
	def := DefaultClientConfig(cfg.Name)
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.CircuitBreaker == nil {
		cfg.CircuitBreaker = def.CircuitBreaker
	}
	return cfg
}

// Client sends provider requests through a circuit breaker, retrying
// transport errors and 5xx responses with exponential backoff.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewClient builds a client and registers it with cfg.Registry, if any.
func NewClient(cfg ClientConfig) *Client {
	cfg = cfg.withDefaults()

	cb := *cfg.CircuitBreaker
	if reg := cfg.Registry; reg != nil {
		next := cb.OnStateChange
		cb.OnStateChange = func(name string, from, to gobreaker.State) {
			reg.RecordStateChange(cfg.Name)
			if next != nil {
				next(name, from, to)
			}
		}
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: NewCircuitBreaker[*http.Response](cb), //nolint:bodyclose // type param, not response
	}
	if cfg.Registry != nil {
		cfg.Registry.Register(cfg.Name, c)
	}
	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.cfg.Name
}

// Do sends req, retrying within req's context. A request with a body is
// retried only when it can be replayed through GetBody.
//
// A 5xx that survives every retry is returned as the response with a nil
// error so the caller can read the provider's message.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var last *http.Response
	keep := func(resp *http.Response) {
		if last != nil && last != resp {
			last.Body.Close()
		}
		last = resp
	}

	err := backoff.Retry(func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // returned to caller
			return c.attempt(ctx, req)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrCircuitOpen)
		}
		if resp != nil {
			keep(resp)
		}
		return err
	}, c.backOff(ctx))

	var serverErr *ServerError
	switch {
	case err == nil:
		c.report(nil)
		return last, nil
	case last != nil && errors.As(err, &serverErr):
		c.report(err)
		return last, nil
	default:
		c.report(err)
		if last != nil {
			last.Body.Close()
		}
		return nil, err
	}
}

// attempt sends one copy of req. A 5xx response is paired with a
// ServerError so the breaker counts it and the retry loop repeats it.
func (c *Client) attempt(ctx context.Context, req *http.Request) (*http.Response, error) {
	clone := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("rewinding request body: %w", err))
		}
		clone.Body = body
	}

	resp, err := c.http.Do(clone)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return resp, &ServerError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.cfg.InitialInterval
	exp.MaxInterval = c.cfg.MaxInterval
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, c.cfg.MaxRetries), ctx)
}

func (c *Client) report(err error) {
	reg := c.cfg.Registry
	switch {
	case reg == nil:
	case err == nil:
		reg.RecordSuccess(c.cfg.Name)
	default:
		reg.RecordFailure(c.cfg.Name, err)
	}
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the breaker's counts for the current generation.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}

// ServerError is a 5xx answer from a provider.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
