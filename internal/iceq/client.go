// Package iceq provides a client for the ICE-Q device transaction API.
package iceq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/imeilookup/imeilookup/internal/device"
	"github.com/imeilookup/imeilookup/internal/provider/resilience"
)

const (
	// DefaultVersion is the ICE-Q API version used when ICEQ_VERSION is unset.
	DefaultVersion = "v2_8_1"

	// ProviderName identifies this provider in the resilience registry.
	ProviderName = "iceq"
)

// Config holds ICE-Q account settings.
type Config struct {
	Company string
	Version string
	License string
	Bearer  string

	// BaseURL overrides the company-derived URL.
	BaseURL string
}

// ConfigFromEnv reads ICEQ_* variables.
func ConfigFromEnv() Config {
	version := os.Getenv("ICEQ_VERSION")
	if version == "" {
		version = DefaultVersion
	}
	return Config{
		Company: os.Getenv("ICEQ_COMPANY"),
		Version: version,
		License: os.Getenv("ICEQ_LICENSE"),
		Bearer:  os.Getenv("ICEQ_BEARER"),
		BaseURL: os.Getenv("ICEQ_BASE_URL"),
	}
}

// Configured reports whether requests can be addressed.
func (c Config) Configured() bool {
	return c.BaseURL != "" || c.Company != ""
}

// Endpoint returns the API base, https://{company}.apiq.icedb.com/api/{version}/q
// unless BaseURL is set.
func (c Config) Endpoint() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	version := c.Version
	if version == "" {
		version = DefaultVersion
	}
	return fmt.Sprintf("https://%s.apiq.icedb.com/api/%s/q", c.Company, version)
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the ICE-Q client.
type ClientConfig struct {
	Config

	// HTTPClient is the HTTP client to use.
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 15s).
	Timeout time.Duration

	// Registry receives health data for the default resilient client. Optional.
	Registry *resilience.Registry
}

// Client is an ICE-Q API client.
type Client struct {
	cfg        Config
	httpClient HTTPDoer
}

// NewClient creates a new ICE-Q client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig(ProviderName)
		if cfg.Timeout > 0 {
			rc.Timeout = cfg.Timeout
		}
		rc.Registry = cfg.Registry
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		cfg:        cfg.Config,
		httpClient: httpClient,
	}
}

// Provider returns device.ProviderICEQ.
func (c *Client) Provider() device.Provider {
	return device.ProviderICEQ
}

type transactionRequest struct {
	IMEI string `json:"imei"`
}

// FetchRaw requests the transaction history for an IMEI or serial.
// A 204 answer yields an empty payload, not an error.
func (c *Client) FetchRaw(ctx context.Context, id string) (device.Payload, error) {
	if !c.cfg.Configured() {
		return device.Payload{}, fmt.Errorf("%s: %w", ProviderName, device.ErrNotConfigured)
	}

	body, err := json.Marshal(transactionRequest{IMEI: id})
	if err != nil {
		return device.Payload{}, fmt.Errorf("encode transaction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint()+"/transaction_imei_request", bytes.NewReader(body))
	if err != nil {
		return device.Payload{}, fmt.Errorf("create transaction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Bearer", c.cfg.Bearer)
	req.Header.Set("License", c.cfg.License)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return device.Payload{}, fmt.Errorf("fetch transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return device.Payload{Kind: device.PayloadEmpty}, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return device.Payload{}, fmt.Errorf("read transaction response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return device.Payload{}, &device.ProviderRequestError{
			Provider:   device.ProviderICEQ,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	payload, err := device.DecodePayload(respBody)
	if err != nil {
		return device.Payload{}, fmt.Errorf("decode transaction response: %w", err)
	}
	return payload, nil
}
