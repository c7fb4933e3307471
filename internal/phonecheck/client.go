// Package phonecheck provides a client for the Phonecheck device history API.
package phonecheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/imeilookup/imeilookup/internal/device"
	"github.com/imeilookup/imeilookup/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the Phonecheck API.
	DefaultBaseURL = "https://api.phonecheck.com/v2"

	// ProviderName identifies this provider in the resilience registry.
	ProviderName = "phonecheck"
)

// Config holds Phonecheck credentials.
type Config struct {
	Username string
	Password string
	BaseURL  string
}

// ConfigFromEnv reads PHONECHECK_* variables.
func ConfigFromEnv() Config {
	baseURL := os.Getenv("PHONECHECK_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Config{
		Username: os.Getenv("PHONECHECK_USERNAME"),
		Password: os.Getenv("PHONECHECK_PASSWORD"),
		BaseURL:  baseURL,
	}
}

// Configured reports whether both credentials are present.
func (c Config) Configured() bool {
	return c.Username != "" && c.Password != ""
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Phonecheck client.
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

// Client is a Phonecheck API client.
// A fresh master token is requested for every lookup.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new Phonecheck client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

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
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Provider returns device.ProviderPhonecheck.
func (c *Client) Provider() device.Provider {
	return device.ProviderPhonecheck
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges the configured credentials for a master token.
func (c *Client) Login(ctx context.Context) (string, error) {
	if !c.cfg.Configured() {
		return "", &device.AuthenticationError{Provider: device.ProviderPhonecheck, Err: device.ErrNotConfigured}
	}

	payload, err := json.Marshal(loginRequest{Username: c.cfg.Username, Password: c.cfg.Password})
	if err != nil {
		return "", fmt.Errorf("encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/master/login", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &device.AuthenticationError{Provider: device.ProviderPhonecheck, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read login response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &device.AuthenticationError{Provider: device.ProviderPhonecheck, Body: string(body)}
	}

	var result loginResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if result.Token == "" {
		return "", &device.AuthenticationError{Provider: device.ProviderPhonecheck, Body: "empty token"}
	}

	return result.Token, nil
}

// FetchRaw logs in and retrieves the detailed legacy device record for an IMEI or serial.
func (c *Client) FetchRaw(ctx context.Context, id string) (device.Payload, error) {
	token, err := c.Login(ctx)
	if err != nil {
		return device.Payload{}, err
	}

	endpoint := fmt.Sprintf("%s/master/imei/device-info-legacy/%s?detailed=true", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return device.Payload{}, fmt.Errorf("create device info request: %w", err)
	}
	req.Header.Set("token_master", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return device.Payload{}, fmt.Errorf("fetch device info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return device.Payload{}, fmt.Errorf("read device info response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return device.Payload{}, &device.ProviderRequestError{
			Provider:   device.ProviderPhonecheck,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	payload, err := device.DecodePayload(body)
	if err != nil {
		return device.Payload{}, fmt.Errorf("decode device info response: %w", err)
	}
	return payload, nil
}
