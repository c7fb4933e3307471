package device

import (
	"errors"
	"fmt"
)

// Predefined lookup errors.
var (
	// ErrNotConfigured is returned when a provider is missing its credentials.
	ErrNotConfigured = errors.New("provider credentials not configured")

	// ErrUnknownProvider is returned for a provider name that is not supported.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrInputRequired is returned when no IMEI or serial was supplied.
	ErrInputRequired = errors.New("IMEI is required")
)

// ValidationError describes a malformed IMEI or serial number.
type ValidationError struct {
	Input   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthenticationError is returned when a provider login fails.
type AuthenticationError struct {
	Provider Provider
	Body     string
	Err      error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s login failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s login failed: %s", e.Provider, e.Body)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ProviderRequestError is returned when a provider answers with a non-2xx status.
type ProviderRequestError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func (e *ProviderRequestError) Error() string {
	return fmt.Sprintf("%s request failed: %d - %s", e.Provider, e.StatusCode, e.Body)
}
