package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/imeilookup/imeilookup/internal/api/models"
)

// RateLimitConfig is a fixed request budget per window.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration

	// FailEnvelope answers 429s with the lookup error envelope instead of
	// a problem.
	FailEnvelope bool
}

// WithFailEnvelope returns a copy of c that answers with the lookup envelope.
func (c RateLimitConfig) WithFailEnvelope() RateLimitConfig {
	c.FailEnvelope = true
	return c
}

var (
	// TokenRateLimit applies to station token issuance.
	TokenRateLimit = RateLimitConfig{RequestLimit: 10, WindowLength: time.Minute}

	// LookupRateLimit applies to provider lookups, which are billed upstream.
	LookupRateLimit = RateLimitConfig{RequestLimit: 30, WindowLength: time.Minute, FailEnvelope: true}

	// StandardRateLimit applies to notes and recency endpoints.
	StandardRateLimit = RateLimitConfig{RequestLimit: 100, WindowLength: time.Minute}
)

// RateLimitByIP limits by client IP, as set by chi's RealIP.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return limit(cfg, httprate.KeyByRealIP)
}

// RateLimitByStation limits token-authenticated stations by station name, so
// one bench shares its budget across machines. Other requests are limited by IP.
func RateLimitByStation(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return limit(cfg, keyByStationOrIP)
}

func limit(cfg RateLimitConfig, key httprate.KeyFunc) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(limitExceeded(cfg)),
	)
}

func keyByStationOrIP(r *http.Request) (string, error) {
	if StationFromToken(r.Context()) {
		return "station:" + GetStation(r.Context()).StationName, nil
	}
	return httprate.KeyByRealIP(r)
}

func limitExceeded(cfg RateLimitConfig) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(cfg.WindowLength.Seconds())))
	const detail = "Rate limit exceeded. Please try again later."

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", retryAfter)

		if cfg.FailEnvelope {
			writeFail(w, r, http.StatusTooManyRequests, detail)
			return
		}

		models.NewProblem(http.StatusTooManyRequests, GetRequestID(r.Context()), detail).
			WithInstance(r.URL.Path).
			Write(w)
	}
}
