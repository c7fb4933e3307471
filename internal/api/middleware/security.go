package middleware

import (
	"net/http"
	"strings"

	"github.com/imeilookup/imeilookup/internal/api/models"
)

// SecurityHeaders adds standard security headers to all HTTP responses.
// Lookup and notes responses carry device records, so nothing is cacheable.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Permissions-Policy", "geolocation=(), camera=(), microphone=()")
		h.Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

// RequireTLS returns a middleware that rejects plain-HTTP requests when
// enabled. The scheme comes from X-Forwarded-Proto (set by Cloud Run/load
// balancers); requests without it are direct connections and pass. Ops
// probes are exempt.
func RequireTLS(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			proto := r.Header.Get("X-Forwarded-Proto")
			if proto != "" && proto != "https" && !strings.HasPrefix(r.URL.Path, "/v1/ops/") {
				models.NewProblem(http.StatusForbidden, GetRequestID(r.Context()), "This endpoint requires HTTPS").
					WithType(models.ProblemTypeTLSRequired, "TLS required").
					WithInstance(r.URL.Path).
					Write(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
