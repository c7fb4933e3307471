package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger logs one line per request with the masked path, route pattern and
// calling station.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := recordStatus(w)

			next.ServeHTTP(rec, r)

			event := log.WithLevel(requestLevel(rec.status, r.URL.Path)).
				Str("request_id", GetRequestID(r.Context())).
				Str("method", r.Method).
				Str("path", MaskIdentifiers(r.URL.Path)).
				Str("route", routePattern(r)).
				Int("status", rec.status).
				Int64("bytes", rec.written).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent())

			if station := r.Header.Get(HeaderStationName); station != "" {
				event = event.Str("station", station)
			}
			if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
				event = event.
					Str("trace_id", sc.TraceID().String()).
					Str("span_id", sc.SpanID().String())
			}

			event.Msg("request completed")
		})
	}
}

// requestLevel maps a response to a log level. Ops probes poll constantly
// and log at debug unless they fail.
func requestLevel(status int, path string) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	case strings.HasPrefix(path, "/v1/ops/"):
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
