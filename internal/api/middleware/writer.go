package middleware

import (
	"net/http"
	"regexp"
)

// statusRecorder captures the status code and body size for the logging,
// metrics and tracing middleware.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func recordStatus(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// imeiRun matches IMEI-length digit runs in request paths.
var imeiRun = regexp.MustCompile(`\d{14,17}`)

// MaskIdentifiers replaces IMEI-length digit runs in path with their last
// four digits.
func MaskIdentifiers(path string) string {
	return imeiRun.ReplaceAllStringFunc(path, func(id string) string {
		return "***" + id[len(id)-4:]
	})
}
