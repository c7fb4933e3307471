package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imeilookup/imeilookup/internal/api/middleware"
)

func TestContentTypeJSON_KeepsHandlerType(t *testing.T) {
	handler := middleware.ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes/acme/1", http.NoBody))

	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestContentTypeJSON_SetsDefault(t *testing.T) {
	handler := middleware.ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/iceq/recent", http.NoBody))

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{name: "json post", method: http.MethodPost, contentType: "application/json; charset=utf-8", want: http.StatusOK},
		{name: "mixed case", method: http.MethodPost, contentType: "Application/JSON", want: http.StatusOK},
		{name: "json prefix only", method: http.MethodPost, contentType: "application/jsonp", want: http.StatusUnsupportedMediaType},
		{name: "malformed", method: http.MethodPatch, contentType: "application/json; =", want: http.StatusUnsupportedMediaType},
		{name: "missing content type", method: http.MethodPut, want: http.StatusOK},
		{name: "form post", method: http.MethodPost, contentType: "application/x-www-form-urlencoded", want: http.StatusUnsupportedMediaType},
		{name: "get ignores content type", method: http.MethodGet, contentType: "text/plain", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RequireJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/iceq", strings.NewReader(`{"imei":"356938035643809"}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireJSON_FailEnvelope(t *testing.T) {
	handler := middleware.RequireJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/iceq", strings.NewReader("imei=1"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "Content-Type must be application/json", body["error"])
}
