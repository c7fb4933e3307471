package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imeilookup/imeilookup/internal/api/middleware"
)

func serveRequestID(t *testing.T, incoming string) (ctxID, headerID string) {
	t.Helper()
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = middleware.GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/iceq", http.NoBody)
	if incoming != "" {
		req.Header.Set(middleware.HeaderRequestID, incoming)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return ctxID, rec.Header().Get(middleware.HeaderRequestID)
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	ctxID, headerID := serveRequestID(t, "")

	assert.True(t, strings.HasPrefix(ctxID, "req_"))
	assert.Len(t, ctxID, 26)
	assert.Equal(t, ctxID, headerID)
}

func TestRequestID_IncomingIDs(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"plain", "bench-3.lookup:0042", true},
		{"uuid", "0f8fad5b-d9cb-469f-a165-70867728950e", true},
		{"spaces", "bench 3", false},
		{"header injection", "id\r\nX-Evil: 1", false},
		{"too long", strings.Repeat("a", 65), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctxID, headerID := serveRequestID(t, tt.incoming)
			if tt.keep {
				assert.Equal(t, tt.incoming, ctxID)
			} else {
				assert.NotEqual(t, tt.incoming, ctxID)
				assert.True(t, strings.HasPrefix(ctxID, "req_"))
			}
			assert.Equal(t, ctxID, headerID)
		})
	}
}

func TestRequestID_UniqueIDs(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, _ := serveRequestID(t, "")
		assert.False(t, ids[id], "duplicate request ID generated: %s", id)
		ids[id] = true
	}
}

func TestGetRequestID(t *testing.T) {
	assert.Empty(t, middleware.GetRequestID(context.Background()))

	ctx := middleware.WithRequestID(context.Background(), "req_worker")
	assert.Equal(t, "req_worker", middleware.GetRequestID(ctx))
}
