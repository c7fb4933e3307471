package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imeilookup/imeilookup/internal/api/models"
)

func TestNewProblem_StandardKinds(t *testing.T) {
	tests := []struct {
		status int
		typ    string
		title  string
	}{
		{http.StatusBadRequest, models.ProblemTypeValidation, "Validation error"},
		{http.StatusUnauthorized, models.ProblemTypeUnauthorized, "Unauthorized"},
		{http.StatusNotFound, models.ProblemTypeNotFound, "Not found"},
		{http.StatusUnsupportedMediaType, models.ProblemTypeUnsupportedMedia, "Unsupported media type"},
		{http.StatusTooManyRequests, models.ProblemTypeTooManyRequests, "Too many requests"},
		{http.StatusInternalServerError, models.ProblemTypeInternal, "Internal server error"},
		{http.StatusServiceUnavailable, models.ProblemTypeUnavailable, "Service unavailable"},
		{http.StatusConflict, models.ProblemTypeGeneric, "Conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			p := models.NewProblem(tt.status, "req_abc", "detail")

			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, tt.title, p.Title)
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, "detail", p.Detail)
			assert.Equal(t, "req_abc", p.TraceID)
			assert.Empty(t, p.Instance)
			assert.Nil(t, p.Errors)
		})
	}
}

func TestProblem_Builders(t *testing.T) {
	fieldErrors := []models.FieldError{
		{Field: "limit", Message: "must be a positive integer", Code: "INVALID"},
		{Field: "provider", Message: "unknown provider"},
	}

	p := models.NewProblem(http.StatusBadRequest, "req_abc", "invalid filters").
		WithInstance("/api/notes").
		WithErrors(fieldErrors)

	assert.Equal(t, "/api/notes", p.Instance)
	assert.Equal(t, fieldErrors, p.Errors)

	p = models.NewProblem(http.StatusForbidden, "req_abc", "").
		WithType(models.ProblemTypeTLSRequired, "TLS required")
	assert.Equal(t, models.ProblemTypeTLSRequired, p.Type)
	assert.Equal(t, "TLS required", p.Title)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewProblem(http.StatusBadRequest, "req_abc", "imei is required").
		WithInstance("/api/notes/iceq/")

	rec := httptest.NewRecorder()
	p.Write(rec)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "req_abc", rec.Header().Get("X-Request-Id"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.ProblemTypeValidation, body["type"])
	assert.Equal(t, "imei is required", body["detail"])
	assert.Equal(t, "/api/notes/iceq/", body["instance"])
	assert.Equal(t, "req_abc", body["traceId"])
	assert.NotContains(t, body, "errors")
}

func TestProblem_WriteWithoutTraceID(t *testing.T) {
	rec := httptest.NewRecorder()
	models.NewProblem(http.StatusInternalServerError, "", "boom").Write(rec)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Request-Id"))
}

func TestNewFail(t *testing.T) {
	raw, err := json.Marshal(models.NewFail("IMEI is required."))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"IMEI is required.","status":"fail"}`, string(raw))
}
