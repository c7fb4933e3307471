// Package response writes API response bodies.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/imeilookup/imeilookup/internal/api/middleware"
	"github.com/imeilookup/imeilookup/internal/api/models"
)

// JSON writes data as JSON with the given status code. A nil data writes
// headers only.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	setRequestID(w, r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Fail writes the lookup error envelope.
func Fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, r, status, models.NewFail(message))
}

// Problem writes an RFC 7807 problem for status.
func Problem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	write(w, r, models.NewProblem(status, middleware.GetRequestID(r.Context()), detail))
}

// Invalid writes a 400 validation problem listing the offending fields.
func Invalid(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	p := models.NewProblem(http.StatusBadRequest, middleware.GetRequestID(r.Context()), detail)
	write(w, r, p.WithErrors(errors))
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter, r *http.Request) {
	setRequestID(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func write(w http.ResponseWriter, r *http.Request, p *models.Problem) {
	p.WithInstance(r.URL.Path).Write(w)
}

func setRequestID(w http.ResponseWriter, r *http.Request) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set(middleware.HeaderRequestID, requestID)
	}
}
