package middleware

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/imeilookup/imeilookup/internal/api/models"
)

// ContentTypeJSON defaults responses to application/json. Handlers that set
// their own Content-Type keep it.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects POST, PUT and PATCH bodies declared as anything other
// than application/json with a 415 in the lookup envelope. A request without
// a Content-Type passes.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if ct := r.Header.Get("Content-Type"); ct != "" && !isJSON(ct) {
				writeFail(w, r, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

// writeFail writes the lookup error envelope. The response package imports
// middleware, so this is its local counterpart.
func writeFail(w http.ResponseWriter, r *http.Request, status int, message string) {
	if requestID := GetRequestID(r.Context()); requestID != "" {
		w.Header().Set(HeaderRequestID, requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.NewFail(message))
}
