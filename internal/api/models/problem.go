package models

import (
	"encoding/json"
	"net/http"
)

// ProblemBase prefixes every problem type URI.
const ProblemBase = "https://imeilookup.dev/problems/"

// Problem types written by the API.
const (
	ProblemTypeValidation       = ProblemBase + "validation-error"
	ProblemTypeUnauthorized     = ProblemBase + "unauthorized"
	ProblemTypeTLSRequired      = ProblemBase + "tls-required"
	ProblemTypeNotFound         = ProblemBase + "not-found"
	ProblemTypeUnsupportedMedia = ProblemBase + "unsupported-media-type"
	ProblemTypeTooManyRequests  = ProblemBase + "too-many-requests"
	ProblemTypeInternal         = ProblemBase + "internal-error"
	ProblemTypeUnavailable      = ProblemBase + "service-unavailable"
	ProblemTypeGeneric          = ProblemBase + "error"
)

// Problem is an RFC 7807 body, written with Content-Type application/problem+json.
// Notes, station and ops endpoints report errors this way; lookup endpoints
// use Fail.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type problemKind struct {
	typ   string
	title string
}

var problemKinds = map[int]problemKind{
	http.StatusBadRequest:           {ProblemTypeValidation, "Validation error"},
	http.StatusUnauthorized:         {ProblemTypeUnauthorized, "Unauthorized"},
	http.StatusNotFound:             {ProblemTypeNotFound, "Not found"},
	http.StatusUnsupportedMediaType: {ProblemTypeUnsupportedMedia, "Unsupported media type"},
	http.StatusTooManyRequests:      {ProblemTypeTooManyRequests, "Too many requests"},
	http.StatusInternalServerError:  {ProblemTypeInternal, "Internal server error"},
	http.StatusServiceUnavailable:   {ProblemTypeUnavailable, "Service unavailable"},
}

// NewProblem creates a problem carrying the standard type and title for status.
func NewProblem(status int, traceID, detail string) *Problem {
	kind, ok := problemKinds[status]
	if !ok {
		kind = problemKind{ProblemTypeGeneric, http.StatusText(status)}
	}
	return &Problem{
		Type:    kind.typ,
		Title:   kind.title,
		Status:  status,
		Detail:  detail,
		TraceID: traceID,
	}
}

// WithType overrides the type URI and title.
func (p *Problem) WithType(problemType, title string) *Problem {
	p.Type = problemType
	p.Title = title
	return p
}

// WithInstance sets the request path the problem occurred on.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors attaches field errors.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write writes the problem and its status code.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// FailStatus is the status field of every Fail body.
const FailStatus = "fail"

// Fail is the error envelope of the lookup and recent endpoints.
type Fail struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// NewFail wraps message in the lookup error envelope.
func NewFail(message string) Fail {
	return Fail{Error: message, Status: FailStatus}
}
