package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/imeilookup/imeilookup/internal/api/middleware"
	"github.com/imeilookup/imeilookup/internal/api/models"
	"github.com/imeilookup/imeilookup/internal/api/response"
	"github.com/imeilookup/imeilookup/internal/device"
	"github.com/imeilookup/imeilookup/internal/notes"
)

// NotesHandler handles technician note endpoints.
type NotesHandler struct {
	notes *notes.Service
}

// NewNotesHandler creates a new NotesHandler.
func NewNotesHandler(svc *notes.Service) *NotesHandler {
	return &NotesHandler{notes: svc}
}

func noteKey(w http.ResponseWriter, r *http.Request) (notes.Key, bool) {
	provider, ok := device.ParseProvider(chi.URLParam(r, "provider"))
	if !ok {
		response.Problem(w, r, http.StatusNotFound, "unknown provider")
		return notes.Key{}, false
	}
	imei := chi.URLParam(r, "imei")
	if imei == "" {
		response.Problem(w, r, http.StatusBadRequest, "imei is required")
		return notes.Key{}, false
	}
	return notes.Key{Provider: provider, IMEI: imei}, true
}

// parseFilters reads list filters from the query string.
func parseFilters(w http.ResponseWriter, r *http.Request) (notes.Filters, bool) {
	q := r.URL.Query()
	filters := notes.Filters{
		Station:  q.Get("station"),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
		UserName: q.Get("userName"),
	}

	var fieldErrors []models.FieldError
	if p := q.Get("provider"); p != "" {
		provider, ok := device.ParseProvider(p)
		if !ok {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "provider", Message: "unknown provider", Code: "invalid"})
		}
		filters.Provider = provider
	}
	if l := q.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "limit", Message: "must be a non-negative integer", Code: "invalid"})
		}
		filters.Limit = limit
	}

	if len(fieldErrors) > 0 {
		response.Invalid(w, r, "invalid filters", fieldErrors)
		return notes.Filters{}, false
	}
	return filters, true
}

// SaveNote handles PUT /api/notes/{provider}/{imei} - save the current note.
func (h *NotesHandler) SaveNote(w http.ResponseWriter, r *http.Request) {
	key, ok := noteKey(w, r)
	if !ok {
		return
	}

	var input models.SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Problem(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st := middleware.GetStation(r.Context())
	saved := h.notes.Save(r.Context(), key, input.Note, input.AppendHistory, st)
	response.JSON(w, r, http.StatusOK, models.SaveNoteResponse{Success: saved})
}

// GetNote handles GET /api/notes/{provider}/{imei} - the current note text.
func (h *NotesHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	key, ok := noteKey(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, models.NoteResponse{Note: h.notes.Load(r.Context(), key)})
}

// GetHistory handles GET /api/notes/{provider}/{imei}/history.
func (h *NotesHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	key, ok := noteKey(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, models.NoteHistoryResponse{History: h.notes.LoadHistory(r.Context(), key)})
}

// GetDetails handles GET /api/notes/{provider}/{imei}/details - the full document.
func (h *NotesHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	key, ok := noteKey(w, r)
	if !ok {
		return
	}

	details := h.notes.Details(r.Context(), key)
	if details == nil {
		response.Problem(w, r, http.StatusNotFound, "no notes for this device")
		return
	}
	response.JSON(w, r, http.StatusOK, details)
}

// ListNotes handles GET /api/notes - filtered listing of every noted device.
func (h *NotesHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	filters, ok := parseFilters(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, models.NoteListResponse{Items: h.notes.ListAll(r.Context(), filters)})
}

// SearchNotes handles GET /api/notes/search?q= - text search over notes and history.
func (h *NotesHandler) SearchNotes(w http.ResponseWriter, r *http.Request) {
	filters, ok := parseFilters(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	response.JSON(w, r, http.StatusOK, models.NoteSearchResponse{
		Query:   query,
		Results: h.notes.SearchByText(r.Context(), query, filters),
	})
}

// Stats handles GET /api/notes/stats - aggregate counts.
func (h *NotesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	filters, ok := parseFilters(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, h.notes.Stats(r.Context(), filters))
}
