package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/imeilookup/imeilookup/internal/api/models"
	"github.com/imeilookup/imeilookup/internal/api/response"
	"github.com/imeilookup/imeilookup/internal/device"
	"github.com/imeilookup/imeilookup/internal/lookup"
	"github.com/imeilookup/imeilookup/internal/recent"
)

// LookupHandler handles device lookup and recency endpoints.
type LookupHandler struct {
	lookups *lookup.Service
	recents *recent.Service
	logger  zerolog.Logger
}

// NewLookupHandler creates a new LookupHandler.
func NewLookupHandler(lookups *lookup.Service, recents *recent.Service, logger zerolog.Logger) *LookupHandler {
	return &LookupHandler{
		lookups: lookups,
		recents: recents,
		logger:  logger,
	}
}

// providerParam resolves {provider}, writing a 404 envelope when it is not served.
func (h *LookupHandler) providerParam(w http.ResponseWriter, r *http.Request) (device.Provider, bool) {
	provider, ok := device.ParseProvider(chi.URLParam(r, "provider"))
	if !ok || !h.lookups.Supports(provider) {
		response.Fail(w, r, http.StatusNotFound, device.ErrUnknownProvider.Error())
		return "", false
	}
	return provider, true
}

// Lookup handles POST /api/{provider} - look up a device by IMEI or serial.
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providerParam(w, r)
	if !ok {
		return
	}

	var input models.LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Fail(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.lookups.Lookup(r.Context(), provider, input.IMEI)
	if err != nil {
		status, message := lookupErrorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("provider", provider.String()).Msg("lookup failed")
		}
		response.Fail(w, r, status, message)
		return
	}

	response.JSON(w, r, http.StatusOK, models.LookupResponse{
		Success:   true,
		Found:     result.Found,
		InputType: result.Kind,
		Data:      result.Data,
		Display:   result.Display,
	})
}

func lookupErrorStatus(err error) (int, string) {
	var verr *device.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, device.ErrInputRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, device.ErrUnknownProvider):
		return http.StatusNotFound, device.ErrUnknownProvider.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// ListRecent handles GET /api/{provider}/recent - most recent lookups.
func (h *LookupHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providerParam(w, r)
	if !ok {
		return
	}

	response.JSON(w, r, http.StatusOK, models.RecentResponse{
		Provider: provider,
		Items:    h.recents.List(r.Context(), provider),
	})
}

// ClearRecent handles DELETE /api/{provider}/recent - forget recent lookups.
func (h *LookupHandler) ClearRecent(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providerParam(w, r)
	if !ok {
		return
	}

	if err := h.recents.Clear(r.Context(), provider); err != nil {
		h.logger.Error().Err(err).Str("provider", provider.String()).Msg("failed to clear recent lookups")
		response.Fail(w, r, http.StatusInternalServerError, "failed to clear recent lookups")
		return
	}
	response.NoContent(w, r)
}
