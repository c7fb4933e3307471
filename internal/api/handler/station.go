package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/imeilookup/imeilookup/internal/api/middleware"
	"github.com/imeilookup/imeilookup/internal/api/models"
	"github.com/imeilookup/imeilookup/internal/api/response"
	"github.com/imeilookup/imeilookup/internal/station"
)

// StationHandler handles station identity endpoints.
type StationHandler struct {
	tokens *station.TokenService
	logger zerolog.Logger
}

// NewStationHandler creates a new StationHandler. tokens may be nil when
// no signing key is configured.
func NewStationHandler(tokens *station.TokenService, logger zerolog.Logger) *StationHandler {
	return &StationHandler{tokens: tokens, logger: logger}
}

// IssueToken handles POST /api/station/token - sign a station token.
func (h *StationHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil {
		response.Problem(w, r, http.StatusServiceUnavailable, "station tokens are not enabled")
		return
	}

	var input models.StationTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Problem(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cfg := input.Normalize()
	token, expiresAt, err := h.tokens.Issue(cfg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue station token")
		response.Problem(w, r, http.StatusInternalServerError, "failed to issue station token")
		return
	}

	response.JSON(w, r, http.StatusOK, models.StationTokenResponse{
		Token:     token,
		ExpiresAt: models.Timestamp(expiresAt),
		Station:   cfg,
	})
}

// GetStation handles GET /api/station - the station identified for this request.
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.StationResponse{
		Station:   middleware.GetStation(r.Context()),
		FromToken: middleware.StationFromToken(r.Context()),
	})
}
