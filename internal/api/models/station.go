package models

import "github.com/imeilookup/imeilookup/internal/station"

// StationTokenRequest is the body of POST /api/station/token.
type StationTokenRequest = station.Config

// StationTokenResponse carries a signed station token.
type StationTokenResponse struct {
	Token     string         `json:"token"`
	ExpiresAt Timestamp      `json:"expiresAt"`
	Station   station.Config `json:"station"`
}

// StationResponse echoes the station identified for the request.
type StationResponse struct {
	Station   station.Config `json:"station"`
	FromToken bool           `json:"fromToken"`
}
