package models

import (
	"github.com/imeilookup/imeilookup/internal/device"
	"github.com/imeilookup/imeilookup/internal/recent"
)

// LookupRequest is the body of POST /api/{provider}.
type LookupRequest struct {
	IMEI string `json:"imei"`
}

// LookupResponse is a completed lookup. Data is all-empty when Found is false.
type LookupResponse struct {
	Success   bool             `json:"success"`
	Found     bool             `json:"found"`
	InputType device.InputType `json:"inputType"`
	Data      device.Data      `json:"data"`
	Display   device.Display   `json:"display"`
}

// RecentResponse lists a provider's most recent lookups.
type RecentResponse struct {
	Provider device.Provider `json:"provider"`
	Items    []recent.Item   `json:"items"`
}
