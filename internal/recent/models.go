// Package recent keeps the few most recently looked-up devices per provider.
package recent

import (
	"github.com/imeilookup/imeilookup/internal/device"
)

// MaxItems is the number of lookups kept per provider.
const MaxItems = 3

// Item is one remembered lookup.
type Item struct {
	IMEI    string        `json:"imei"`
	Model   string        `json:"model"`
	Memory  string        `json:"memory"`
	Carrier string        `json:"carrier"`
	Status  device.Status `json:"status"`
}

// NewItem builds the list entry for a completed lookup.
func NewItem(imei string, data device.Data) Item {
	model := data.Model
	if model == "" {
		model = "Unknown"
	}
	return Item{
		IMEI:    imei,
		Model:   model,
		Memory:  data.Memory,
		Carrier: data.Carrier,
		Status:  device.StatusOf(data.Working),
	}
}
