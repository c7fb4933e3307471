// Package station identifies the workstation and technician behind a request.
package station

import "strings"

// DefaultStationName is used when a request carries no station identity.
const DefaultStationName = "Station-1"

// Config describes a workstation.
type Config struct {
	StationName string `json:"stationName"`
	UserName    string `json:"userName"`
	Location    string `json:"location"`
}

// Default returns the configuration used when nothing else is known.
func Default() Config {
	return Config{StationName: DefaultStationName}
}

// Normalize trims every field and fills in the default station name.
func (c Config) Normalize() Config {
	c.StationName = strings.TrimSpace(c.StationName)
	c.UserName = strings.TrimSpace(c.UserName)
	c.Location = strings.TrimSpace(c.Location)
	if c.StationName == "" {
		c.StationName = DefaultStationName
	}
	return c
}
