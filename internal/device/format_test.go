package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imeilookup/imeilookup/internal/device"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"2024-03-05T14:22:10Z", "2024-03-05 14:22"},
		{"2024-03-05T14:22:10.123Z", "2024-03-05 14:22"},
		{"2024-03-05T16:22:10+02:00", "2024-03-05 14:22"},
		{"2024-03-05 14:22:10", "2024-03-05 14:22"},
		{"2024-03-05", "2024-03-05 00:00"},
		{"03/05/2024 09:15:00", "2024-03-05 09:15"},
		{"not a date", "not a date"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, device.FormatDate(tc.input))
		})
	}
}

func TestFormatSlashDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"01/15/2024", "2024-01-15 00:00"},
		{"1/5/2024", "2024-01-05 00:00"},
		{"2024-01-15T10:30:00Z", "2024-01-15 10:30"},
		{"13/45/2024", "13/45/2024"},
		{"unknown", "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, device.FormatSlashDate(tc.input))
		})
	}
}
