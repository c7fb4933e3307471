package device_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imeilookup/imeilookup/internal/device"
)

func TestGenerateSKU(t *testing.T) {
	tests := []struct {
		name     string
		data     device.Data
		provider device.Provider
		expected string
	}{
		{
			name: "skips empty ram",
			data: device.Data{
				ModelName: "iPhone 12",
				Memory:    "128GB",
				Color:     "Black",
				Carrier:   "AT&T",
			},
			provider: device.ProviderPhonecheck,
			expected: "iPhone 12 - 128GB - Black - AT&T",
		},
		{
			name: "phonecheck ignores sim lock",
			data: device.Data{
				ModelName: "Pixel 7",
				Carrier:   "Verizon",
				SimLock:   "Locked",
			},
			provider: device.ProviderPhonecheck,
			expected: "Pixel 7 - Verizon",
		},
		{
			name: "iceq appends sim lock to carrier",
			data: device.Data{
				ModelName: "Galaxy S21",
				Memory:    "256GB",
				RAM:       "8GB",
				Color:     "Gray",
				Carrier:   "T-Mobile",
				SimLock:   "unlocked",
			},
			provider: device.ProviderICEQ,
			expected: "Galaxy S21 - 256GB - 8GB - Gray - T-Mobile (UNLOCKED)",
		},
		{
			name: "iceq sim lock without carrier",
			data: device.Data{
				ModelName: "Galaxy S21",
				SimLock:   "Locked",
			},
			provider: device.ProviderICEQ,
			expected: "Galaxy S21 - LOCKED",
		},
		{
			name: "iceq ignores N/A sim lock",
			data: device.Data{
				ModelName: "Galaxy S21",
				Carrier:   "Sprint",
				SimLock:   "N/A",
			},
			provider: device.ProviderICEQ,
			expected: "Galaxy S21 - Sprint",
		},
		{
			name: "trims whitespace parts",
			data: device.Data{
				ModelName: "  ",
				Memory:    " 64GB ",
				Color:     "",
			},
			provider: device.ProviderPhonecheck,
			expected: "64GB",
		},
		{
			name:     "empty record",
			data:     device.Data{},
			provider: device.ProviderICEQ,
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sku := device.GenerateSKU(tc.data, tc.provider)
			assert.Equal(t, tc.expected, sku)
			assert.False(t, strings.HasPrefix(sku, " - "), "leading separator in %q", sku)
			assert.False(t, strings.HasSuffix(sku, " - "), "trailing separator in %q", sku)
		})
	}
}

func TestClassifyWorking(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Pass*", device.WorkingYes},
		{"pass", device.WorkingYes},
		{"YES", device.WorkingYes},
		{"FAIL", device.WorkingNo},
		{"fail*", device.WorkingNo},
		{"No", device.WorkingNo},
		{"Incomplete", device.WorkingPending},
		{"incomplete*", device.WorkingPending},
		{"pending", device.WorkingPending},
		{"weird", "weird"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, device.ClassifyWorking(tc.input))
		})
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "PASS", device.StatusLabel("yes"))
	assert.Equal(t, "PASS", device.StatusLabel("Pass*"))
	assert.Equal(t, "FAILED", device.StatusLabel("no"))
	assert.Equal(t, "FAILED", device.StatusLabel("FAIL"))
	assert.Equal(t, "PENDING", device.StatusLabel("incomplete"))
	assert.Equal(t, "Needs review", device.StatusLabel("Needs review"))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, device.StatusPass, device.StatusOf("YES"))
	assert.Equal(t, device.StatusFail, device.StatusOf("fail*"))
	assert.Equal(t, device.StatusPending, device.StatusOf("Pending"))
	assert.Equal(t, device.StatusUnknown, device.StatusOf("weird"))
}

func TestCarrierDisplay(t *testing.T) {
	assert.Equal(t, "N/A", device.CarrierDisplay(device.Data{}, device.ProviderPhonecheck))
	assert.Equal(t, "AT&T", device.CarrierDisplay(device.Data{Carrier: "AT&T", SimLock: "locked"}, device.ProviderPhonecheck))
	assert.Equal(t, "AT&T (LOCKED)", device.CarrierDisplay(device.Data{Carrier: "AT&T", SimLock: "locked"}, device.ProviderICEQ))
	assert.Equal(t, "UNLOCKED", device.CarrierDisplay(device.Data{SimLock: " unlocked "}, device.ProviderICEQ))
}

func TestDerive(t *testing.T) {
	data := device.Data{
		ModelName: "iPhone 13",
		Memory:    "128GB",
		Carrier:   "Verizon",
		Working:   "yes",
	}

	display := device.Derive(data, device.ProviderPhonecheck)

	assert.Equal(t, "iPhone 13 - 128GB - Verizon", display.SKU)
	assert.Equal(t, device.StatusPass, display.Status)
	assert.Equal(t, "PASS", display.StatusLabel)
	assert.Equal(t, "Verizon", display.CarrierDisplay)
}
