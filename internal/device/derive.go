package device

import (
	"strings"
)

// Status is the pass/fail/pending classification of a device test run.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusPending Status = "pending"
	StatusUnknown Status = ""
)

// Display holds the fields derived from a normalized record for rendering.
type Display struct {
	SKU            string `json:"sku"`
	Status         Status `json:"status"`
	StatusLabel    string `json:"statusLabel"`
	CarrierDisplay string `json:"carrierDisplay"`
}

// Derive computes the display fields for a record.
func Derive(data Data, provider Provider) Display {
	return Display{
		SKU:            GenerateSKU(data, provider),
		Status:         StatusOf(data.Working),
		StatusLabel:    StatusLabel(data.Working),
		CarrierDisplay: CarrierDisplay(data, provider),
	}
}

// GenerateSKU joins model name, memory, RAM, color and carrier with " - ",
// skipping empty parts. For ICE-Q the SIM lock status is appended to the carrier.
func GenerateSKU(data Data, provider Provider) string {
	carrier := strings.TrimSpace(data.Carrier)
	if lock := simLockStatus(data, provider); lock != "" {
		if carrier != "" {
			carrier = carrier + " (" + lock + ")"
		} else {
			carrier = lock
		}
	}

	candidates := []string{
		strings.TrimSpace(data.ModelName),
		strings.TrimSpace(data.Memory),
		strings.TrimSpace(data.RAM),
		strings.TrimSpace(data.Color),
		carrier,
	}

	parts := make([]string, 0, len(candidates))
	for _, part := range candidates {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " - ")
}

// CarrierDisplay returns the carrier for display, "N/A" when unknown.
func CarrierDisplay(data Data, provider Provider) string {
	carrier := data.Carrier
	if carrier == "" {
		carrier = "N/A"
	}
	lock := simLockStatus(data, provider)
	if lock == "" {
		return carrier
	}
	if carrier == "N/A" {
		return lock
	}
	return carrier + " (" + lock + ")"
}

func simLockStatus(data Data, provider Provider) string {
	if provider != ProviderICEQ {
		return ""
	}
	lock := strings.TrimSpace(data.SimLock)
	if lock == "" || lock == "N/A" {
		return ""
	}
	return strings.ToUpper(lock)
}

// ClassifyWorking maps a provider working/functionality value to yes, no or pending.
// Unrecognized values are returned unchanged.
func ClassifyWorking(raw string) string {
	switch StatusOf(raw) {
	case StatusPass:
		return WorkingYes
	case StatusFail:
		return WorkingNo
	case StatusPending:
		return WorkingPending
	default:
		return raw
	}
}

// StatusOf classifies a working value, case-insensitively.
func StatusOf(working string) Status {
	switch strings.ToLower(working) {
	case "yes", "pass", "pass*":
		return StatusPass
	case "no", "fail", "fail*":
		return StatusFail
	case "pending", "incomplete", "incomplete*":
		return StatusPending
	default:
		return StatusUnknown
	}
}

// StatusLabel returns PASS, FAILED or PENDING, or the raw value when unclassified.
func StatusLabel(working string) string {
	switch StatusOf(working) {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAILED"
	case StatusPending:
		return "PENDING"
	default:
		return working
	}
}
