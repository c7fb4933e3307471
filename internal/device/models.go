// Package device provides the provider-agnostic device record returned by IMEI lookups,
// along with the formatting and derivation rules shared by the provider adapters.
package device

import (
	"encoding/json"
)

// Provider identifies an external verification service.
type Provider string

const (
	ProviderPhonecheck Provider = "phonecheck"
	ProviderICEQ       Provider = "iceq"
)

// Providers returns every supported provider in display order.
func Providers() []Provider {
	return []Provider{ProviderPhonecheck, ProviderICEQ}
}

// ParseProvider converts a path or query value into a Provider.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderPhonecheck, ProviderICEQ:
		return Provider(s), true
	default:
		return "", false
	}
}

// String returns the provider name.
func (p Provider) String() string {
	return string(p)
}

// Working status values produced by ClassifyWorking.
const (
	WorkingYes     = "yes"
	WorkingNo      = "no"
	WorkingPending = "pending"
)

// Data is the normalized device record.
// Every field is a plain string; a missing value is the empty string.
type Data struct {
	Title         string `json:"title"`
	Model         string `json:"model"`
	ModelName     string `json:"model_name"`
	IMEI          string `json:"imei"`
	Serial        string `json:"serial"`
	Carrier       string `json:"carrier"`
	SimLock       string `json:"sim_lock"`
	Color         string `json:"color"`
	Memory        string `json:"memory"`
	RAM           string `json:"ram"`
	FirstReceived string `json:"first_received"`
	LatestUpdate  string `json:"latest_update"`
	Working       string `json:"working"`
	BatteryHealth string `json:"battery_health"`
	BCC           string `json:"bcc"`
	MDM           string `json:"mdm"`
	Grade         string `json:"grade"`
	Notes         string `json:"notes"`
	Failed        string `json:"failed"`
	TesterName    string `json:"tester_name"`
	RepairNotes   string `json:"repair_notes"`
	FinanceType   string `json:"finance_type,omitempty"`

	// Raw is the provider payload the record was built from, kept for debug display.
	Raw json.RawMessage `json:"_rawData,omitempty"`
}

// IsEmpty reports whether no field carries a value.
func (d Data) IsEmpty() bool {
	for _, v := range d.Values() {
		if v != "" {
			return false
		}
	}
	return true
}

// Values returns every string field in declaration order.
func (d Data) Values() []string {
	return []string{
		d.Title, d.Model, d.ModelName, d.IMEI, d.Serial, d.Carrier, d.SimLock,
		d.Color, d.Memory, d.RAM, d.FirstReceived, d.LatestUpdate, d.Working,
		d.BatteryHealth, d.BCC, d.MDM, d.Grade, d.Notes, d.Failed, d.TesterName,
		d.RepairNotes, d.FinanceType,
	}
}
