package iceq

import (
	"strings"

	"github.com/imeilookup/imeilookup/internal/device"
)

// field names a canonical device attribute resolved through aliases.
type field int

const (
	fieldMarketingName field = iota
	fieldTitleModel
	fieldTitleMemory
	fieldModel
	fieldModelName
	fieldIMEI
	fieldSerial
	fieldCarrier
	fieldSimLock
	fieldColor
	fieldMemory
	fieldRAM
	fieldFirstReceived
	fieldFunctionality
	fieldBatteryHealth
	fieldBCC
	fieldMDM
	fieldGrade
	fieldNotes
	fieldFailed
	fieldTester
	fieldRepairNotes
)

// aliases lists, per field, the key spellings ICE-Q has been seen to use, in priority order.
var aliases = map[field][]string{
	fieldMarketingName: {"marketing_name", "MarketingName", "marketingName"},
	fieldTitleModel:    {"model", "Model"},
	fieldTitleMemory:   {"memory_size", "MemorySize", "memorySize"},
	fieldModel:         {"model", "Model", "product", "Product"},
	fieldModelName:     {"marketing_name", "MarketingName", "marketingName", "model", "Model"},
	fieldIMEI:          {"imei", "IMEI", "Imei"},
	fieldSerial:        {"serial", "Serial", "serial_number", "SerialNumber"},
	fieldCarrier:       {"carrier", "Carrier", "carrier_name", "CarrierName"},
	fieldSimLock:       {"sim_lock", "SimLock", "simLock", "sim_lock_status", "SimLockStatus"},
	fieldColor:         {"color", "Color", "colour", "Colour"},
	fieldMemory:        {"memory_size", "MemorySize", "memorySize", "memory", "Memory"},
	fieldRAM:           {"ram", "RAM", "Ram", "memory_ram", "MemoryRAM"},
	fieldFirstReceived: {"date", "Date", "first_received", "FirstReceived"},
	fieldFunctionality: {
		"device_functionality", "DeviceFunctionality", "deviceFunctionality",
		"testing_finished", "testingFinished", "working", "Working", "status", "Status",
	},
	fieldBatteryHealth: {"battery_health", "BatteryHealth", "batteryHealth", "battery", "Battery"},
	fieldBCC:           {"cycle_count", "CycleCount", "cycleCount", "battery_cycle", "BatteryCycle"},
	fieldMDM:           {"mdm_lock", "MDMLock", "mdmLock", "mdm", "MDM"},
	fieldGrade:         {"cosmetic", "Cosmetic", "grade", "Grade", "condition", "Condition"},
	fieldNotes:         {"notes", "Notes", "note", "Note"},
	fieldFailed:        {"failed_diagnostics", "FailedDiagnostics", "failedDiagnostics", "failed", "Failed"},
	fieldTester:        {"user", "User", "tester", "Tester", "tester_name", "TesterName"},
	fieldRepairNotes:   {"parts_message", "PartsMessage", "partsMessage", "repair_notes", "RepairNotes"},
}

func resolve(rec device.Record, f field) string {
	return rec.Lookup(aliases[f]...)
}

// Normalize converts an ICE-Q payload into a device.Data.
func (c *Client) Normalize(payload device.Payload) device.Data {
	return Normalize(payload)
}

// Normalize converts an ICE-Q payload into a device.Data.
// For an array the last (most recent) transaction wins.
func Normalize(payload device.Payload) device.Data {
	raw := payload.Last()
	if raw == nil {
		return device.Data{}
	}

	title := resolve(raw, fieldMarketingName)
	if title == "" {
		title = resolve(raw, fieldTitleModel)
	}
	if memory := resolve(raw, fieldTitleMemory); memory != "" {
		title += " " + memory
	}

	return device.Data{
		Title:         strings.ToUpper(title),
		Model:         resolve(raw, fieldModel),
		ModelName:     resolve(raw, fieldModelName),
		IMEI:          resolve(raw, fieldIMEI),
		Serial:        resolve(raw, fieldSerial),
		Carrier:       resolve(raw, fieldCarrier),
		SimLock:       resolve(raw, fieldSimLock),
		Color:         resolve(raw, fieldColor),
		Memory:        resolve(raw, fieldMemory),
		RAM:           resolve(raw, fieldRAM),
		FirstReceived: device.FormatSlashDate(resolve(raw, fieldFirstReceived)),
		LatestUpdate:  latestUpdate(raw),
		Working:       device.ClassifyWorking(resolve(raw, fieldFunctionality)),
		BatteryHealth: resolve(raw, fieldBatteryHealth),
		BCC:           resolve(raw, fieldBCC),
		MDM:           resolve(raw, fieldMDM),
		Grade:         resolve(raw, fieldGrade),
		Notes:         resolve(raw, fieldNotes),
		Failed:        resolve(raw, fieldFailed),
		TesterName:    resolve(raw, fieldTester),
		RepairNotes:   resolve(raw, fieldRepairNotes),
		Raw:           payload.Raw,
	}
}

func latestUpdate(raw device.Record) string {
	date, clock := raw.Truthy("date"), raw.Truthy("time")
	switch {
	case date != "" && clock != "":
		return date + " " + clock
	case date != "":
		return date
	default:
		return clock
	}
}
