package phonecheck

import (
	"regexp"
	"strings"

	"github.com/imeilookup/imeilookup/internal/device"
)

var (
	financeTypePattern         = regexp.MustCompile(`(?i)Finance\s+Type:\s*([A-Za-z]+)`)
	financeTypeFallbackPattern = regexp.MustCompile(`(?i)Finance\s+Type:\s*([A-Za-z]+)(?:\s|$)`)
)

// Markers that can directly follow the finance type in a raw ESN response.
var financeTypeTerminators = []string{"operating", "esim", "esn"}

// Normalize converts a Phonecheck payload into a device.Data.
// Arrays use their first element; an empty payload yields an all-empty record.
func (c *Client) Normalize(payload device.Payload) device.Data {
	return Normalize(payload)
}

// Normalize converts a Phonecheck payload into a device.Data.
func Normalize(payload device.Payload) device.Data {
	raw := payload.First()
	if raw == nil {
		return device.Data{}
	}

	esn := decodeESNResponse(raw["ESNResponse"])

	carrier := raw.Truthy("Carrier")
	if carrier == "" {
		carrier = carrierFromESN(esn)
	}

	title := raw.Truthy("Model")
	if memory := raw.Truthy("Memory"); memory != "" {
		title += " " + memory
	}

	return device.Data{
		Title:         strings.ToUpper(title),
		Model:         raw.Truthy("Model#"),
		ModelName:     raw.Truthy("Model"),
		IMEI:          raw.Truthy("IMEI"),
		Serial:        raw.Truthy("Serial"),
		Carrier:       carrier,
		Color:         raw.Truthy("Color"),
		Memory:        raw.Truthy("Memory"),
		RAM:           raw.Truthy("Ram"),
		FirstReceived: device.FormatDate(raw.Truthy("DeviceCreatedDate")),
		LatestUpdate:  device.FormatDate(raw.Truthy("DeviceUpdatedDate")),
		Working:       raw.Truthy("Working"),
		BatteryHealth: raw.Truthy("BatteryHealthPercentage"),
		BCC:           raw.Truthy("BatteryCycle"),
		MDM:           raw.Truthy("MDM"),
		Grade:         raw.Truthy("Grade"),
		Notes:         raw.Truthy("Notes"),
		Failed:        raw.Truthy("Failed"),
		TesterName:    raw.Truthy("TesterName"),
		RepairNotes:   raw.Truthy("Custom1"),
		FinanceType:   financeType(esn),
		Raw:           payload.Raw,
	}
}

// decodeESNResponse accepts ESNResponse either as embedded JSON text or as an
// already decoded value. Malformed text is treated as absent.
func decodeESNResponse(v any) any {
	if !device.IsTruthy(v) {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return v
	}
	decoded, err := device.DecodeValue([]byte(s))
	if err != nil {
		return nil
	}
	return decoded
}

func carrierFromESN(esn any) string {
	items, ok := esn.([]any)
	if !ok {
		return ""
	}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if carrier := device.Record(obj).Truthy("Carrier"); carrier != "" {
			return carrier
		}
	}
	return ""
}

// financeType scans esnApiResults (or the ESN array itself) for a
// "Finance Type: <letters>" marker in RawResponse.
func financeType(esn any) string {
	var results []any
	switch t := esn.(type) {
	case map[string]any:
		results, _ = t["esnApiResults"].([]any)
	case []any:
		results = t
	}

	for _, result := range results {
		obj, ok := result.(map[string]any)
		if !ok {
			continue
		}
		text, ok := obj["RawResponse"].(string)
		if !ok || text == "" {
			continue
		}
		if ft := matchFinanceType(text); ft != "" {
			return ft
		}
		if m := financeTypeFallbackPattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// matchFinanceType returns the longest letter run after "Finance Type:" that is
// directly followed by a known terminator or by the end of the text.
func matchFinanceType(text string) string {
	for _, loc := range financeTypePattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[2], loc[3]
		for n := end; n > start; n-- {
			if followedByTerminator(text[n:]) {
				return text[start:n]
			}
		}
	}
	return ""
}

func followedByTerminator(rest string) bool {
	if rest == "" {
		return true
	}
	lower := strings.ToLower(rest)
	for _, term := range financeTypeTerminators {
		if strings.HasPrefix(lower, term) {
			return true
		}
	}
	return false
}
