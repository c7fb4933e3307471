package device

import (
	"strings"
	"time"
)

// DisplayDateLayout is the layout of every normalized date: UTC, minute precision.
const DisplayDateLayout = "2006-01-02 15:04"

// Layouts accepted by FormatDate. Values without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04:05",
	"1/2/2006",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 2 2006 15:04:05 GMT-0700",
}

// FormatDate normalizes a date string to DisplayDateLayout.
// Unparseable input is returned unchanged; empty input yields "".
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(DisplayDateLayout)
		}
	}
	return s
}

// FormatSlashDate normalizes an MM/DD/YYYY date, falling back to FormatDate.
func FormatSlashDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "/")
	if len(parts) == 3 {
		iso := parts[2] + "-" + pad2(parts[0]) + "-" + pad2(parts[1])
		if t, err := time.Parse("2006-01-02", iso); err == nil {
			return t.Format(DisplayDateLayout)
		}
	}
	return FormatDate(s)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
