package notes

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/imeilookup/imeilookup/internal/device"
)

// decodeHistory converts a stored history value into entries. Older documents
// keep history as a keyed map rather than a list; map values are taken in key
// order. An element that is not an object becomes a zero HistoryEntry so the
// entry count always matches the stored element count. Anything else decodes
// to no history.
func decodeHistory(v any) []HistoryEntry {
	switch t := v.(type) {
	case []any:
		entries := make([]HistoryEntry, 0, len(t))
		for _, item := range t {
			entries = append(entries, decodeHistoryEntry(item))
		}
		return entries
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		entries := make([]HistoryEntry, 0, len(t))
		for _, k := range keys {
			entries = append(entries, decodeHistoryEntry(t[k]))
		}
		return entries
	default:
		return []HistoryEntry{}
	}
}

func decodeHistoryEntry(v any) HistoryEntry {
	obj, ok := v.(map[string]any)
	if !ok {
		return HistoryEntry{}
	}
	rec := device.Record(obj)
	return HistoryEntry{
		Note:      rec.Lookup("note"),
		Date:      rec.Lookup("date"),
		Station:   rec.Lookup("station"),
		Timestamp: decodeTimestamp(obj["timestamp"]),
	}
}

// decodeTimestamp accepts native times, RFC 3339 text and exported
// {seconds, nanoseconds} objects.
func decodeTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts
		}
	case map[string]any:
		secs, ok := number(t, "seconds", "_seconds")
		if !ok {
			return time.Time{}
		}
		nanos, _ := number(t, "nanoseconds", "_nanoseconds")
		return time.Unix(secs, nanos).UTC()
	}
	return time.Time{}
}

func number(obj map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		switch n := obj[k].(type) {
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i, true
			}
		case float64:
			return int64(n), true
		case int64:
			return n, true
		case int:
			return int64(n), true
		}
	}
	return 0, false
}

// encodeHistory renders entries as plain maps for stores without struct mapping.
func encodeHistory(entries []HistoryEntry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"note":      e.Note,
			"date":      e.Date,
			"station":   e.Station,
			"timestamp": e.Timestamp,
		})
	}
	return out
}
