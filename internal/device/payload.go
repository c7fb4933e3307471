package device

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PayloadKind tags the shape of a raw provider response.
type PayloadKind int

const (
	// PayloadEmpty is a null body, an empty body or a "no content" answer.
	PayloadEmpty PayloadKind = iota
	// PayloadObject is a single JSON object.
	PayloadObject
	// PayloadArray is a JSON array of objects.
	PayloadArray
)

// Payload is a decoded provider response body.
// Exactly one of Object or Array is populated, according to Kind.
type Payload struct {
	Kind   PayloadKind
	Object Record
	Array  []Record

	// Raw is the verbatim response body.
	Raw json.RawMessage
}

// DecodePayload decodes a provider response body into a Payload.
// Array elements that are not objects are kept as nil records. A bare JSON
// scalar such as "no device" carries no record and decodes as PayloadEmpty.
func DecodePayload(body []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Payload{Kind: PayloadEmpty}, nil
	}

	raw := json.RawMessage(append([]byte(nil), trimmed...))

	switch trimmed[0] {
	case '{':
		rec, err := decodeRecord(trimmed)
		if err != nil {
			return Payload{}, fmt.Errorf("decoding object payload: %w", err)
		}
		return Payload{Kind: PayloadObject, Object: rec, Raw: raw}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Payload{}, fmt.Errorf("decoding array payload: %w", err)
		}
		records := make([]Record, 0, len(items))
		for _, item := range items {
			rec, err := decodeRecord(item)
			if err != nil {
				records = append(records, nil)
				continue
			}
			records = append(records, rec)
		}
		return Payload{Kind: PayloadArray, Array: records, Raw: raw}, nil
	default:
		if json.Valid(trimmed) {
			return Payload{Kind: PayloadEmpty, Raw: raw}, nil
		}
		return Payload{}, fmt.Errorf("unexpected payload starting with %q", trimmed[0])
	}
}

// ObjectPayload wraps a single record, mainly for tests and fixtures.
func ObjectPayload(rec Record) Payload {
	raw, _ := json.Marshal(rec)
	return Payload{Kind: PayloadObject, Object: rec, Raw: raw}
}

// ArrayPayload wraps a list of records.
func ArrayPayload(recs ...Record) Payload {
	raw, _ := json.Marshal(recs)
	return Payload{Kind: PayloadArray, Array: recs, Raw: raw}
}

// IsEmpty reports whether the payload carries no record at all.
func (p Payload) IsEmpty() bool {
	switch p.Kind {
	case PayloadObject:
		return p.Object == nil
	case PayloadArray:
		return len(p.Array) == 0
	default:
		return true
	}
}

// First returns the first record, or the object itself.
func (p Payload) First() Record {
	switch p.Kind {
	case PayloadObject:
		return p.Object
	case PayloadArray:
		if len(p.Array) > 0 {
			return p.Array[0]
		}
	}
	return nil
}

// Last returns the last record, or the object itself.
func (p Payload) Last() Record {
	switch p.Kind {
	case PayloadObject:
		return p.Object
	case PayloadArray:
		if len(p.Array) > 0 {
			return p.Array[len(p.Array)-1]
		}
	}
	return nil
}

// Record is one decoded JSON object from a provider.
// Numbers are kept as json.Number so identifiers survive without float rounding.
type Record map[string]any

func decodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DecodeValue decodes arbitrary JSON the same way records are decoded.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Truthy returns the field as a string when it holds a truthy value:
// null, "", 0 and false all yield "".
func (r Record) Truthy(key string) string {
	if r == nil {
		return ""
	}
	v, ok := r[key]
	if !ok || !IsTruthy(v) {
		return ""
	}
	return Stringify(v)
}

// Lookup returns the first candidate key holding a non-null, non-empty value.
func (r Record) Lookup(keys ...string) string {
	if r == nil {
		return ""
	}
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		return Stringify(v)
	}
	return ""
}

// IsTruthy mirrors loose truthiness for decoded JSON values.
func IsTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	default:
		return true
	}
}

// Stringify renders a decoded JSON value as display text.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSpace(string(b))
	}
}
