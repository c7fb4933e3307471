package device

import (
	"regexp"
	"strings"
)

// InputType classifies a lookup identifier.
type InputType string

const (
	InputIMEI   InputType = "imei"
	InputSerial InputType = "serial"
)

var (
	imeiPattern     = regexp.MustCompile(`^\d{8,15}$`)
	serialPattern   = regexp.MustCompile(`^[A-Za-z0-9]{8,15}$`)
	nonAlnumPattern = regexp.MustCompile(`[^A-Za-z0-9]`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
)

// Validation messages shown to technicians.
const (
	MsgInvalidCharacters = "Please enter 8-15 letters and numbers (no spaces or symbols)."
	MsgInvalidIMEI       = "IMEI must be 8-15 digits."
	MsgInvalidSerial     = "Serial must be 8-15 letters and numbers."
)

// DetectInputType returns InputIMEI for 8-15 digits, InputSerial for 8-15
// alphanumerics and "" for anything else.
func DetectInputType(input string) InputType {
	switch {
	case imeiPattern.MatchString(input):
		return InputIMEI
	case serialPattern.MatchString(input):
		return InputSerial
	default:
		return ""
	}
}

// ValidateInput trims the identifier and checks it is a usable IMEI or serial.
func ValidateInput(input string) (string, InputType, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", ErrInputRequired
	}

	if kind := DetectInputType(input); kind != "" {
		return input, kind, nil
	}

	msg := MsgInvalidSerial
	switch {
	case nonAlnumPattern.MatchString(input):
		msg = MsgInvalidCharacters
	case digitsPattern.MatchString(input):
		msg = MsgInvalidIMEI
	}
	return input, "", &ValidationError{Input: input, Message: msg}
}
