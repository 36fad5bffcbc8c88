package model

import (
	"encoding/json"
	"strings"
)

// FlexString accepts string, number, bool, or null payloads from the vision
// model. The model is asked for strings but occasionally emits bare numbers
// for phone or account fields.
type FlexString string

// UnmarshalJSON decodes strings as-is and renders scalars through their
// JSON text. null becomes the empty string.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	*f = ""

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	// Numbers and booleans keep their literal form.
	*f = FlexString(trimmed)
	return nil
}

// String returns the underlying value.
func (f FlexString) String() string {
	return string(f)
}

// Empty reports whether the value is absent after trimming.
func (f FlexString) Empty() bool {
	return strings.TrimSpace(string(f)) == ""
}
