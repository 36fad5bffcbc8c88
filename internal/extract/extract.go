// Package extract recovers JSON objects from noisy language-model output.
//
// Model replies usually contain a JSON object, but often wrapped in markdown
// code fences or surrounded by prose. Recovery is a staged fallback: labeled
// fence, then generic fence, then slicing between the outermost braces, then
// a plain decode. Well-formed bare JSON takes the fast path untouched.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoJSON is returned when no parseable JSON object can be recovered.
var ErrNoJSON = eris.New("no JSON object found in text")

const (
	fenceJSON    = "```json"
	fenceGeneric = "```"
)

// Object returns the JSON object recovered from text. The returned slice is
// guaranteed to be valid JSON.
func Object(text string) (string, error) {
	candidate := strings.TrimSpace(text)

	if body, ok := fencedBlock(candidate, fenceJSON); ok {
		candidate = body
	} else if body, ok := fencedBlock(candidate, fenceGeneric); ok {
		candidate = body
	}

	candidate = strings.TrimSpace(candidate)
	if !strings.HasPrefix(candidate, "{") {
		start := strings.Index(candidate, "{")
		end := strings.LastIndex(candidate, "}")
		if start == -1 || end <= start {
			return "", eris.Wrap(ErrNoJSON, "no braces to slice")
		}
		candidate = candidate[start : end+1]
	}

	if !json.Valid([]byte(candidate)) {
		return "", eris.Wrap(ErrNoJSON, "candidate slice is not valid JSON")
	}

	return candidate, nil
}

// Unmarshal recovers the JSON object from text and decodes it into v.
func Unmarshal(text string, v any) error {
	obj, err := Object(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return eris.Wrap(err, "decode recovered JSON")
	}
	return nil
}

// fencedBlock returns the content between the first fence pair opened by
// marker. An unterminated fence is not a block.
func fencedBlock(text, marker string) (string, bool) {
	start := strings.Index(text, marker)
	if start == -1 {
		return "", false
	}
	rest := text[start+len(marker):]
	end := strings.Index(rest, fenceGeneric)
	if end == -1 {
		return "", false
	}
	return rest[:end], true
}
