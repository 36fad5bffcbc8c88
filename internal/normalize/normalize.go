// Package normalize canonicalizes and validates extracted identity fields.
// All functions are pure and idempotent: feeding a canonical value back in
// yields the same value.
package normalize

import (
	"regexp"
	"strings"
)

// Closed-world numbering plan: Polish numbers only. Anything outside
// +48 plus nine digits is rejected, not reformatted.
var (
	phoneCanonical = regexp.MustCompile(`^\+48\d{9}$`)
	phoneStrip     = regexp.MustCompile(`[^\d+]`)
	ibanCanonical  = regexp.MustCompile(`^PL\d{26}$`)
	emailShape     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

const subscriberNumberLen = 9

// Phone canonicalizes a Polish phone number to +48XXXXXXXXX. Returns the
// empty string for anything that cannot be brought into that exact shape.
func Phone(raw string) string {
	clean := phoneStrip.ReplaceAllString(raw, "")
	if clean == "" {
		return ""
	}
	if !strings.HasPrefix(clean, "+") {
		switch {
		case strings.HasPrefix(clean, "48"):
			clean = "+" + clean
		case len(clean) == subscriberNumberLen:
			clean = "+48" + clean
		default:
			return ""
		}
	}

	if !phoneCanonical.MatchString(clean) {
		return ""
	}
	return clean
}

// BankAccount canonicalizes a Polish IBAN to PL plus 26 digits, uppercase
// and without spaces. Format check only, no checksum. Returns the empty
// string when the shape does not match.
func BankAccount(raw string) string {
	clean := strings.ToUpper(strings.ReplaceAll(raw, " ", ""))
	if !ibanCanonical.MatchString(clean) {
		return ""
	}
	return clean
}

// Email returns the trimmed address if it has a plausible
// local-part@domain.tld shape, otherwise the empty string. No
// deliverability check.
func Email(raw string) string {
	clean := strings.TrimSpace(raw)
	if !emailShape.MatchString(clean) {
		return ""
	}
	return clean
}

// Text trims a free-text field. Whitespace-only input collapses to absent.
func Text(raw string) string {
	return strings.TrimSpace(raw)
}
