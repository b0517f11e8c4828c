// Package sanitize normalizes free-text input before it is validated and stored.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// plainText strips every tag and escapes what remains, so stored values are
// safe to drop into HTML without further escaping.
var plainText = bluemonday.StrictPolicy()

// Text trims surrounding whitespace and removes all HTML.
// Use for: admin names, event names and locations.
func Text(input string) string {
	return strings.TrimSpace(plainText.Sanitize(strings.TrimSpace(input)))
}

// Email trims and lowercases an address. Addresses are compared and stored in this form.
func Email(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
