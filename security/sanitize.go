package security

import "strings"

var inputReplacer = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// Sanitize escapes markup-significant characters in free-form input
// and trims surrounding whitespace. The ampersand is deliberately left
// alone so the function is idempotent: sanitizing already sanitized
// text changes nothing.
func Sanitize(input string) string {
	return strings.TrimSpace(inputReplacer.Replace(input))
}
