// Package fold implements the case- and accent-insensitive string matching
// used for search, group lookup and sorting. Accents are stripped by NFD
// decomposition followed by removal of combining marks.
package fold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold returns s lowercased, trimmed and with diacritics removed.
func Fold(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Equal reports whether a and b match ignoring case, accents and
// surrounding whitespace.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Contains reports whether s contains substr ignoring case and accents.
func Contains(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}
