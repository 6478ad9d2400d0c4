package facematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeIdentityKey canonicalizes an identity key for lookup: lowercase,
// no diacritics, surrounding whitespace trimmed, inner runs of whitespace
// collapsed to a single space. Registration numbers and names entered at the
// gate and at enrollment time must land on the same key.
func NormalizeIdentityKey(key string) string {
	key = RemoveDiacritics(key)
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.Join(strings.Fields(key), " ")
}
