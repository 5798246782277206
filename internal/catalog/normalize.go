package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Lèvres" -> "Levres").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeCategory normalizes a category key for comparison
// (lowercase, no diacritics, spaces for dashes and underscores).
func NormalizeCategory(category string) string {
	category = RemoveDiacritics(category)
	category = strings.ToLower(category)
	category = strings.NewReplacer("-", " ", "_", " ").Replace(category)
	return strings.TrimSpace(category)
}
