package hazard

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks after NFD decomposition, so
// "Pasteurização" and "pasteurizacao" fold to the same key.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normalizes free text for comparison: trimmed, lower-cased and
// accent-stripped. Step names and hazard descriptions are user-typed, so
// all equality checks in the resolver and suggester go through this.
func Fold(s string) string {
	stripped, _, err := transform.String(foldTransformer, s)
	if err != nil {
		// Transform only fails on invalid UTF-8; fall back to the raw text.
		stripped = s
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}

// FoldEqual reports whether two strings are equal under Fold.
func FoldEqual(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Slug converts a product name to a lowercase, filesystem-safe identifier
// used to key per-product indexes. Runs of non-alphanumeric characters
// collapse to single underscores.
func Slug(s string) string {
	folded := Fold(s)
	var b strings.Builder
	lastUnderscore := true // avoid a leading underscore
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
