// Package textnorm canonicalizes free-text answers for comparison.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letterFolds covers Romanian letters in both the comma-below and the legacy cedilla forms.
var letterFolds = strings.NewReplacer(
	"ă", "a",
	"â", "a",
	"î", "i",
	"ș", "s",
	"ş", "s",
	"ț", "t",
	"ţ", "t",
)

// Normalize lowercases text, strips combining marks and folds accented letters
// to their base form. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	lowered := strings.ToLower(text)

	stripped, _, err := transform.String(stripMarks(), lowered)
	if err != nil {
		stripped = lowered
	}
	return strings.TrimSpace(letterFolds.Replace(stripped))
}

// stripMarks returns a fresh chain; transform.Chain is stateful and not safe to share.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Equal reports whether two answers match after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
