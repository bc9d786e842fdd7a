package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds s into catalog key form: accents stripped, lower case, and
// only letters, digits and '%' kept. "Crit Rate" becomes "critrate" and
// "HP%" becomes "hp%".
//
// Keys are normalized once when a Snapshot is built and inputs are normalized
// once at resolver entry, so both sides always compare in the same form.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// Transformers and casers carry state and must not be shared between goroutines.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = cases.Lower(language.Und).String(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '%' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
