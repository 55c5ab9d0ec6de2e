// Package slug derives URL-safe identifiers from free-form titles.
package slug

import (
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make returns the lowercase, hyphen-separated slug for title.
// Accents are folded ("Café" -> "cafe"), other scripts are transliterated
// ("Straße" -> "strasse", "Москва" -> "moskva") and every run of characters
// outside [a-z0-9] becomes a single hyphen. Identical titles always yield
// identical slugs; a title with no letters or digits yields "".
func Make(title string) string {
	folded, _, err := transform.String(foldAccents(), title)
	if err != nil {
		folded = title
	}
	folded = unidecode.Unidecode(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// foldAccents builds a fresh chain each call; transform.Transformer values
// carry state and are not safe for concurrent use.
func foldAccents() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
