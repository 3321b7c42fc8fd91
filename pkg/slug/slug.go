package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Letters that have no decomposed ASCII base.
var special = strings.NewReplacer(
	"ı", "i",
	"ß", "ss",
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
	"ł", "l",
	"&", " and ",
)

// Generate creates a URL-friendly slug from a product or brand name.
// Accented letters fold to their ASCII base.
//
// Examples:
//   - "Café Niño" → "cafe-nino"
//   - "Barnes & Noble" → "barnes-and-noble"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = special.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
