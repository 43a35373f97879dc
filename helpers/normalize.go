// Package helpers provides text primitives shared by the parsers and the
// identity resolver: comparison-key normalization, personal-name splitting
// and markup stripping.
package helpers

import "strings"

// umlautReplacer folds German umlauts and eszett into their digraph
// spellings. This is deliberately not Unicode decomposition: "Förste" and
// "Foerste" are the same name in bibliographic data, while NFD folding
// would turn ö into a bare o and miss the match.
var umlautReplacer = strings.NewReplacer(
	"ö", "oe",
	"ä", "ae",
	"ü", "ue",
	"Ö", "Oe",
	"Ä", "Ae",
	"Ü", "Ue",
	"ß", "ss",
)

// NormalizeKey builds the comparison key for identity matching: umlauts
// folded to digraphs, lower-cased, surrounding whitespace trimmed and
// internal runs collapsed to single spaces. Pure and total; the display
// string is never replaced by its key.
func NormalizeKey(s string) string {
	s = umlautReplacer.Replace(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeWhitespace collapses all whitespace runs to single spaces and
// trims. Case is preserved; institution dedup lowercases separately.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
