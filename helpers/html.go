package helpers

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlTagRegex     = regexp.MustCompile(`<[^>]*>`)
	htmlCommentRegex = regexp.MustCompile(`<!--[\s\S]*?-->`)
	brTagRegex       = regexp.MustCompile(`<br\s*/?>`)
	blockEndRegex    = regexp.MustCompile(`</(?:p|div|li|h[1-6]|blockquote|tr)>`)
)

// StripMarkup removes HTML tags from a string and decodes HTML entities.
// Legacy exports carry stray markup in description and comment fields;
// the graph stores plain text only.
func StripMarkup(s string) string {
	if s == "" {
		return ""
	}

	s = htmlCommentRegex.ReplaceAllString(s, "")

	// Block-level closing tags become newlines so sentences do not fuse.
	s = blockEndRegex.ReplaceAllString(s, "\n")
	s = brTagRegex.ReplaceAllString(s, "\n")

	s = htmlTagRegex.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	return NormalizeWhitespace(s)
}

// IsMarkup checks if a string appears to contain HTML markup.
func IsMarkup(s string) bool {
	return htmlTagRegex.MatchString(s)
}

// CleanText strips markup when present and normalizes whitespace either way.
func CleanText(s string) string {
	if IsMarkup(s) {
		return StripMarkup(s)
	}
	return strings.TrimSpace(NormalizeWhitespace(s))
}
