package helpers

import (
	"regexp"
	"strings"
)

// Pattern for "Family, Given" format. Only the first comma splits; a
// second comma stays inside the given part.
var invertedNameRegex = regexp.MustCompile(`^([^,]+),\s*(.+)$`)

// SplitPersonName splits a free-text personal name into given and family
// parts. A comma marks the inverted "Family, Given" form; without one the
// first token is the given name and the remainder the family name. Explicit
// given/family columns always take precedence over this split; callers only
// reach it for free-text collector fields.
func SplitPersonName(raw string) (given, family string) {
	raw = NormalizeWhitespace(raw)
	if raw == "" {
		return "", ""
	}

	if matches := invertedNameRegex.FindStringSubmatch(raw); matches != nil {
		return strings.TrimSpace(matches[2]), strings.TrimSpace(matches[1])
	}

	parts := strings.Fields(raw)
	if len(parts) == 1 {
		// Single token: no given part to speak of.
		return "", parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// IsInvertedName reports whether a name appears to be in "Family, Given"
// format.
func IsInvertedName(name string) bool {
	return strings.Contains(name, ",")
}

// SplitNames splits a string containing multiple names. Semicolons win;
// " and " is honored only when no comma is present (a comma means inverted
// single-name form, where "and" may be part of the given names).
func SplitNames(names string) []string {
	if strings.TrimSpace(names) == "" {
		return nil
	}

	if strings.Contains(names, ";") {
		return cleanNameList(strings.Split(names, ";"))
	}

	if strings.Contains(names, " and ") && !strings.Contains(names, ",") {
		return cleanNameList(strings.Split(names, " and "))
	}

	return []string{NormalizeWhitespace(names)}
}

func cleanNameList(parts []string) []string {
	var result []string
	for _, p := range parts {
		p = NormalizeWhitespace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
