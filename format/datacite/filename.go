package datacite

import (
	"strings"

	"github.com/McNamara84/ernie-sub002/graph"
)

// ExportFilename derives a safe output filename for a resource: the
// public identifier with filesystem-hostile runes folded to '-', or the
// internal id when the resource has none.
func ExportFilename(res *graph.Resource, ext string) string {
	base := sanitizeFilename(res.Identifier)
	if base == "" {
		base = "resource-" + res.ID
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-.")
}
