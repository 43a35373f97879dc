package helpers

import "testing"

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Förste, Christoph", "foerste, christoph"},
		{"Foerste, Christoph", "foerste, christoph"},
		{"MÜLLER", "mueller"},
		{"Müller", "mueller"},
		{"Mueller", "mueller"},
		{"Weiß", "weiss"},
		{"Jäger", "jaeger"},
		{"Öztürk", "oeztuerk"},
		{"  spaced   out  ", "spaced out"},
		{"Tabs\tand\nnewlines", "tabs and newlines"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeKeyEquivalence(t *testing.T) {
	// Names differing only by umlaut-vs-digraph spelling, case and
	// whitespace must produce the same key.
	groups := [][]string{
		{"Förste, Christoph", "Foerste, Christoph", "FÖRSTE,   CHRISTOPH", "  foerste, christoph "},
		{"Müller-Weiß, Jörg", "Mueller-Weiss, Joerg"},
		{"GFZ  Potsdam", "GFZ Potsdam", "gfz potsdam"},
	}

	for _, group := range groups {
		key := NormalizeKey(group[0])
		for _, other := range group[1:] {
			if got := NormalizeKey(other); got != key {
				t.Errorf("NormalizeKey(%q) = %q, want %q (same as %q)", other, got, key, group[0])
			}
		}
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	if got := NormalizeWhitespace("GFZ   German  Research\tCentre"); got != "GFZ German Research Centre" {
		t.Errorf("NormalizeWhitespace() = %q", got)
	}
	// Case must be preserved here, only whitespace collapses.
	if got := NormalizeWhitespace("  GFZ Potsdam "); got != "GFZ Potsdam" {
		t.Errorf("NormalizeWhitespace() = %q", got)
	}
}
