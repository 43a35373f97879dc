package helpers

import "testing"

func TestSplitPersonName(t *testing.T) {
	tests := []struct {
		in     string
		given  string
		family string
	}{
		{"Förste, Christoph", "Christoph", "Förste"},
		{"Foerste, Christoph", "Christoph", "Foerste"},
		{"Christoph Förste", "Christoph", "Förste"},
		{"Ada Augusta King Lovelace", "Ada", "Augusta King Lovelace"},
		{"Lovelace", "", "Lovelace"},
		{"van der Berg, Jan", "Jan", "van der Berg"},
		{"  Förste ,  Christoph  ", "Christoph", "Förste"},
		{"", "", ""},
	}

	for _, tt := range tests {
		given, family := SplitPersonName(tt.in)
		if given != tt.given || family != tt.family {
			t.Errorf("SplitPersonName(%q) = (%q, %q), want (%q, %q)",
				tt.in, given, family, tt.given, tt.family)
		}
	}
}

func TestSplitNames(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Förste, Christoph; Müller, Anna", []string{"Förste, Christoph", "Müller, Anna"}},
		{"A; ;B", []string{"A", "B"}},
		{"Jane Doe and John Roe", []string{"Jane Doe", "John Roe"}},
		{"Doe, Jane and John", []string{"Doe, Jane and John"}},
		{"Single Name", []string{"Single Name"}},
		{"", nil},
		{"  ", nil},
	}

	for _, tt := range tests {
		got := SplitNames(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("SplitNames(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitNames(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Drill core description</p>", "Drill core description"},
		{"Plain text", "Plain text"},
		{"a &amp; b", "a & b"},
		{"<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"<!-- note -->visible", "visible"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := StripMarkup(tt.in); got != tt.want {
			t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitPersonNameSecondCommaStays(t *testing.T) {
	given, family := SplitPersonName("Förste, Christoph, Jr.")
	if family != "Förste" {
		t.Errorf("family = %q, want Förste", family)
	}
	if given != "Christoph, Jr." {
		t.Errorf("given = %q, want %q", given, "Christoph, Jr.")
	}
}
