package graph

import "testing"

func TestDetectIdentifierType(t *testing.T) {
	tests := []struct {
		value string
		want  IdentifierType
	}{
		{"10.58052/IGSN.GFZ123456", IdentifierDOI},
		{"https://doi.org/10.5880/GFZ.1.1.2024.001", IdentifierDOI},
		{"doi:10.5880/GFZ.1.1.2024.001", IdentifierDOI},
		{"igsn:ICDP5054ESYI201", IdentifierIGSN},
		{"https://igsn.org/ICDP5054ESYI201", IdentifierIGSN},
		{"ICDP5054ESYI201", IdentifierIGSN},
		{"0000-0002-1825-0097", IdentifierORCID},
		{"https://orcid.org/0000-0002-1825-0097", IdentifierORCID},
		{"04z8jg394", IdentifierROR},
		{"https://ror.org/04z8jg394", IdentifierROR},
		{"2027.42/12345", IdentifierHandle},
		{"https://example.org/things/1", IdentifierURL},
		{"", IdentifierUnspecified},
		{"short", IdentifierUnspecified},
	}

	for _, tt := range tests {
		if got := DetectIdentifierType(tt.value); got != tt.want {
			t.Errorf("DetectIdentifierType(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		value  string
		idType IdentifierType
		want   string
	}{
		{"https://doi.org/10.5880/GFZ.1.1.2024.001", IdentifierDOI, "10.5880/GFZ.1.1.2024.001"},
		{"doi:10.5880/GFZ.1.1.2024.001", IdentifierDOI, "10.5880/GFZ.1.1.2024.001"},
		{"igsn:icdp5054esyi201", IdentifierIGSN, "ICDP5054ESYI201"},
		{"https://igsn.org/ICDP5054ESYI201", IdentifierIGSN, "ICDP5054ESYI201"},
		{"10.58052/IGSN.gfz001", IdentifierIGSN, "10.58052/IGSN.gfz001"},
		{"https://orcid.org/0000-0002-1825-0097", IdentifierORCID, "0000-0002-1825-0097"},
		{"https://ror.org/04z8jg394", IdentifierROR, "04z8jg394"},
		{"  10.5880/x/y  ", IdentifierDOI, "10.5880/x/y"},
	}

	for _, tt := range tests {
		if got := NormalizeIdentifier(tt.value, tt.idType); got != tt.want {
			t.Errorf("NormalizeIdentifier(%q, %q) = %q, want %q", tt.value, tt.idType, got, tt.want)
		}
	}
}

func TestIdentifierURI(t *testing.T) {
	tests := []struct {
		value  string
		idType IdentifierType
		want   string
	}{
		{"10.5880/GFZ.1.1.2024.001", IdentifierDOI, "https://doi.org/10.5880/GFZ.1.1.2024.001"},
		{"ICDP5054ESYI201", IdentifierIGSN, "https://igsn.org/ICDP5054ESYI201"},
		{"10.58052/IGSN.GFZ001", IdentifierIGSN, "https://doi.org/10.58052/IGSN.GFZ001"},
		{"0000-0002-1825-0097", IdentifierORCID, "https://orcid.org/0000-0002-1825-0097"},
	}

	for _, tt := range tests {
		if got := IdentifierURI(tt.value, tt.idType); got != tt.want {
			t.Errorf("IdentifierURI(%q, %q) = %q, want %q", tt.value, tt.idType, got, tt.want)
		}
	}
}
