package graphjson

import (
	"bytes"
	"strings"
	"testing"

	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/graph"
)

func dumpResource() *graph.Resource {
	res := graph.NewResource()
	res.Identifier = "ICDP5054EEW1001"
	res.IdentifierType = graph.IdentifierIGSN
	res.IsSample = true
	res.SampleType = "Core"
	res.Material = "Sedite"
	res.PublicationYear = 2021
	res.Publisher = "GFZ Data Services"
	res.Titles = []graph.Title{
		{Value: "Lake Towuti drill core"},
		{Value: "TOW-1A-1", Type: graph.TitleOther},
	}
	res.Authors = []graph.Author{
		{
			Agent: graph.Agent{
				Kind:       graph.AgentPerson,
				GivenName:  "Christoph",
				FamilyName: "Förste",
				ORCID:      "0000-0002-1825-0097",
			},
			Position:  1,
			IsContact: true,
			Email:     "foerste@example.org",
			Roles:     []graph.Role{graph.RoleCreator, graph.RoleContactPerson},
		},
	}
	res.Dates = []graph.ResourceDate{
		{Type: graph.DateCollected, Start: "2020-02-01", End: "2020-02-29"},
	}
	res.GeoLocations = []graph.GeoLocation{
		{Place: "Lake Towuti", Point: &graph.GeoPoint{Latitude: -2.752, Longitude: 121.508}},
	}
	res.Sizes = []graph.Size{{Value: "12.5000", Unit: "cm", Type: "Length"}}
	res.GeologicalAges = []string{"Quaternary"}
	res.SetExtra("legacy_row", 42.0)
	res.SetExtra("upload_file", "batch-2024.csv")
	return res
}

func TestRoundTrip(t *testing.T) {
	f := &Format{}
	original := dumpResource()

	var buf bytes.Buffer
	opts := format.NewSerializeOptions()
	opts.Pretty = true
	if err := f.Serialize(&buf, []*graph.Resource{original}, opts); err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	dump := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(dump), `{`) {
		t.Fatal("dump should be a JSON object")
	}
	if !strings.Contains(dump, `"resources"`) {
		t.Error("dump should use the resources envelope")
	}
	// The protobuf struct must serialize as plain JSON, not as its
	// internal field representation.
	if !strings.Contains(dump, `"upload_file": "batch-2024.csv"`) {
		t.Errorf("extra fields not rendered as plain JSON:\n%s", dump)
	}
	if strings.Contains(dump, "Kind") || strings.Contains(dump, "structValue") {
		t.Errorf("extra fields leaked protobuf internals:\n%s", dump)
	}

	resources, err := f.Parse(strings.NewReader(dump), format.NewParseOptions())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(resources) != 1 {
		t.Fatalf("Parse() returned %d resources, want 1", len(resources))
	}
	got := resources[0]

	if got.ID != original.ID {
		t.Errorf("ID = %q, want %q", got.ID, original.ID)
	}
	if got.Identifier != "ICDP5054EEW1001" || got.IdentifierType != graph.IdentifierIGSN {
		t.Errorf("identifier = %q (%s)", got.Identifier, got.IdentifierType)
	}
	if !got.IsSample || got.SampleType != "Core" || got.Material != "Sedite" {
		t.Errorf("sample fields = %v/%q/%q", got.IsSample, got.SampleType, got.Material)
	}
	if len(got.Titles) != 2 || got.Titles[1].Type != graph.TitleOther {
		t.Fatalf("titles = %+v", got.Titles)
	}
	if len(got.Authors) != 1 {
		t.Fatalf("authors = %+v", got.Authors)
	}
	author := got.Authors[0]
	if author.Agent.FamilyName != "Förste" || author.Agent.ORCID != "0000-0002-1825-0097" {
		t.Errorf("author agent = %+v", author.Agent)
	}
	if !author.IsContact || author.Email != "foerste@example.org" {
		t.Errorf("contact fields = %v/%q", author.IsContact, author.Email)
	}
	if len(got.Dates) != 1 || got.Dates[0].Start != "2020-02-01" || got.Dates[0].End != "2020-02-29" {
		t.Errorf("dates = %+v", got.Dates)
	}
	if len(got.GeoLocations) != 1 || got.GeoLocations[0].Variant() != "point" {
		t.Fatalf("geoLocations = %+v", got.GeoLocations)
	}
	if got.GeoLocations[0].Point.Latitude != -2.752 {
		t.Errorf("latitude = %v", got.GeoLocations[0].Point.Latitude)
	}
	if len(got.Sizes) != 1 || got.Sizes[0].Type != "Length" {
		t.Errorf("sizes = %+v", got.Sizes)
	}

	// Extra fields round-trip with their types intact.
	if s := got.GetExtraString("upload_file"); s != "batch-2024.csv" {
		t.Errorf("extra upload_file = %q", s)
	}
	v, ok := got.GetExtra("legacy_row")
	if !ok {
		t.Fatal("extra legacy_row missing after round trip")
	}
	if n, ok := v.(float64); !ok || n != 42.0 {
		t.Errorf("extra legacy_row = %v, want 42", v)
	}
}

func TestParseBareArray(t *testing.T) {
	input := `[
		{"identifier": "10.5880/GFZ.b103", "identifierType": "DOI", "titles": [{"value": "Test"}]},
		{"identifier": "ICDP5054EEW1001", "identifierType": "IGSN", "isSample": true}
	]`

	f := &Format{}
	resources, err := f.Parse(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(resources) != 2 {
		t.Fatalf("Parse() returned %d resources, want 2", len(resources))
	}
	// Hand-written dumps have no internal id; one must be assigned.
	if resources[0].ID == "" {
		t.Error("parsed resource missing internal id")
	}
	if resources[1].Identifier != "ICDP5054EEW1001" || !resources[1].IsSample {
		t.Errorf("second resource = %+v", resources[1])
	}
}

func TestParseEmptyDump(t *testing.T) {
	f := &Format{}
	if _, err := f.Parse(strings.NewReader(`{"resources": []}`), nil); err == nil {
		t.Error("Parse() should fail on an empty dump")
	}
	if _, err := f.Parse(strings.NewReader("  "), nil); err == nil {
		t.Error("Parse() should fail on blank input")
	}
}

func TestCanParse(t *testing.T) {
	f := &Format{}
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"envelope", `{"resources": [{"id": "x"}]}`, true},
		{"bare array", `[{"identifier": "A", "identifierType": "IGSN"}]`, true},
		{"leading whitespace", "\n  {\"resources\": []}", true},
		{"datacite json", `{"data": {"type": "dois", "attributes": {}}}`, false},
		{"xml", `<resource xmlns="http://datacite.org/schema/kernel-4"/>`, false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.CanParse([]byte(tt.input)); got != tt.want {
				t.Errorf("CanParse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
