package igsncsv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/graph"
)

func batchResource() *graph.Resource {
	res := graph.NewResource()
	res.Identifier = "ICDP5054EEW1001"
	res.IdentifierType = graph.IdentifierIGSN
	res.IsSample = true
	res.Titles = []graph.Title{
		{Value: "Eger rift drill core"},
		{Value: "EGER-1", Type: graph.TitleOther},
	}
	res.Descriptions = []graph.Description{
		{Value: "Weathered basalt from the lower core section.", Type: graph.DescriptionAbstract},
	}
	res.SampleType = "Core"
	res.Material = "Rock"
	res.Publisher = "GFZ Data Services"
	res.PublicationYear = 2021
	res.Language = "en"
	res.Authors = []graph.Author{
		{
			Agent: graph.Agent{
				Kind:       graph.AgentPerson,
				GivenName:  "Christiane",
				FamilyName: "Förste",
				ORCID:      "0000-0002-1825-0097",
				Affiliations: []graph.Affiliation{
					{Name: "GFZ Potsdam", ROR: "04z8jg394"},
				},
			},
			Position:  0,
			IsContact: true,
			Email:     "foerste@gfz-potsdam.de",
			Roles:     []graph.Role{graph.RoleCreator, graph.RoleContactPerson},
		},
		{
			Agent: graph.Agent{
				Kind:       graph.AgentPerson,
				GivenName:  "Ana",
				FamilyName: "Silva",
			},
			Position: 1,
			Roles:    []graph.Role{graph.RoleDataCollector},
		},
	}
	res.Contributors = []graph.Contributor{
		{
			Agent: graph.Agent{
				Kind: graph.AgentInstitution,
				Name: "GFZ German Research Centre for Geosciences",
			},
			Position: 2,
			Roles:    []graph.Role{graph.RoleHostingInstitution},
		},
	}
	res.Dates = []graph.ResourceDate{
		{Type: graph.DateCollected, Start: "2020-02-01", End: "2020-02-29"},
		{Type: graph.DateAvailable, Start: "2021-06-01"},
	}
	res.GeoLocations = []graph.GeoLocation{
		{
			Place: "Eger Rift, Czech Republic",
			Point: &graph.GeoPoint{Latitude: 50.934, Longitude: 12.303},
		},
		{
			Box: &graph.GeoBox{
				WestLongitude: 12.1,
				EastLongitude: 12.5,
				SouthLatitude: 50.8,
				NorthLatitude: 51.0,
			},
		},
	}
	res.Sizes = []graph.Size{
		{Value: "12.5000", Unit: "cm", Type: "Length"},
		{Value: "340.0000", Unit: "g", Type: "Mass"},
	}
	res.GeologicalAges = []string{"Quaternary"}
	res.GeologicalUnits = []string{"Eger Graben"}
	res.Classifications = []string{"Volcanic rock"}
	res.FundingReferences = []graph.FundingReference{
		{
			Funder:               "Deutsche Forschungsgemeinschaft",
			FunderIdentifier:     "https://ror.org/018mejw64",
			FunderIdentifierType: "ROR",
			AwardNumber:          "DR 144/1-1",
			AwardTitle:           "Drilling the Eger Rift",
		},
	}
	res.SetExtra("comment", "Recovered at 120 m depth")
	return res
}

func TestSerializeRoundTrip(t *testing.T) {
	f := &Format{}
	var buf bytes.Buffer
	if err := f.Serialize(&buf, []*graph.Resource{batchResource()}, nil); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	batch, err := f.ParseBatch(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		t.Fatalf("ParseBatch: %v", err)
	}
	if len(batch.Issues) != 0 {
		t.Fatalf("issues = %v, want none", batch.Issues)
	}
	if len(batch.Resources) != 1 {
		t.Fatalf("resources = %d, want 1", len(batch.Resources))
	}

	res := batch.Resources[0]
	if res.Identifier != "ICDP5054EEW1001" {
		t.Errorf("identifier = %q", res.Identifier)
	}
	if !res.IsSample || res.IdentifierType != graph.IdentifierIGSN {
		t.Errorf("identifier type = %q, sample = %v", res.IdentifierType, res.IsSample)
	}
	if res.MainTitle() != "Eger rift drill core" {
		t.Errorf("main title = %q", res.MainTitle())
	}
	if others := res.TitlesOfType(graph.TitleOther); len(others) != 1 || others[0].Value != "EGER-1" {
		t.Errorf("other titles = %v", others)
	}
	if len(res.Descriptions) != 1 || res.Descriptions[0].Type != graph.DescriptionAbstract {
		t.Fatalf("descriptions = %v", res.Descriptions)
	}
	if res.SampleType != "Core" || res.Material != "Rock" {
		t.Errorf("sample type = %q, material = %q", res.SampleType, res.Material)
	}
	if res.Publisher != "GFZ Data Services" || res.PublicationYear != 2021 || res.Language != "en" {
		t.Errorf("publisher = %q, year = %d, language = %q", res.Publisher, res.PublicationYear, res.Language)
	}

	if len(res.Authors) != 2 {
		t.Fatalf("authors = %d, want 2", len(res.Authors))
	}
	first := res.Authors[0]
	if first.Agent.FamilyName != "Förste" || first.Agent.ORCID != "0000-0002-1825-0097" {
		t.Errorf("first author = %+v", first.Agent)
	}
	if !first.IsContact || first.Email != "foerste@gfz-potsdam.de" {
		t.Errorf("contact = %v, email = %q", first.IsContact, first.Email)
	}
	if len(first.Agent.Affiliations) != 1 {
		t.Fatalf("affiliations = %v", first.Agent.Affiliations)
	}
	if aff := first.Agent.Affiliations[0]; aff.Name != "GFZ Potsdam" || aff.ROR != "04z8jg394" {
		t.Errorf("affiliation = %+v, want name and bare ROR restored", aff)
	}
	second := res.Authors[1]
	if second.Agent.FamilyName != "Silva" {
		t.Errorf("second author = %+v", second.Agent)
	}
	// DataCollector alone is not an authorship role; the writer adds the
	// creator marker so the person survives as an author.
	if !second.HasRole(graph.RoleDataCollector) {
		t.Errorf("second author roles = %v, want DataCollector kept", second.Roles)
	}

	if len(res.Contributors) != 1 {
		t.Fatalf("contributors = %d, want 1", len(res.Contributors))
	}
	inst := res.Contributors[0]
	if inst.Agent.Kind != graph.AgentInstitution || inst.Agent.Name != "GFZ German Research Centre for Geosciences" {
		t.Errorf("contributor = %+v", inst.Agent)
	}
	if !inst.HasRole(graph.RoleHostingInstitution) {
		t.Errorf("contributor roles = %v", inst.Roles)
	}

	collected := res.DatesOfType(graph.DateCollected)
	if len(collected) != 1 || collected[0].Start != "2020-02-01" || collected[0].End != "2020-02-29" {
		t.Errorf("collected = %v", collected)
	}
	available := res.DatesOfType(graph.DateAvailable)
	if len(available) != 1 || available[0].Start != "2021-06-01" {
		t.Errorf("available = %v", available)
	}

	if len(res.GeoLocations) != 2 {
		t.Fatalf("locations = %v", res.GeoLocations)
	}
	point := res.GeoLocations[0]
	if point.Place != "Eger Rift, Czech Republic" || point.Point == nil {
		t.Fatalf("point location = %+v", point)
	}
	if point.Point.Latitude != 50.934 || point.Point.Longitude != 12.303 {
		t.Errorf("point = %+v", point.Point)
	}
	box := res.GeoLocations[1]
	if box.Box == nil || box.Box.WestLongitude != 12.1 || box.Box.NorthLatitude != 51.0 {
		t.Errorf("box location = %+v", box)
	}

	if len(res.Sizes) != 2 {
		t.Fatalf("sizes = %v", res.Sizes)
	}
	if res.Sizes[0] != (graph.Size{Value: "12.5000", Unit: "cm", Type: "Length"}) {
		t.Errorf("size[0] = %+v", res.Sizes[0])
	}
	if res.Sizes[1] != (graph.Size{Value: "340.0000", Unit: "g", Type: "Mass"}) {
		t.Errorf("size[1] = %+v", res.Sizes[1])
	}

	if len(res.GeologicalAges) != 1 || res.GeologicalAges[0] != "Quaternary" {
		t.Errorf("ages = %v", res.GeologicalAges)
	}
	if len(res.GeologicalUnits) != 1 || res.GeologicalUnits[0] != "Eger Graben" {
		t.Errorf("units = %v", res.GeologicalUnits)
	}
	if len(res.Classifications) != 1 || res.Classifications[0] != "Volcanic rock" {
		t.Errorf("classifications = %v", res.Classifications)
	}

	if len(res.FundingReferences) != 1 {
		t.Fatalf("funding = %v", res.FundingReferences)
	}
	ref := res.FundingReferences[0]
	if ref.Funder != "Deutsche Forschungsgemeinschaft" || ref.AwardNumber != "DR 144/1-1" {
		t.Errorf("funding = %+v", ref)
	}
	if ref.FunderIdentifierType != "ROR" {
		t.Errorf("funder identifier type = %q", ref.FunderIdentifierType)
	}

	if got := res.GetExtraString("comment"); got != "Recovered at 120 m depth" {
		t.Errorf("comment = %q", got)
	}
}

func TestSerializeContinuationRows(t *testing.T) {
	f := &Format{}
	var buf bytes.Buffer
	if err := f.Serialize(&buf, []*graph.Resource{batchResource()}, nil); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header plus two rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "IGSN|") {
		t.Errorf("header = %q, want identifier column first", lines[0])
	}
	for i, line := range lines[1:] {
		if !strings.Contains(line, "ICDP5054EEW1001") {
			t.Errorf("row %d = %q, want identifier repeated", i+2, line)
		}
	}
	// Scalars belong to the first data row only.
	if strings.Contains(lines[2], "Eger rift drill core") {
		t.Errorf("continuation row repeats the title: %q", lines[2])
	}
	if !strings.Contains(lines[2], "Silva") {
		t.Errorf("continuation row = %q, want second collector", lines[2])
	}
}

func TestSerializeColumnSubset(t *testing.T) {
	f := &Format{}
	opts := format.NewSerializeOptions()
	opts.Columns = []string{"IGSN", "Title", "Publication Year"}

	res := graph.NewResource()
	res.Identifier = "ICDP5054EEW1002"
	res.IdentifierType = graph.IdentifierIGSN
	res.Titles = []graph.Title{{Value: "Second core"}}
	res.PublicationYear = 2022

	var buf bytes.Buffer
	if err := f.Serialize(&buf, []*graph.Resource{res}, opts); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := "IGSN|Title|Publication Year\nICDP5054EEW1002|Second core|2022\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestSerializeWithoutHeader(t *testing.T) {
	f := &Format{}
	opts := format.NewSerializeOptions()
	opts.IncludeHeader = false
	opts.Columns = []string{"IGSN", "Title"}

	res := graph.NewResource()
	res.Identifier = "ICDP5054EEW1003"
	res.Titles = []graph.Title{{Value: "Appended row"}}

	var buf bytes.Buffer
	if err := f.Serialize(&buf, []*graph.Resource{res}, opts); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if got := buf.String(); got != "ICDP5054EEW1003|Appended row\n" {
		t.Errorf("output = %q", got)
	}
}
