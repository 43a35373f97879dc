package igsncsv

import (
	"strings"
	"testing"

	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/graph"
)

func parseBatch(t *testing.T, input string) *Batch {
	t.Helper()
	f := &Format{}
	batch, err := f.ParseBatch(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("ParseBatch: %v", err)
	}
	return batch
}

func TestParseContactRowCollapsesIntoAuthor(t *testing.T) {
	input := `IGSN|Title|Collector|Role|Contact Email
ICDP5054ESYI201|Core section 1|Foerste, Christoph|Creator|
ICDP5054ESYI201||Förste, Christoph|pointOfContact|foerste@gfz-potsdam.de
`
	batch := parseBatch(t, input)
	if len(batch.Issues) != 0 {
		t.Fatalf("issues = %v, want none", batch.Issues)
	}
	if len(batch.Resources) != 1 {
		t.Fatalf("resources = %d, want 1", len(batch.Resources))
	}

	res := batch.Resources[0]
	if res.Identifier != "ICDP5054ESYI201" {
		t.Errorf("identifier = %q", res.Identifier)
	}
	if !res.IsSample {
		t.Error("IGSN resource not marked as sample")
	}
	if res.SourceRow != 2 {
		t.Errorf("source row = %d, want 2", res.SourceRow)
	}
	if len(res.Authors) != 1 {
		t.Fatalf("authors = %d, want 1", len(res.Authors))
	}
	if len(res.Contributors) != 0 {
		t.Fatalf("contributors = %d, want 0", len(res.Contributors))
	}

	author := res.Authors[0]
	if !author.IsContact {
		t.Error("author not flagged as contact")
	}
	if author.Email != "foerste@gfz-potsdam.de" {
		t.Errorf("email = %q", author.Email)
	}
	if author.Agent.GivenName != "Christoph" || author.Agent.FamilyName != "Foerste" {
		t.Errorf("name = %q, %q", author.Agent.GivenName, author.Agent.FamilyName)
	}
}

func TestParseExplicitNamePartsWin(t *testing.T) {
	input := `IGSN|Title|Collector|Collector Given Name|Collector Family Name|Collector ORCID
ICDP5054ESYI202|Core section 2|Berg, Jan van der|Jan|van der Berg|https://orcid.org/0000-0002-1825-0097
`
	batch := parseBatch(t, input)
	res := batch.Resources[0]
	if len(res.Authors) != 1 {
		t.Fatalf("authors = %d, want 1", len(res.Authors))
	}
	a := res.Authors[0].Agent
	if a.GivenName != "Jan" || a.FamilyName != "van der Berg" {
		t.Errorf("name = %q, %q, want explicit columns to win", a.GivenName, a.FamilyName)
	}
	if a.ORCID != "0000-0002-1825-0097" {
		t.Errorf("ORCID = %q, want normalized bare form", a.ORCID)
	}
}

func TestParseDatesSizesAndPoint(t *testing.T) {
	input := `IGSN|Title|Collection Start Date|Collection End Date|Latitude|Longitude|Length (cm)|Place
ICDP5054ESYI203|Core section 3|2020-02|2020-02|-12.5|45.25|12,5; 3.1|Lake Towuti
`
	batch := parseBatch(t, input)
	if len(batch.Issues) != 0 {
		t.Fatalf("issues = %v, want none", batch.Issues)
	}
	res := batch.Resources[0]

	if len(res.Dates) != 1 {
		t.Fatalf("dates = %v, want 1", res.Dates)
	}
	d := res.Dates[0]
	if d.Type != graph.DateCollected {
		t.Errorf("date type = %q", d.Type)
	}
	if d.Start != "2020-02-01" || d.End != "2020-02-29" {
		t.Errorf("range = %q..%q, want month resolved to first and leap last day", d.Start, d.End)
	}

	if len(res.Sizes) != 2 {
		t.Fatalf("sizes = %v, want 2", res.Sizes)
	}
	want := graph.Size{Value: "12.5000", Unit: "cm", Type: "Length"}
	if res.Sizes[0] != want {
		t.Errorf("sizes[0] = %+v, want %+v", res.Sizes[0], want)
	}
	if res.Sizes[1].Value != "3.1000" {
		t.Errorf("sizes[1].Value = %q", res.Sizes[1].Value)
	}

	if len(res.GeoLocations) != 1 {
		t.Fatalf("geoLocations = %v, want 1", res.GeoLocations)
	}
	loc := res.GeoLocations[0]
	if loc.Variant() != "point" || loc.Place != "Lake Towuti" {
		t.Errorf("location = %+v", loc)
	}
	if loc.Point.Latitude != -12.5 || loc.Point.Longitude != 45.25 {
		t.Errorf("point = %+v", loc.Point)
	}
}

func TestParseRowIssues(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCode  string
		resources int
	}{
		{
			name: "invalid month",
			input: `IGSN|Title|Collection Start Date
ICDP5054ESYI204|T|2021-13
`,
			wantCode:  "invalid_date_component",
			resources: 1,
		},
		{
			name: "missing identifier",
			input: `IGSN|Title
|T
`,
			wantCode:  "missing_required_field",
			resources: 0,
		},
		{
			name: "polygon arity",
			input: `IGSN|Title|Polygon Coordinates
ICDP5054ESYI205|T|1.0,2.0; 3.0,4.0
`,
			wantCode:  "malformed_input",
			resources: 1,
		},
		{
			name: "unparseable size",
			input: `IGSN|Title|Mass (g)
ICDP5054ESYI206|T|heavy
`,
			wantCode:  "malformed_input",
			resources: 1,
		},
		{
			name: "ragged row",
			input: `IGSN|Title
ICDP5054ESYI207|T|extra cell
`,
			wantCode:  "malformed_input",
			resources: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := parseBatch(t, tt.input)
			if len(batch.Issues) == 0 {
				t.Fatal("no issues reported")
			}
			if batch.Issues[0].Code != tt.wantCode {
				t.Errorf("code = %q, want %q", batch.Issues[0].Code, tt.wantCode)
			}
			if len(batch.Resources) != tt.resources {
				t.Errorf("resources = %d, want %d", len(batch.Resources), tt.resources)
			}
		})
	}
}

func TestParseIssueRowDoesNotAbortBatch(t *testing.T) {
	input := `IGSN|Title|Collection Start Date
ICDP5054ESYI208|First|2021-13
ICDP5054ESYI209|Second|2021-06
`
	batch := parseBatch(t, input)
	if len(batch.Resources) != 2 {
		t.Fatalf("resources = %d, want the bad date not to drop either row", len(batch.Resources))
	}
	if len(batch.Issues) != 1 {
		t.Fatalf("issues = %v, want exactly the bad month", batch.Issues)
	}
	if batch.Issues[0].Row != 2 || batch.Issues[0].Identifier != "ICDP5054ESYI208" {
		t.Errorf("issue = %+v, want row 2 with its identifier", batch.Issues[0])
	}
	second := batch.Resources[1]
	if len(second.Dates) != 1 || second.Dates[0].Start != "2021-06-01" {
		t.Errorf("second resource dates = %v", second.Dates)
	}
}

func TestParseOtherTitlesSplit(t *testing.T) {
	input := `IGSN|Title|Other Titles
ICDP5054ESYI210|Main title|Alpha; Beta
`
	batch := parseBatch(t, input)
	res := batch.Resources[0]
	if res.MainTitle() != "Main title" {
		t.Errorf("main title = %q", res.MainTitle())
	}
	others := res.TitlesOfType(graph.TitleOther)
	if len(others) != 2 || others[0].Value != "Alpha" || others[1].Value != "Beta" {
		t.Errorf("other titles = %v", others)
	}
}

func TestParseInstitutionContributor(t *testing.T) {
	input := `IGSN|Title|Contributor|Contributor Role
ICDP5054ESYI211|T|GFZ German Research Centre for Geosciences|HostingInstitution
`
	batch := parseBatch(t, input)
	res := batch.Resources[0]
	if len(res.Contributors) != 1 {
		t.Fatalf("contributors = %d, want 1", len(res.Contributors))
	}
	c := res.Contributors[0]
	if c.Agent.Kind != graph.AgentInstitution {
		t.Errorf("kind = %q, want institution", c.Agent.Kind)
	}
	if c.Agent.Name != "GFZ German Research Centre for Geosciences" {
		t.Errorf("name = %q", c.Agent.Name)
	}
	if !c.HasRole(graph.RoleHostingInstitution) {
		t.Errorf("roles = %v", c.Roles)
	}
}

func TestParseSeparateResourcesKeepInputOrder(t *testing.T) {
	input := `IGSN|Title
ICDP5054ESYI212|First
ICDP5054ESYI213|Second
ICDP5054ESYI212|First again
`
	batch := parseBatch(t, input)
	if len(batch.Resources) != 2 {
		t.Fatalf("resources = %d, want rows with one IGSN folded together", len(batch.Resources))
	}
	if batch.Resources[0].Identifier != "ICDP5054ESYI212" || batch.Resources[1].Identifier != "ICDP5054ESYI213" {
		t.Errorf("order = %q, %q", batch.Resources[0].Identifier, batch.Resources[1].Identifier)
	}
	// The repeated row must not replace the first main title.
	if batch.Resources[0].MainTitle() != "First" {
		t.Errorf("main title = %q", batch.Resources[0].MainTitle())
	}
}

func TestParseStrictModeFailsOnIssues(t *testing.T) {
	input := `IGSN|Title|Collection Start Date
ICDP5054ESYI214|T|2021-13
`
	f := &Format{}
	opts := format.NewParseOptions()
	opts.Strict = true
	if _, err := f.Parse(strings.NewReader(input), opts); err == nil {
		t.Fatal("strict parse succeeded despite row issue")
	}
}

func TestCanParse(t *testing.T) {
	tests := []struct {
		name string
		peek string
		want bool
	}{
		{"batch header", "IGSN|Title|Collector\nICDP1|T|N", true},
		{"no igsn column", "id|Title\n1|T", false},
		{"comma csv", "IGSN,Title\nICDP1,T", false},
		{"json", `{"resources": []}`, false},
		{"xml", "<resource/>", false},
		{"empty", "", false},
	}

	f := &Format{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.CanParse([]byte(tt.peek)); got != tt.want {
				t.Errorf("CanParse = %v, want %v", got, tt.want)
			}
		})
	}
}
