package igsncsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/McNamara84/ernie-sub002/dates"
	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/graph"
	"github.com/McNamara84/ernie-sub002/helpers"
	"github.com/McNamara84/ernie-sub002/identity"
	"github.com/McNamara84/ernie-sub002/mapping"
	"github.com/McNamara84/ernie-sub002/value"
)

// RowIssue is a row-scoped problem found while building resources from a
// batch. Issues accumulate; one bad cell or row never aborts the rest of
// the batch.
type RowIssue struct {
	// Row is the 1-based line number in the input, header included.
	Row        int
	Identifier string
	Code       string
	Field      string
	Message    string
}

// Batch is the full result of parsing one batch file: the resources that
// could be built plus every row issue encountered on the way.
type Batch struct {
	Resources []*graph.Resource
	Issues    []RowIssue
}

// Parse reads a batch file and returns graph resources. Row issues are
// tolerated unless opts.Strict is set; use ParseBatch to receive them.
func (f *Format) Parse(r io.Reader, opts *format.ParseOptions) ([]*graph.Resource, error) {
	batch, err := f.ParseBatch(r, opts)
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.Strict && len(batch.Issues) > 0 {
		first := batch.Issues[0]
		return nil, fmt.Errorf("row %d: %s", first.Row, first.Message)
	}
	return batch.Resources, nil
}

// ParseBatch reads a batch file and returns both the built resources and
// the accumulated row issues.
func (f *Format) ParseBatch(r io.Reader, opts *format.ParseOptions) (*Batch, error) {
	if opts == nil {
		opts = format.NewParseOptions()
	}

	profile := opts.Profile
	if profile == nil {
		reg, _ := mapping.NewProfileRegistry()
		p, ok := reg.Get("igsn-batch")
		if !ok {
			return nil, fmt.Errorf("no mapping profile available")
		}
		profile = p
	}

	reader := csv.NewReader(r)
	reader.Comma = profile.DelimiterRune()
	reader.LazyQuotes = true
	reader.FieldsPerRecord = 0 // lock to the header width

	header, err := reader.Read()
	if err == io.EOF {
		return &Batch{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parsing batch header: %w", err)
	}

	batch := &Batch{}
	specs := make([]columnSpec, 0, len(header))
	for i, cell := range header {
		name := strings.TrimSpace(cell)
		m, ok := profile.Column(name)
		if !ok {
			if opts.Strict && name != "" {
				batch.Issues = append(batch.Issues, RowIssue{
					Row:     1,
					Code:    "malformed_input",
					Field:   name,
					Message: fmt.Sprintf("unknown column %q", name),
				})
			}
			continue
		}
		specs = append(specs, columnSpec{index: i, header: name, m: m})
	}

	builders := make(map[string]*builder)
	var order []string

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				batch.Issues = append(batch.Issues, RowIssue{
					Row:     row,
					Code:    "malformed_input",
					Message: err.Error(),
				})
				continue
			}
			return nil, fmt.Errorf("reading batch row %d: %w", row, err)
		}
		if blankRow(record) {
			continue
		}

		rv := collectRow(record, specs)

		if missing := rv.missingRequired(specs); missing != "" {
			batch.Issues = append(batch.Issues, RowIssue{
				Row:        row,
				Identifier: rv.identifier,
				Code:       "missing_required_field",
				Field:      missing,
				Message:    fmt.Sprintf("required column %q is empty", missing),
			})
			continue
		}

		id := graph.NormalizeIdentifier(rv.identifier, graph.DetectIdentifierType(rv.identifier))
		key := id
		if key == "" {
			key = fmt.Sprintf("row:%d", row)
		}

		b, ok := builders[key]
		if !ok {
			res := graph.NewResource()
			res.Identifier = id
			res.IdentifierType = graph.DetectIdentifierType(rv.identifier)
			res.IsSample = res.IdentifierType == graph.IdentifierIGSN
			res.SourceRow = row
			b = newBuilder(res, profile.Separator())
			builders[key] = b
			order = append(order, key)
		}

		batch.Issues = append(batch.Issues, b.apply(rv, row, opts)...)
	}

	for _, key := range order {
		batch.Resources = append(batch.Resources, builders[key].finish())
	}
	return batch, nil
}

type columnSpec struct {
	index  int
	header string
	m      mapping.ColumnMapping
}

// rawRange pairs the start and end cells of one date type within a row.
type rawRange struct {
	start string
	end   string
}

// sizeCell is one measurement cell together with its column identity.
type sizeCell struct {
	header string
	m      mapping.ColumnMapping
	raw    string
}

// extraCell is one passthrough cell.
type extraCell struct {
	key string
	raw string
}

// rowValues holds the cells of one row, grouped by target.
type rowValues struct {
	identifier string

	title       string
	otherTitles []string
	description string
	descType    string

	sampleType string
	material   string
	resType    string
	publisher  string
	pubYear    string
	language   string
	version    string

	collectorName   string
	collectorGiven  string
	collectorFamily string
	collectorORCID  string
	roles           []string
	contactEmail    string
	contactWebsite  string
	affiliations    []string

	contributorName  string
	contributorRoles []string

	dates map[graph.DateType]*rawRange

	lat, lon                 string
	west, east, south, north string
	polygon                  string
	interior                 string
	place                    string

	sizes []sizeCell

	ages            []string
	units           []string
	classifications []string

	funder      string
	funderID    string
	awardNumber string
	awardTitle  string

	extras []extraCell

	// present records which mapped columns held a non-empty cell.
	present map[string]bool
}

func blankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func collectRow(record []string, specs []columnSpec) *rowValues {
	rv := &rowValues{
		dates:   make(map[graph.DateType]*rawRange),
		present: make(map[string]bool),
	}

	for _, spec := range specs {
		if spec.index >= len(record) {
			continue
		}
		cell := strings.TrimSpace(record[spec.index])
		if cell == "" {
			continue
		}
		rv.present[spec.header] = true

		switch spec.m.Field {
		case mapping.FieldIdentifier:
			rv.identifier = cell
		case mapping.FieldTitle:
			if spec.m.TitleType != "" {
				rv.otherTitles = append(rv.otherTitles, cell)
			} else {
				rv.title = cell
			}
		case mapping.FieldDescription:
			rv.description = cell
			rv.descType = spec.m.DescriptionType
		case mapping.FieldSampleType:
			rv.sampleType = cell
		case mapping.FieldMaterial:
			rv.material = cell
		case mapping.FieldResourceType:
			rv.resType = cell
		case mapping.FieldPublisher:
			rv.publisher = cell
		case mapping.FieldPublicationYear:
			rv.pubYear = cell
		case mapping.FieldLanguage:
			rv.language = cell
		case mapping.FieldVersion:
			rv.version = cell
		case mapping.FieldCollectorName:
			rv.collectorName = cell
		case mapping.FieldCollectorGivenName:
			rv.collectorGiven = cell
		case mapping.FieldCollectorFamilyName:
			rv.collectorFamily = cell
		case mapping.FieldCollectorORCID:
			rv.collectorORCID = cell
		case mapping.FieldCollectorRole:
			rv.roles = append(rv.roles, cell)
		case mapping.FieldContactEmail:
			rv.contactEmail = cell
		case mapping.FieldContactWebsite:
			rv.contactWebsite = cell
		case mapping.FieldAffiliation:
			rv.affiliations = append(rv.affiliations, cell)
		case mapping.FieldContributorName:
			rv.contributorName = cell
		case mapping.FieldContributorRole:
			rv.contributorRoles = append(rv.contributorRoles, cell)
		case mapping.FieldDate:
			dt := graph.ParseDateType(spec.m.DateType)
			rng, ok := rv.dates[dt]
			if !ok {
				rng = &rawRange{}
				rv.dates[dt] = rng
			}
			switch spec.m.Part {
			case mapping.PartEnd:
				rng.end = cell
			case mapping.PartStart:
				rng.start = cell
			default:
				// A single column may carry a whole range.
				rng.start, rng.end = dates.SplitRange(cell)
			}
		case mapping.FieldLatitude:
			rv.lat = cell
		case mapping.FieldLongitude:
			rv.lon = cell
		case mapping.FieldWestLongitude:
			rv.west = cell
		case mapping.FieldEastLongitude:
			rv.east = cell
		case mapping.FieldSouthLatitude:
			rv.south = cell
		case mapping.FieldNorthLatitude:
			rv.north = cell
		case mapping.FieldPolygon:
			rv.polygon = cell
		case mapping.FieldInteriorPoint:
			rv.interior = cell
		case mapping.FieldPlace:
			rv.place = cell
		case mapping.FieldSize:
			rv.sizes = append(rv.sizes, sizeCell{header: spec.header, m: spec.m, raw: cell})
		case mapping.FieldGeologicalAge:
			rv.ages = append(rv.ages, cell)
		case mapping.FieldGeologicalUnit:
			rv.units = append(rv.units, cell)
		case mapping.FieldClassification:
			rv.classifications = append(rv.classifications, cell)
		case mapping.FieldFunder:
			rv.funder = cell
		case mapping.FieldFunderIdentifier:
			rv.funderID = cell
		case mapping.FieldAwardNumber:
			rv.awardNumber = cell
		case mapping.FieldAwardTitle:
			rv.awardTitle = cell
		case mapping.FieldExtra:
			key := spec.m.ExtraKey
			if key == "" {
				key = spec.header
			}
			rv.extras = append(rv.extras, extraCell{key: key, raw: cell})
		}
	}
	return rv
}

// missingRequired returns the first required column without a value in
// this row, or "".
func (rv *rowValues) missingRequired(specs []columnSpec) string {
	for _, spec := range specs {
		if spec.m.Required && !rv.present[spec.header] {
			return spec.header
		}
	}
	return ""
}

// builder accumulates the rows of one resource.
type builder struct {
	res        *graph.Resource
	sep        string
	candidates []identity.Candidate
	position   int

	seenTitles  map[string]bool
	seenDates   map[graph.ResourceDate]bool
	seenSizes   map[graph.Size]bool
	seenFunding map[graph.FundingReference]bool
	seenTokens  map[string]bool
}

func newBuilder(res *graph.Resource, sep string) *builder {
	return &builder{
		res:         res,
		sep:         sep,
		seenTitles:  make(map[string]bool),
		seenDates:   make(map[graph.ResourceDate]bool),
		seenSizes:   make(map[graph.Size]bool),
		seenFunding: make(map[graph.FundingReference]bool),
		seenTokens:  make(map[string]bool),
	}
}

func (b *builder) apply(rv *rowValues, row int, opts *format.ParseOptions) []RowIssue {
	var issues []RowIssue
	fail := func(code, field, msg string) {
		issues = append(issues, RowIssue{
			Row:        row,
			Identifier: b.res.Identifier,
			Code:       code,
			Field:      field,
			Message:    msg,
		})
	}

	b.applyText(rv, opts)
	issues = append(issues, b.applyYear(rv, row)...)
	b.applyPeople(rv)

	for dt, rng := range rv.dates {
		start, err := dates.Parse(rng.start, false)
		if err != nil {
			fail("invalid_date_component", string(dt), err.Error())
			continue
		}
		end, err := dates.Parse(rng.end, true)
		if err != nil {
			fail("invalid_date_component", string(dt), err.Error())
			continue
		}
		if start == "" && end == "" {
			continue
		}
		d := graph.ResourceDate{Type: dt, Start: start, End: end}
		if !b.seenDates[d] {
			b.seenDates[d] = true
			b.res.Dates = append(b.res.Dates, d)
		}
	}

	for _, sc := range rv.sizes {
		label, unit := sc.m.SizeParts(sc.header)
		for _, token := range b.split(sc.raw) {
			formatted, err := value.ParseDecimal(token)
			if err != nil {
				fail("malformed_input", sc.header, fmt.Sprintf("unparseable size value %q", token))
				continue
			}
			s := graph.Size{Value: formatted, Unit: unit, Type: label}
			if !b.seenSizes[s] {
				b.seenSizes[s] = true
				b.res.Sizes = append(b.res.Sizes, s)
			}
		}
	}

	loc, locIssues := b.buildLocation(rv, row)
	issues = append(issues, locIssues...)
	if loc != nil && !b.hasLocation(*loc) {
		b.res.GeoLocations = append(b.res.GeoLocations, *loc)
	}

	b.appendTokens(&b.res.GeologicalAges, "age", rv.ages)
	b.appendTokens(&b.res.GeologicalUnits, "unit", rv.units)
	b.appendTokens(&b.res.Classifications, "class", rv.classifications)

	if rv.funder != "" {
		ref := graph.FundingReference{
			Funder:           rv.funder,
			FunderIdentifier: rv.funderID,
			AwardNumber:      rv.awardNumber,
			AwardTitle:       rv.awardTitle,
		}
		if ref.FunderIdentifier != "" {
			ref.FunderIdentifierType = string(graph.DetectIdentifierType(ref.FunderIdentifier))
		}
		if !b.seenFunding[ref] {
			b.seenFunding[ref] = true
			b.res.FundingReferences = append(b.res.FundingReferences, ref)
		}
	}

	for _, ec := range rv.extras {
		b.res.SetExtra(ec.key, ec.raw)
	}

	return issues
}

func (b *builder) applyText(rv *rowValues, opts *format.ParseOptions) {
	if rv.title != "" && !b.seenTitles[""] {
		b.seenTitles[""] = true
		b.res.Titles = append([]graph.Title{{Value: rv.title}}, b.res.Titles...)
	}
	for _, raw := range rv.otherTitles {
		for _, token := range b.split(raw) {
			key := "other:" + token
			if b.seenTitles[key] {
				continue
			}
			b.seenTitles[key] = true
			b.res.Titles = append(b.res.Titles, graph.Title{Value: token, Type: graph.TitleOther})
		}
	}
	if rv.description != "" {
		text := rv.description
		if opts.StripHTML {
			text = helpers.CleanText(text)
		}
		dt := graph.DescriptionType(rv.descType)
		if dt == "" {
			dt = graph.DescriptionAbstract
		}
		if !b.seenTokens["desc:"+text] {
			b.seenTokens["desc:"+text] = true
			b.res.Descriptions = append(b.res.Descriptions, graph.Description{Value: text, Type: dt})
		}
	}

	if b.res.SampleType == "" {
		b.res.SampleType = rv.sampleType
	}
	if b.res.Material == "" {
		b.res.Material = rv.material
	}
	if b.res.ResourceTypeText == "" {
		b.res.ResourceTypeText = rv.resType
	}
	if b.res.Publisher == "" {
		b.res.Publisher = rv.publisher
	}
	if b.res.Language == "" {
		b.res.Language = rv.language
	}
	if b.res.Version == "" {
		b.res.Version = rv.version
	}
}

func (b *builder) applyYear(rv *rowValues, row int) []RowIssue {
	if rv.pubYear == "" || b.res.PublicationYear != 0 {
		return nil
	}
	year, err := strconv.Atoi(strings.TrimSpace(rv.pubYear))
	if err != nil {
		return []RowIssue{{
			Row:        row,
			Identifier: b.res.Identifier,
			Code:       "malformed_input",
			Field:      "Publication Year",
			Message:    fmt.Sprintf("unparseable publication year %q", rv.pubYear),
		}}
	}
	b.res.PublicationYear = year
	return nil
}

// applyPeople turns the row's person cells into identity candidates.
// Explicit given/family columns beat the free-text collector column; the
// free-text form splits on "Family, Given" when a comma is present, else
// first token is the given name and the remainder the family name.
func (b *builder) applyPeople(rv *rowValues) {
	given := rv.collectorGiven
	family := rv.collectorFamily
	if given == "" && family == "" && rv.collectorName != "" {
		given, family = helpers.SplitPersonName(rv.collectorName)
	}

	if given != "" || family != "" {
		roles := parseRoles(rv.roles, b.sep)
		c := identity.Candidate{
			Kind:         graph.AgentPerson,
			GivenName:    given,
			FamilyName:   family,
			ORCID:        rv.collectorORCID,
			Roles:        roles,
			Email:        rv.contactEmail,
			Website:      rv.contactWebsite,
			Affiliations: b.affiliations(rv.affiliations),
			Position:     b.position,
			IsAuthor:     isAuthorRoles(roles),
		}
		b.position++
		b.candidates = append(b.candidates, c)
	}

	if rv.contributorName != "" {
		roles := parseRoles(rv.contributorRoles, b.sep)
		c := identity.Candidate{
			Position: b.position,
			Roles:    roles,
			IsAuthor: false,
		}
		if institutionRoles(roles) {
			c.Kind = graph.AgentInstitution
			c.Name = rv.contributorName
		} else {
			c.Kind = graph.AgentPerson
			c.GivenName, c.FamilyName = helpers.SplitPersonName(rv.contributorName)
		}
		b.position++
		b.candidates = append(b.candidates, c)
	}
}

// affiliations parses affiliation cells. A cell is the institution name,
// optionally followed by a parenthesized ROR: "GFZ Potsdam
// (https://ror.org/04z8jg394)". The tail is kept only when it actually
// looks like a ROR; stray parentheses stay part of the name.
func (b *builder) affiliations(cells []string) []graph.Affiliation {
	var out []graph.Affiliation
	for _, raw := range cells {
		for _, token := range b.split(raw) {
			out = append(out, parseAffiliation(token))
		}
	}
	return out
}

func parseAffiliation(token string) graph.Affiliation {
	open := strings.LastIndex(token, "(")
	if open > 0 && strings.HasSuffix(token, ")") {
		tail := strings.TrimSpace(token[open+1 : len(token)-1])
		if graph.DetectIdentifierType(tail) == graph.IdentifierROR {
			return graph.Affiliation{
				Name: strings.TrimSpace(token[:open]),
				ROR:  graph.NormalizeIdentifier(tail, graph.IdentifierROR),
			}
		}
	}
	return graph.Affiliation{Name: token}
}

func (b *builder) buildLocation(rv *rowValues, row int) (*graph.GeoLocation, []RowIssue) {
	var issues []RowIssue
	fail := func(field, msg string) {
		issues = append(issues, RowIssue{
			Row:        row,
			Identifier: b.res.Identifier,
			Code:       "malformed_input",
			Field:      field,
			Message:    msg,
		})
	}

	loc := graph.GeoLocation{Place: rv.place}

	if rv.lat != "" || rv.lon != "" {
		lat, latErr := value.ParseLatitude(rv.lat)
		lon, lonErr := value.ParseLongitude(rv.lon)
		if latErr != nil {
			fail("Latitude", latErr.Error())
		} else if lonErr != nil {
			fail("Longitude", lonErr.Error())
		} else {
			loc.Point = &graph.GeoPoint{Latitude: lat, Longitude: lon}
		}
	}

	if rv.west != "" || rv.east != "" || rv.south != "" || rv.north != "" {
		west, errW := value.ParseLongitude(rv.west)
		east, errE := value.ParseLongitude(rv.east)
		south, errS := value.ParseLatitude(rv.south)
		north, errN := value.ParseLatitude(rv.north)
		if err := errors.Join(errW, errE, errS, errN); err != nil {
			fail("Box", "unparseable bounding box")
		} else {
			loc.Box = &graph.GeoBox{
				WestLongitude: west,
				EastLongitude: east,
				SouthLatitude: south,
				NorthLatitude: north,
			}
		}
	}

	if rv.polygon != "" {
		points, ok := b.parseVertices(rv.polygon)
		if !ok || len(points) < 3 {
			fail("Polygon Coordinates", "polygon needs at least 3 parseable lat,lon vertex pairs")
		} else {
			poly := &graph.GeoPolygon{Points: points}
			if rv.interior != "" {
				lat, lon, err := value.ParsePointPair(rv.interior)
				if err != nil {
					fail("Interior Point", err.Error())
				} else {
					poly.InPoint = &graph.GeoPoint{Latitude: lat, Longitude: lon}
				}
			}
			loc.Polygon = poly
		}
	}

	if loc.IsEmpty() {
		return nil, issues
	}
	return &loc, issues
}

func (b *builder) parseVertices(raw string) ([]graph.GeoPoint, bool) {
	var points []graph.GeoPoint
	for _, token := range b.split(raw) {
		lat, lon, err := value.ParsePointPair(token)
		if err != nil {
			return nil, false
		}
		points = append(points, graph.GeoPoint{Latitude: lat, Longitude: lon})
	}
	return points, true
}

func (b *builder) hasLocation(loc graph.GeoLocation) bool {
	for _, existing := range b.res.GeoLocations {
		if locationsEqual(existing, loc) {
			return true
		}
	}
	return false
}

func locationsEqual(a, b graph.GeoLocation) bool {
	if a.Place != b.Place || a.Variant() != b.Variant() {
		return false
	}
	switch a.Variant() {
	case "point":
		return *a.Point == *b.Point
	case "box":
		return *a.Box == *b.Box
	case "polygon":
		if len(a.Polygon.Points) != len(b.Polygon.Points) {
			return false
		}
		for i := range a.Polygon.Points {
			if a.Polygon.Points[i] != b.Polygon.Points[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (b *builder) appendTokens(dst *[]string, prefix string, cells []string) {
	for _, raw := range cells {
		for _, token := range b.split(raw) {
			key := prefix + ":" + token
			if b.seenTokens[key] {
				continue
			}
			b.seenTokens[key] = true
			*dst = append(*dst, token)
		}
	}
}

func (b *builder) split(raw string) []string {
	parts := strings.Split(raw, b.sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// finish resolves the accumulated candidates into the resource's author
// and contributor lists.
func (b *builder) finish() *graph.Resource {
	resolution := identity.Resolve(b.candidates)
	b.res.Authors = resolution.Authors
	b.res.Contributors = identity.DedupeInstitutions(resolution.Contributors)
	return b.res
}

func parseRoles(cells []string, sep string) []graph.Role {
	var roles []graph.Role
	for _, raw := range cells {
		for _, token := range strings.Split(raw, sep) {
			roles = graph.AppendRole(roles, graph.ParseRole(token))
		}
	}
	return roles
}

// isAuthorRoles reports whether a collector appearance counts as an
// authorship one. A collector without any role is the creator by default.
func isAuthorRoles(roles []graph.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r.IsAuthorship() {
			return true
		}
	}
	return false
}

// institutionRoles reports whether the role set marks an institutional
// contributor.
func institutionRoles(roles []graph.Role) bool {
	for _, r := range roles {
		switch r {
		case graph.RoleHostingInstitution, graph.RoleSponsor, graph.RoleResearchGroup,
			graph.RoleRegistrationAgency, graph.RoleRegistrationAuthority, graph.RoleDistributor:
			return true
		}
	}
	return false
}
