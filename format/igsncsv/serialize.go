package igsncsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/McNamara84/ernie-sub002/dates"
	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/graph"
	"github.com/McNamara84/ernie-sub002/mapping"
	"github.com/McNamara84/ernie-sub002/value"
)

// Serialize writes resources as a pipe-delimited batch file, the inverse
// of ParseBatch. A resource with more people, locations, dates or funding
// references than one row can carry spills the surplus onto continuation
// rows under the same identifier. Scalar columns are written on the first
// row only, except required ones, which repeat so every row passes the
// profile's required-column check.
func (f *Format) Serialize(w io.Writer, resources []*graph.Resource, opts *format.SerializeOptions) error {
	if opts == nil {
		opts = format.NewSerializeOptions()
	}

	profile := opts.Profile
	if profile == nil {
		reg, _ := mapping.NewProfileRegistry()
		p, ok := reg.Get("igsn-batch")
		if !ok {
			return fmt.Errorf("no mapping profile available")
		}
		profile = p
	}

	columns := opts.Columns
	if len(columns) == 0 {
		columns = profile.Headers()
	}

	sep := opts.MultiValueSeparator
	if sep == "" {
		sep = profile.Separator()
	}

	writer := csv.NewWriter(w)
	writer.Comma = profile.DelimiterRune()
	defer writer.Flush()

	if opts.IncludeHeader {
		if err := writer.Write(columns); err != nil {
			return err
		}
	}

	resolver := dates.NewResolver(opts.FallbackOffset)
	for _, res := range resources {
		plan := planRows(res)
		for row := 0; row < plan.rows; row++ {
			record := make([]string, len(columns))
			for i, header := range columns {
				m, ok := profile.Column(header)
				if !ok {
					continue
				}
				record[i] = plan.cell(header, m, row, sep, resolver)
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	return writer.Error()
}

// rowPlan spreads one resource over the rows its entity lists need. Row
// zero carries the scalars; authors, contributors, locations, funding
// references and repeated dates of one type go one per row.
type rowPlan struct {
	res         *graph.Resource
	rows        int
	datesByType map[graph.DateType][]graph.ResourceDate
}

func planRows(res *graph.Resource) *rowPlan {
	p := &rowPlan{
		res:         res,
		rows:        1,
		datesByType: make(map[graph.DateType][]graph.ResourceDate),
	}
	for _, d := range res.Dates {
		p.datesByType[d.Type] = append(p.datesByType[d.Type], d)
	}

	grow := func(n int) {
		if n > p.rows {
			p.rows = n
		}
	}
	grow(len(res.Authors))
	grow(len(res.Contributors))
	grow(len(res.GeoLocations))
	grow(len(res.FundingReferences))
	for _, list := range p.datesByType {
		grow(len(list))
	}
	return p
}

func (p *rowPlan) author(row int) *graph.Author {
	if row < len(p.res.Authors) {
		return &p.res.Authors[row]
	}
	return nil
}

func (p *rowPlan) contributor(row int) *graph.Contributor {
	if row < len(p.res.Contributors) {
		return &p.res.Contributors[row]
	}
	return nil
}

func (p *rowPlan) location(row int) *graph.GeoLocation {
	if row < len(p.res.GeoLocations) {
		return &p.res.GeoLocations[row]
	}
	return nil
}

func (p *rowPlan) funding(row int) *graph.FundingReference {
	if row < len(p.res.FundingReferences) {
		return &p.res.FundingReferences[row]
	}
	return nil
}

// scalar gates a row-zero value: continuation rows repeat it only for
// required columns.
func (p *rowPlan) scalar(v string, m mapping.ColumnMapping, row int) string {
	if row > 0 && !m.Required {
		return ""
	}
	return v
}

func (p *rowPlan) cell(header string, m mapping.ColumnMapping, row int, sep string, resolver *dates.Resolver) string {
	switch m.Field {
	case mapping.FieldIdentifier:
		return p.res.Identifier

	case mapping.FieldTitle:
		if m.TitleType == "" {
			return p.scalar(p.res.MainTitle(), m, row)
		}
		titles := p.res.TitlesOfType(graph.TitleType(m.TitleType))
		vals := make([]string, 0, len(titles))
		for _, t := range titles {
			vals = append(vals, t.Value)
		}
		return p.scalar(strings.Join(vals, sep), m, row)

	case mapping.FieldDescription:
		return p.scalar(p.description(m.DescriptionType), m, row)

	case mapping.FieldSampleType:
		return p.scalar(p.res.SampleType, m, row)
	case mapping.FieldMaterial:
		return p.scalar(p.res.Material, m, row)
	case mapping.FieldResourceType:
		return p.scalar(p.res.ResourceTypeText, m, row)
	case mapping.FieldPublisher:
		return p.scalar(p.res.Publisher, m, row)
	case mapping.FieldLanguage:
		return p.scalar(p.res.Language, m, row)
	case mapping.FieldVersion:
		return p.scalar(p.res.Version, m, row)

	case mapping.FieldPublicationYear:
		if p.res.PublicationYear == 0 {
			return ""
		}
		return p.scalar(strconv.Itoa(p.res.PublicationYear), m, row)

	case mapping.FieldCollectorName:
		if a := p.author(row); a != nil {
			return a.Agent.DisplayName()
		}
	case mapping.FieldCollectorGivenName:
		if a := p.author(row); a != nil {
			return a.Agent.GivenName
		}
	case mapping.FieldCollectorFamilyName:
		if a := p.author(row); a != nil {
			return a.Agent.FamilyName
		}
	case mapping.FieldCollectorORCID:
		if a := p.author(row); a != nil {
			return a.Agent.ORCID
		}
	case mapping.FieldCollectorRole:
		if a := p.author(row); a != nil {
			return strings.Join(authorRoleTokens(a), sep)
		}
	case mapping.FieldContactEmail:
		if a := p.author(row); a != nil {
			return a.Email
		}
	case mapping.FieldContactWebsite:
		if a := p.author(row); a != nil {
			return a.Website
		}
	case mapping.FieldAffiliation:
		if a := p.author(row); a != nil {
			vals := make([]string, 0, len(a.Agent.Affiliations))
			for _, aff := range a.Agent.Affiliations {
				vals = append(vals, renderAffiliation(aff))
			}
			return strings.Join(vals, sep)
		}

	case mapping.FieldContributorName:
		if c := p.contributor(row); c != nil {
			return c.Agent.DisplayName()
		}
	case mapping.FieldContributorRole:
		if c := p.contributor(row); c != nil {
			vals := make([]string, 0, len(c.Roles))
			for _, r := range c.Roles {
				vals = append(vals, string(r))
			}
			return strings.Join(vals, sep)
		}

	case mapping.FieldDate:
		list := p.datesByType[graph.ParseDateType(m.DateType)]
		if row >= len(list) {
			return ""
		}
		d := list[row]
		switch m.Part {
		case mapping.PartStart:
			return resolver.RenderValue(d.Start)
		case mapping.PartEnd:
			return resolver.RenderValue(d.End)
		default:
			return resolver.RenderRange(d.Start, d.End)
		}

	case mapping.FieldLatitude:
		if loc := p.location(row); loc != nil && loc.Point != nil {
			return value.FormatCoordinate(loc.Point.Latitude)
		}
	case mapping.FieldLongitude:
		if loc := p.location(row); loc != nil && loc.Point != nil {
			return value.FormatCoordinate(loc.Point.Longitude)
		}
	case mapping.FieldWestLongitude:
		if loc := p.location(row); loc != nil && loc.Box != nil {
			return value.FormatCoordinate(loc.Box.WestLongitude)
		}
	case mapping.FieldEastLongitude:
		if loc := p.location(row); loc != nil && loc.Box != nil {
			return value.FormatCoordinate(loc.Box.EastLongitude)
		}
	case mapping.FieldSouthLatitude:
		if loc := p.location(row); loc != nil && loc.Box != nil {
			return value.FormatCoordinate(loc.Box.SouthLatitude)
		}
	case mapping.FieldNorthLatitude:
		if loc := p.location(row); loc != nil && loc.Box != nil {
			return value.FormatCoordinate(loc.Box.NorthLatitude)
		}
	case mapping.FieldPolygon:
		if loc := p.location(row); loc != nil && loc.Polygon != nil {
			vals := make([]string, 0, len(loc.Polygon.Points))
			for _, pt := range loc.Polygon.Points {
				vals = append(vals, renderPoint(pt))
			}
			return strings.Join(vals, sep)
		}
	case mapping.FieldInteriorPoint:
		if loc := p.location(row); loc != nil && loc.Polygon != nil && loc.Polygon.InPoint != nil {
			return renderPoint(*loc.Polygon.InPoint)
		}
	case mapping.FieldPlace:
		if loc := p.location(row); loc != nil {
			return loc.Place
		}

	case mapping.FieldSize:
		label, unit := m.SizeParts(header)
		var vals []string
		for _, s := range p.res.Sizes {
			if s.Type == label && s.Unit == unit {
				vals = append(vals, s.Value)
			}
		}
		return p.scalar(strings.Join(vals, sep), m, row)

	case mapping.FieldGeologicalAge:
		return p.scalar(strings.Join(p.res.GeologicalAges, sep), m, row)
	case mapping.FieldGeologicalUnit:
		return p.scalar(strings.Join(p.res.GeologicalUnits, sep), m, row)
	case mapping.FieldClassification:
		return p.scalar(strings.Join(p.res.Classifications, sep), m, row)

	case mapping.FieldFunder:
		if ref := p.funding(row); ref != nil {
			return ref.Funder
		}
	case mapping.FieldFunderIdentifier:
		if ref := p.funding(row); ref != nil {
			return ref.FunderIdentifier
		}
	case mapping.FieldAwardNumber:
		if ref := p.funding(row); ref != nil {
			return ref.AwardNumber
		}
	case mapping.FieldAwardTitle:
		if ref := p.funding(row); ref != nil {
			return ref.AwardTitle
		}

	case mapping.FieldExtra:
		key := m.ExtraKey
		if key == "" {
			key = header
		}
		return p.scalar(p.res.GetExtraString(key), m, row)
	}

	return ""
}

func (p *rowPlan) description(descType string) string {
	for _, d := range p.res.Descriptions {
		if descType == "" || d.Type == graph.DescriptionType(descType) {
			return d.Value
		}
	}
	return ""
}

// authorRoleTokens renders an author's roles for the role cell. An author
// whose roles carry no authorship marker gets Creator prepended so the
// re-parsed row still lands in the author list.
func authorRoleTokens(a *graph.Author) []string {
	tokens := make([]string, 0, len(a.Roles)+1)
	if len(a.Roles) > 0 && !isAuthorRoles(a.Roles) {
		tokens = append(tokens, string(graph.RoleCreator))
	}
	for _, r := range a.Roles {
		tokens = append(tokens, string(r))
	}
	return tokens
}

func renderAffiliation(aff graph.Affiliation) string {
	if aff.ROR == "" {
		return aff.Name
	}
	return fmt.Sprintf("%s (%s)", aff.Name, graph.IdentifierURI(aff.ROR, graph.IdentifierROR))
}

func renderPoint(pt graph.GeoPoint) string {
	return value.FormatCoordinate(pt.Latitude) + "," + value.FormatCoordinate(pt.Longitude)
}
