package datacite

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/McNamara84/ernie-sub002/dates"
	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/graph"
	"github.com/McNamara84/ernie-sub002/helpers"
	"github.com/McNamara84/ernie-sub002/identity"
	"github.com/McNamara84/ernie-sub002/value"
)

// Parse reads DataCite XML and returns graph resources.
// Handles both bare <resource> elements and OAI-PMH wrapped responses.
// Creators and contributors run through identity resolution, so the same
// person appearing in both lists collapses into one author with merged
// roles.
func (f *Format) Parse(r io.Reader, opts *format.ParseOptions) ([]*graph.Resource, error) {
	if opts == nil {
		opts = format.NewParseOptions()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	xmlResources, err := extractResources(data)
	if err != nil {
		return nil, err
	}

	if len(xmlResources) == 0 {
		return nil, fmt.Errorf("no DataCite resource elements found in input")
	}

	resources := make([]*graph.Resource, 0, len(xmlResources))
	for i, xmlRes := range xmlResources {
		res, err := xmlToResource(xmlRes, opts)
		if err != nil {
			return nil, fmt.Errorf("converting resource %d: %w", i, err)
		}
		resources = append(resources, res)
	}

	return resources, nil
}

// extractResources finds all <resource> elements in the XML.
// Works for both bare resource documents and OAI-PMH wrapped responses.
func extractResources(data []byte) ([]*XMLParseResource, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var resources []*XMLParseResource

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "resource" {
			continue
		}

		var res XMLParseResource
		if err := decoder.DecodeElement(&res, &start); err != nil {
			return nil, fmt.Errorf("decoding resource element: %w", err)
		}
		resources = append(resources, &res)
	}

	return resources, nil
}

func xmlToResource(x *XMLParseResource, opts *format.ParseOptions) (*graph.Resource, error) {
	res := graph.NewResource()

	if x.Identifier != nil {
		applyIdentifier(res, x.Identifier.Value, x.Identifier.IdentifierType)
	}

	for _, t := range x.Titles {
		val := helpers.NormalizeWhitespace(t.Value)
		if val == "" {
			continue
		}
		res.Titles = append(res.Titles, graph.Title{
			Value: val,
			Type:  graph.ParseTitleType(t.TitleType),
		})
	}

	res.Publisher = strings.TrimSpace(x.Publisher)
	res.PublicationYear = value.Int(strings.TrimSpace(x.PublicationYear))
	res.Language = strings.TrimSpace(x.Language)
	res.Version = strings.TrimSpace(x.Version)

	if x.ResourceType != nil {
		applyResourceType(res, x.ResourceType.ResourceTypeGeneral, x.ResourceType.Value)
	}

	for _, s := range x.Subjects {
		applySubject(res, s.SubjectScheme, s.Value)
	}

	var candidates []identity.Candidate
	for i, c := range x.Creators {
		candidates = append(candidates, creatorCandidate(c, i))
	}
	for i, c := range x.Contributors {
		candidates = append(candidates, contributorCandidate(c, len(x.Creators)+i))
	}
	resolution := identity.Resolve(candidates)
	res.Authors = resolution.Authors
	res.Contributors = identity.DedupeInstitutions(resolution.Contributors)

	for _, d := range x.Dates {
		if err := applyDate(res, d.DateType, d.Value); err != nil && opts.Strict {
			return nil, err
		}
	}

	for _, alt := range x.AlternateIdentifiers {
		val := strings.TrimSpace(alt.Value)
		if val == "" {
			continue
		}
		res.AlternateIdentifiers = append(res.AlternateIdentifiers, graph.AlternateIdentifier{
			Value: val,
			Type:  strings.TrimSpace(alt.AlternateIdentifierType),
		})
	}

	for _, s := range x.Sizes {
		if size, ok := parseSizeLabel(s); ok {
			res.Sizes = append(res.Sizes, size)
		}
	}

	for _, d := range x.Descriptions {
		val := strings.TrimSpace(d.Value)
		if val == "" {
			continue
		}
		if opts.StripHTML {
			val = helpers.CleanText(val)
		}
		res.Descriptions = append(res.Descriptions, graph.Description{
			Value: val,
			Type:  graph.ParseDescriptionType(d.DescriptionType),
		})
	}

	for _, loc := range x.GeoLocations {
		if gl, ok := geoLocationFromXML(loc); ok {
			res.GeoLocations = append(res.GeoLocations, gl)
		}
	}

	for _, fr := range x.FundingReferences {
		funder := strings.TrimSpace(fr.FunderName)
		if funder == "" {
			continue
		}
		res.FundingReferences = append(res.FundingReferences, graph.FundingReference{
			Funder:               funder,
			FunderIdentifier:     strings.TrimSpace(fr.FunderIdentifier),
			FunderIdentifierType: strings.TrimSpace(fr.FunderIdentifierType),
			AwardNumber:          strings.TrimSpace(fr.AwardNumber),
			AwardTitle:           strings.TrimSpace(fr.AwardTitle),
		})
	}

	return res, nil
}

func applyIdentifier(res *graph.Resource, rawValue, rawType string) {
	val := strings.TrimSpace(rawValue)
	if val == "" {
		return
	}
	idType := parseIdentifierType(rawType, val)
	res.Identifier = graph.NormalizeIdentifier(val, idType)
	res.IdentifierType = idType
	res.IsSample = idType == graph.IdentifierIGSN
}

func parseIdentifierType(label, fallbackValue string) graph.IdentifierType {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "DOI":
		return graph.IdentifierDOI
	case "IGSN":
		return graph.IdentifierIGSN
	case "HANDLE":
		return graph.IdentifierHandle
	case "URL":
		return graph.IdentifierURL
	default:
		return graph.DetectIdentifierType(fallbackValue)
	}
}

// applyResourceType recovers sample type and material from the composed
// "SampleType: Material" label on physical-object records. A lone label
// cannot be attributed to one side with certainty and lands on the sample
// type; the composed rendering is identical either way.
func applyResourceType(res *graph.Resource, general, text string) {
	res.ResourceTypeGeneral = graph.ParseResourceTypeGeneral(general)
	label := helpers.NormalizeWhitespace(text)
	if label == "" || label == graph.FallbackResourceType {
		return
	}
	if res.IsSample || res.ResourceTypeGeneral == graph.TypePhysicalObject {
		if sampleType, material, ok := strings.Cut(label, ":"); ok {
			res.SampleType = strings.TrimSpace(sampleType)
			res.Material = strings.TrimSpace(material)
			return
		}
		res.SampleType = label
		return
	}
	res.ResourceTypeText = label
}

func applySubject(res *graph.Resource, scheme, raw string) {
	val := helpers.NormalizeWhitespace(raw)
	if val == "" {
		return
	}
	switch scheme {
	case schemeGeologicalAge:
		res.GeologicalAges = appendUnique(res.GeologicalAges, val)
	case schemeGeologicalUnit:
		res.GeologicalUnits = appendUnique(res.GeologicalUnits, val)
	default:
		res.Classifications = appendUnique(res.Classifications, val)
	}
}

func appendUnique(list []string, val string) []string {
	for _, existing := range list {
		if existing == val {
			return list
		}
	}
	return append(list, val)
}

// applyDate splits a rendered "start/end" value back into endpoints and
// stores them after validation. Stored values keep the wire form, so
// export reproduces them byte for byte.
func applyDate(res *graph.Resource, dateType, raw string) error {
	start, end := dates.SplitRange(raw)
	if start == "" && end == "" {
		return nil
	}
	if _, err := dates.Parse(start, false); err != nil {
		return err
	}
	if _, err := dates.Parse(end, true); err != nil {
		return err
	}
	res.Dates = append(res.Dates, graph.ResourceDate{
		Type:  graph.ParseDateType(dateType),
		Start: start,
		End:   end,
	})
	return nil
}

// parseSizeLabel splits a DataCite size string back into value and unit.
// The leading number is renormalized to the canonical decimal form;
// labels that do not start with a number are kept verbatim.
func parseSizeLabel(raw string) (graph.Size, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return graph.Size{}, false
	}
	if normalized, err := value.ParseDecimal(fields[0]); err == nil {
		return graph.Size{
			Value: normalized,
			Unit:  strings.Join(fields[1:], " "),
		}, true
	}
	return graph.Size{Value: strings.Join(fields, " ")}, true
}

func creatorCandidate(c XMLParseCreator, pos int) identity.Candidate {
	cand := identity.Candidate{
		Position: pos,
		IsAuthor: true,
		Roles:    []graph.Role{graph.RoleCreator},
	}
	fillAgentName(&cand, c.CreatorName.NameType, c.CreatorName.Value, c.GivenName, c.FamilyName)
	applyNameIdentifiers(&cand, c.NameIdentifiers)
	applyAffiliations(&cand, c.Affiliations)
	return cand
}

func contributorCandidate(c XMLParseContributor, pos int) identity.Candidate {
	cand := identity.Candidate{
		Position: pos,
		Roles:    []graph.Role{graph.ParseRole(c.ContributorType)},
	}
	fillAgentName(&cand, c.ContributorName.NameType, c.ContributorName.Value, c.GivenName, c.FamilyName)
	applyNameIdentifiers(&cand, c.NameIdentifiers)
	applyAffiliations(&cand, c.Affiliations)
	return cand
}

// fillAgentName distributes a DataCite name onto the candidate. Explicit
// givenName and familyName win over splitting the display name.
func fillAgentName(cand *identity.Candidate, nameType, display, given, family string) {
	display = helpers.NormalizeWhitespace(display)
	given = strings.TrimSpace(given)
	family = strings.TrimSpace(family)

	if strings.EqualFold(strings.TrimSpace(nameType), "Organizational") {
		cand.Kind = graph.AgentInstitution
		cand.Name = display
		return
	}

	cand.Kind = graph.AgentPerson
	if given == "" && family == "" {
		given, family = helpers.SplitPersonName(display)
	}
	cand.GivenName = given
	cand.FamilyName = family
}

func applyNameIdentifiers(cand *identity.Candidate, ids []XMLParseNameIdentifier) {
	for _, id := range ids {
		val := strings.TrimSpace(id.Value)
		if val == "" {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(id.NameIdentifierScheme)) {
		case "ORCID":
			cand.ORCID = graph.NormalizeIdentifier(val, graph.IdentifierORCID)
		case "ROR":
			cand.ROR = graph.NormalizeIdentifier(val, graph.IdentifierROR)
		}
	}
}

func applyAffiliations(cand *identity.Candidate, affs []XMLParseAffiliation) {
	for _, aff := range affs {
		name := helpers.NormalizeWhitespace(aff.Value)
		if name == "" {
			continue
		}
		cand.Affiliations = append(cand.Affiliations, graph.Affiliation{Name: name})
	}
}

func geoLocationFromXML(loc XMLParseGeoLocation) (graph.GeoLocation, bool) {
	out := graph.GeoLocation{Place: helpers.NormalizeWhitespace(loc.Place)}

	if loc.Point != nil {
		if p, ok := parsePoint(loc.Point.Latitude, loc.Point.Longitude); ok {
			out.Point = p
		}
	}

	if loc.Box != nil {
		west, errW := value.ParseLongitude(loc.Box.West)
		east, errE := value.ParseLongitude(loc.Box.East)
		south, errS := value.ParseLatitude(loc.Box.South)
		north, errN := value.ParseLatitude(loc.Box.North)
		if errW == nil && errE == nil && errS == nil && errN == nil {
			out.Box = &graph.GeoBox{
				WestLongitude: west,
				EastLongitude: east,
				SouthLatitude: south,
				NorthLatitude: north,
			}
		}
	}

	if loc.Polygon != nil {
		var points []graph.GeoPoint
		for _, p := range loc.Polygon.Points {
			if parsed, ok := parsePoint(p.Latitude, p.Longitude); ok {
				points = append(points, *parsed)
			}
		}
		if len(points) >= 3 {
			poly := &graph.GeoPolygon{Points: points}
			if loc.Polygon.InPoint != nil {
				if parsed, ok := parsePoint(loc.Polygon.InPoint.Latitude, loc.Polygon.InPoint.Longitude); ok {
					poly.InPoint = parsed
				}
			}
			out.Polygon = poly
		}
	}

	return out, !out.IsEmpty()
}

func parsePoint(latRaw, lonRaw string) (*graph.GeoPoint, bool) {
	lat, errLat := value.ParseLatitude(latRaw)
	lon, errLon := value.ParseLongitude(lonRaw)
	if errLat != nil || errLon != nil {
		return nil, false
	}
	return &graph.GeoPoint{Latitude: lat, Longitude: lon}, true
}

// XML types for parsing. These mirror the serialization structs but keep
// numeric fields as strings so one malformed value does not abort the
// whole decode.

type XMLParseResource struct {
	XMLName              xml.Name                      `xml:"resource"`
	Identifier           *XMLParseIdentifier           `xml:"identifier"`
	Creators             []XMLParseCreator             `xml:"creators>creator"`
	Titles               []XMLParseTitle               `xml:"titles>title"`
	Publisher            string                        `xml:"publisher"`
	PublicationYear      string                        `xml:"publicationYear"`
	ResourceType         *XMLParseResourceType         `xml:"resourceType"`
	Subjects             []XMLParseSubject             `xml:"subjects>subject"`
	Contributors         []XMLParseContributor         `xml:"contributors>contributor"`
	Dates                []XMLParseDate                `xml:"dates>date"`
	Language             string                        `xml:"language"`
	AlternateIdentifiers []XMLParseAlternateIdentifier `xml:"alternateIdentifiers>alternateIdentifier"`
	Sizes                []string                      `xml:"sizes>size"`
	Version              string                        `xml:"version"`
	Descriptions         []XMLParseDescription         `xml:"descriptions>description"`
	GeoLocations         []XMLParseGeoLocation         `xml:"geoLocations>geoLocation"`
	FundingReferences    []XMLParseFundingRef          `xml:"fundingReferences>fundingReference"`
}

type XMLParseIdentifier struct {
	IdentifierType string `xml:"identifierType,attr"`
	Value          string `xml:",chardata"`
}

type XMLParseCreator struct {
	CreatorName     XMLParseAgentName        `xml:"creatorName"`
	GivenName       string                   `xml:"givenName"`
	FamilyName      string                   `xml:"familyName"`
	NameIdentifiers []XMLParseNameIdentifier `xml:"nameIdentifier"`
	Affiliations    []XMLParseAffiliation    `xml:"affiliation"`
}

type XMLParseContributor struct {
	ContributorType string                   `xml:"contributorType,attr"`
	ContributorName XMLParseAgentName        `xml:"contributorName"`
	GivenName       string                   `xml:"givenName"`
	FamilyName      string                   `xml:"familyName"`
	NameIdentifiers []XMLParseNameIdentifier `xml:"nameIdentifier"`
	Affiliations    []XMLParseAffiliation    `xml:"affiliation"`
}

type XMLParseAgentName struct {
	NameType string `xml:"nameType,attr"`
	Value    string `xml:",chardata"`
}

type XMLParseNameIdentifier struct {
	NameIdentifierScheme string `xml:"nameIdentifierScheme,attr"`
	SchemeURI            string `xml:"schemeURI,attr"`
	Value                string `xml:",chardata"`
}

type XMLParseAffiliation struct {
	Value string `xml:",chardata"`
}

type XMLParseTitle struct {
	TitleType string `xml:"titleType,attr"`
	Value     string `xml:",chardata"`
}

type XMLParseResourceType struct {
	ResourceTypeGeneral string `xml:"resourceTypeGeneral,attr"`
	Value               string `xml:",chardata"`
}

type XMLParseSubject struct {
	SubjectScheme string `xml:"subjectScheme,attr"`
	Value         string `xml:",chardata"`
}

type XMLParseDate struct {
	DateType string `xml:"dateType,attr"`
	Value    string `xml:",chardata"`
}

type XMLParseAlternateIdentifier struct {
	AlternateIdentifierType string `xml:"alternateIdentifierType,attr"`
	Value                   string `xml:",chardata"`
}

type XMLParseDescription struct {
	DescriptionType string `xml:"descriptionType,attr"`
	Value           string `xml:",chardata"`
}

type XMLParseGeoLocation struct {
	Place   string           `xml:"geoLocationPlace"`
	Point   *XMLParsePoint   `xml:"geoLocationPoint"`
	Box     *XMLParseBox     `xml:"geoLocationBox"`
	Polygon *XMLParsePolygon `xml:"geoLocationPolygon"`
}

type XMLParsePoint struct {
	Latitude  string `xml:"pointLatitude"`
	Longitude string `xml:"pointLongitude"`
}

type XMLParseBox struct {
	West  string `xml:"westBoundLongitude"`
	East  string `xml:"eastBoundLongitude"`
	South string `xml:"southBoundLatitude"`
	North string `xml:"northBoundLatitude"`
}

type XMLParsePolygon struct {
	Points  []XMLParsePoint `xml:"polygonPoint"`
	InPoint *XMLParsePoint  `xml:"inPolygonPoint"`
}

type XMLParseFundingRef struct {
	FunderName           string `xml:"funderName"`
	FunderIdentifier     string `xml:"funderIdentifier"`
	FunderIdentifierType string `xml:"funderIdentifierType"`
	AwardNumber          string `xml:"awardNumber"`
	AwardTitle           string `xml:"awardTitle"`
}
