package datacite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/graph"
	"github.com/McNamara84/ernie-sub002/helpers"
	"github.com/McNamara84/ernie-sub002/identity"
	"github.com/McNamara84/ernie-sub002/value"
)

// Parse reads DataCite JSON and returns graph resources. It accepts the
// REST envelope with a single record, the envelope with a data array, and
// a bare attributes object.
func (f *JSONFormat) Parse(r io.Reader, opts *format.ParseOptions) ([]*graph.Resource, error) {
	if opts == nil {
		opts = format.NewParseOptions()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	attrsList, err := extractAttributes(data)
	if err != nil {
		return nil, err
	}

	if len(attrsList) == 0 {
		return nil, fmt.Errorf("no DataCite records found in input")
	}

	resources := make([]*graph.Resource, 0, len(attrsList))
	for i, attrs := range attrsList {
		res, err := attributesToResource(attrs, opts)
		if err != nil {
			return nil, fmt.Errorf("converting record %d: %w", i, err)
		}
		resources = append(resources, res)
	}

	return resources, nil
}

func extractAttributes(data []byte) ([]jsonAttributes, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	raw := bytes.TrimSpace(envelope.Data)
	if len(raw) > 0 && string(raw) != "null" {
		if raw[0] == '[' {
			var entries []jsonData
			if err := json.Unmarshal(raw, &entries); err != nil {
				return nil, fmt.Errorf("parsing data array: %w", err)
			}
			out := make([]jsonAttributes, 0, len(entries))
			for _, entry := range entries {
				out = append(out, entry.Attributes)
			}
			return out, nil
		}
		var entry jsonData
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("parsing data object: %w", err)
		}
		return []jsonAttributes{entry.Attributes}, nil
	}

	// No envelope: try a bare attributes object.
	var attrs jsonAttributes
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, fmt.Errorf("parsing attributes: %w", err)
	}
	if len(attrs.Titles) == 0 && len(attrs.Creators) == 0 && attrs.DOI == "" && len(attrs.Identifiers) == 0 {
		return nil, nil
	}
	return []jsonAttributes{attrs}, nil
}

func attributesToResource(attrs jsonAttributes, opts *format.ParseOptions) (*graph.Resource, error) {
	res := graph.NewResource()

	switch {
	case len(attrs.Identifiers) > 0:
		applyIdentifier(res, attrs.Identifiers[0].Identifier, attrs.Identifiers[0].IdentifierType)
	case attrs.DOI != "":
		applyIdentifier(res, attrs.DOI, "DOI")
	}

	for _, t := range attrs.Titles {
		val := helpers.NormalizeWhitespace(t.Title)
		if val == "" {
			continue
		}
		res.Titles = append(res.Titles, graph.Title{
			Value: val,
			Type:  graph.ParseTitleType(t.TitleType),
		})
	}

	res.Publisher = strings.TrimSpace(attrs.Publisher)
	res.PublicationYear = int(attrs.PublicationYear)
	res.Language = strings.TrimSpace(attrs.Language)
	res.Version = strings.TrimSpace(attrs.Version)

	if attrs.Types != nil {
		applyResourceType(res, attrs.Types.ResourceTypeGeneral, attrs.Types.ResourceType)
	}

	for _, s := range attrs.Subjects {
		applySubject(res, s.SubjectScheme, s.Subject)
	}

	var candidates []identity.Candidate
	for i, a := range attrs.Creators {
		candidates = append(candidates, jsonAgentCandidate(a, i, true))
	}
	for i, a := range attrs.Contributors {
		candidates = append(candidates, jsonAgentCandidate(a, len(attrs.Creators)+i, false))
	}
	resolution := identity.Resolve(candidates)
	res.Authors = resolution.Authors
	res.Contributors = identity.DedupeInstitutions(resolution.Contributors)

	for _, d := range attrs.Dates {
		if err := applyDate(res, d.DateType, d.Date); err != nil && opts.Strict {
			return nil, err
		}
	}

	for _, alt := range attrs.AlternateIdentifiers {
		val := strings.TrimSpace(alt.AlternateIdentifier)
		if val == "" {
			continue
		}
		res.AlternateIdentifiers = append(res.AlternateIdentifiers, graph.AlternateIdentifier{
			Value: val,
			Type:  strings.TrimSpace(alt.AlternateIdentifierType),
		})
	}

	for _, s := range attrs.Sizes {
		if size, ok := parseSizeLabel(s); ok {
			res.Sizes = append(res.Sizes, size)
		}
	}

	for _, d := range attrs.Descriptions {
		val := strings.TrimSpace(d.Description)
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

	for _, loc := range attrs.GeoLocations {
		if gl, ok := geoLocationFromJSON(loc); ok {
			res.GeoLocations = append(res.GeoLocations, gl)
		}
	}

	for _, fr := range attrs.FundingReferences {
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

func jsonAgentCandidate(a jsonAgent, pos int, isAuthor bool) identity.Candidate {
	cand := identity.Candidate{
		Position: pos,
		IsAuthor: isAuthor,
	}
	if isAuthor {
		cand.Roles = []graph.Role{graph.RoleCreator}
	} else {
		cand.Roles = []graph.Role{graph.ParseRole(a.ContributorType)}
	}
	fillAgentName(&cand, a.NameType, a.Name, a.GivenName, a.FamilyName)
	for _, id := range a.NameIdentifiers {
		val := strings.TrimSpace(id.NameIdentifier)
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
	for _, aff := range a.Affiliation {
		name := helpers.NormalizeWhitespace(aff.Name)
		if name == "" {
			continue
		}
		entry := graph.Affiliation{Name: name}
		if strings.EqualFold(strings.TrimSpace(aff.AffiliationIdentifierScheme), "ROR") {
			entry.ROR = graph.NormalizeIdentifier(aff.AffiliationIdentifier, graph.IdentifierROR)
		}
		cand.Affiliations = append(cand.Affiliations, entry)
	}
	return cand
}

func geoLocationFromJSON(loc jsonGeoLocation) (graph.GeoLocation, bool) {
	out := graph.GeoLocation{Place: helpers.NormalizeWhitespace(loc.GeoLocationPlace)}

	if p := loc.GeoLocationPoint; p != nil && validLatitude(p.PointLatitude) && validLongitude(p.PointLongitude) {
		out.Point = &graph.GeoPoint{
			Latitude:  float64(p.PointLatitude),
			Longitude: float64(p.PointLongitude),
		}
	}

	if b := loc.GeoLocationBox; b != nil &&
		validLongitude(b.WestBoundLongitude) && validLongitude(b.EastBoundLongitude) &&
		validLatitude(b.SouthBoundLatitude) && validLatitude(b.NorthBoundLatitude) {
		out.Box = &graph.GeoBox{
			WestLongitude: float64(b.WestBoundLongitude),
			EastLongitude: float64(b.EastBoundLongitude),
			SouthLatitude: float64(b.SouthBoundLatitude),
			NorthLatitude: float64(b.NorthBoundLatitude),
		}
	}

	if len(loc.GeoLocationPolygon) > 0 {
		var points []graph.GeoPoint
		var inPoint *graph.GeoPoint
		for _, entry := range loc.GeoLocationPolygon {
			if validLatitude(entry.PolygonPoint.PointLatitude) && validLongitude(entry.PolygonPoint.PointLongitude) {
				points = append(points, graph.GeoPoint{
					Latitude:  float64(entry.PolygonPoint.PointLatitude),
					Longitude: float64(entry.PolygonPoint.PointLongitude),
				})
			}
			if ip := entry.InPolygonPoint; ip != nil && inPoint == nil &&
				validLatitude(ip.PointLatitude) && validLongitude(ip.PointLongitude) {
				inPoint = &graph.GeoPoint{
					Latitude:  float64(ip.PointLatitude),
					Longitude: float64(ip.PointLongitude),
				}
			}
		}
		if len(points) >= 3 {
			out.Polygon = &graph.GeoPolygon{Points: points, InPoint: inPoint}
		}
	}

	return out, !out.IsEmpty()
}

func validLatitude(v flexCoord) bool {
	return v >= -90 && v <= 90
}

func validLongitude(v flexCoord) bool {
	return v >= -180 && v <= 180
}

// flexYear tolerates publication years that arrive as JSON strings in
// older dumps while marshaling as a plain number.
type flexYear int

func (y *flexYear) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("publicationYear: %w", err)
	}
	s := strings.TrimSpace(value.Text(raw))
	if s == "" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("publicationYear %q is not a number", s)
	}
	*y = flexYear(n)
	return nil
}

// flexCoord tolerates coordinates that arrive as JSON strings in older
// dumps while marshaling as a plain number.
type flexCoord float64

func (c *flexCoord) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	s := strings.TrimSpace(value.Text(raw))
	if s == "" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("coordinate %q is not a number", s)
	}
	*c = flexCoord(f)
	return nil
}
