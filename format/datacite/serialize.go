package datacite

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/McNamara84/ernie-sub002/dates"
	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/graph"
)

// Serialize writes graph resources as DataCite XML. With opts.Validate set
// the resource attributes are checked against the DataCite JSON Schema
// first and nothing is written on failure.
func (f *Format) Serialize(w io.Writer, resources []*graph.Resource, opts *format.SerializeOptions) error {
	if opts == nil {
		opts = format.NewSerializeOptions()
	}
	resolver := dates.NewResolver(opts.FallbackOffset)

	var outputs [][]byte
	for i, res := range resources {
		if opts.Validate {
			if err := validateResource(res, resolver); err != nil {
				return fmt.Errorf("resource %d: %w", i, err)
			}
		}

		xmlRes := resourceToXML(res, resolver)
		output, err := xml.MarshalIndent(xmlRes, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling resource %d: %w", i, err)
		}
		outputs = append(outputs, output)
	}

	for i, output := range outputs {
		if i == 0 {
			if _, err := w.Write([]byte(xml.Header)); err != nil {
				return err
			}
		}
		if _, err := w.Write(output); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return err
		}
	}

	return nil
}

// resourceToXML converts a graph resource to the XML document struct.
func resourceToXML(res *graph.Resource, resolver *dates.Resolver) *XMLResource {
	xmlRes := &XMLResource{
		Xmlns:    "http://datacite.org/schema/kernel-4",
		XmlnsXsi: "http://www.w3.org/2001/XMLSchema-instance",
		XsiSchemaLocation: "http://datacite.org/schema/kernel-4 " +
			"http://schema.datacite.org/meta/kernel-4.5/metadata.xsd",
		Publisher:       res.Publisher,
		PublicationYear: res.PublicationYear,
		Language:        res.Language,
		Version:         res.Version,
	}

	if res.Identifier != "" {
		xmlRes.Identifier = &XMLIdentifier{
			IdentifierType: identifierTypeLabel(res.IdentifierType),
			Value:          res.Identifier,
		}
	}

	for _, a := range res.Authors {
		xmlRes.Creators = append(xmlRes.Creators, XMLCreator{
			CreatorName: XMLAgentName{
				NameType: nameTypeLabel(a.Agent),
				Value:    a.Agent.DisplayName(),
			},
			GivenName:       a.Agent.GivenName,
			FamilyName:      a.Agent.FamilyName,
			NameIdentifiers: nameIdentifiersToXML(a.Agent),
			Affiliations:    affiliationsToXML(a.Agent.Affiliations),
		})
	}

	for _, t := range res.Titles {
		xmlRes.Titles = append(xmlRes.Titles, XMLTitle{
			TitleType: string(t.Type),
			Value:     t.Value,
		})
	}

	xmlRes.ResourceType = &XMLResourceType{
		ResourceTypeGeneral: string(res.DefaultTypeGeneral()),
		Value:               res.ComposedResourceType(),
	}

	for _, s := range subjectsOf(res) {
		xmlRes.Subjects = append(xmlRes.Subjects, XMLSubject{
			SubjectScheme: s.scheme,
			Value:         s.value,
		})
	}

	for _, c := range contributorEntries(res) {
		xmlRes.Contributors = append(xmlRes.Contributors, XMLContributor{
			ContributorType: contributorTypeOf(c.Roles),
			ContributorName: XMLAgentName{
				NameType: nameTypeLabel(c.Agent),
				Value:    c.Agent.DisplayName(),
			},
			GivenName:       c.Agent.GivenName,
			FamilyName:      c.Agent.FamilyName,
			NameIdentifiers: nameIdentifiersToXML(c.Agent),
			Affiliations:    affiliationsToXML(c.Agent.Affiliations),
		})
	}

	for _, d := range res.Dates {
		rendered := resolver.RenderRange(d.Start, d.End)
		if rendered == "" {
			continue
		}
		xmlRes.Dates = append(xmlRes.Dates, XMLDate{
			DateType: string(d.Type),
			Value:    rendered,
		})
	}

	for _, alt := range alternateIdentifiersOf(res) {
		xmlRes.AlternateIdentifiers = append(xmlRes.AlternateIdentifiers, XMLAlternateIdentifier{
			AlternateIdentifierType: alt.Type,
			Value:                   alt.Value,
		})
	}

	for _, s := range res.Sizes {
		xmlRes.Sizes = append(xmlRes.Sizes, sizeLabel(s))
	}

	for _, d := range res.Descriptions {
		xmlRes.Descriptions = append(xmlRes.Descriptions, XMLDescription{
			DescriptionType: string(d.Type),
			Value:           d.Value,
		})
	}

	for _, loc := range res.GeoLocations {
		if loc.IsEmpty() {
			continue
		}
		xmlRes.GeoLocations = append(xmlRes.GeoLocations, geoLocationToXML(loc))
	}

	for _, fr := range res.FundingReferences {
		xmlRes.FundingReferences = append(xmlRes.FundingReferences, XMLFundingReference{
			FunderName:           fr.Funder,
			FunderIdentifier:     fr.FunderIdentifier,
			FunderIdentifierType: fr.FunderIdentifierType,
			AwardNumber:          fr.AwardNumber,
			AwardTitle:           fr.AwardTitle,
		})
	}

	return xmlRes
}

func identifierTypeLabel(t graph.IdentifierType) string {
	if t == graph.IdentifierUnspecified {
		return "DOI"
	}
	return string(t)
}

// nameTypeLabel returns the DataCite nameType for an agent. People are
// Personal, institutions Organizational.
func nameTypeLabel(a graph.Agent) string {
	if a.IsPerson() {
		return "Personal"
	}
	return "Organizational"
}

func nameIdentifiersToXML(a graph.Agent) []XMLNameIdentifier {
	var out []XMLNameIdentifier
	if a.ORCID != "" {
		out = append(out, XMLNameIdentifier{
			NameIdentifierScheme: "ORCID",
			SchemeURI:            "https://orcid.org",
			Value:                a.ORCID,
		})
	}
	if a.ROR != "" {
		out = append(out, XMLNameIdentifier{
			NameIdentifierScheme: "ROR",
			SchemeURI:            "https://ror.org",
			Value:                a.ROR,
		})
	}
	return out
}

func affiliationsToXML(affs []graph.Affiliation) []XMLAffiliation {
	var out []XMLAffiliation
	for _, aff := range affs {
		out = append(out, XMLAffiliation{Value: aff.Name})
	}
	return out
}

// contributorEntries lists the contributors to emit. DataCite has no
// dedicated contact field, so contact authors are emitted a second time
// as ContactPerson contributors; identity resolution folds them back into
// the author on import.
func contributorEntries(res *graph.Resource) []graph.Contributor {
	var out []graph.Contributor
	for _, a := range res.Authors {
		if !a.IsContact {
			continue
		}
		out = append(out, graph.Contributor{
			Agent: a.Agent,
			Roles: []graph.Role{graph.RoleContactPerson},
		})
	}
	return append(out, res.Contributors...)
}

// contributorTypeOf picks the DataCite contributorType for a role set: the
// first role that maps onto the closed vocabulary, Other as a last resort.
func contributorTypeOf(roles []graph.Role) string {
	for _, r := range roles {
		if r != "" && r != graph.RoleCreator {
			return r.ContributorType()
		}
	}
	return string(graph.RoleOther)
}

// subject couples a value with its scheme for subject emission.
type subject struct {
	scheme string
	value  string
}

const (
	schemeGeologicalAge  = "GeologicalAge"
	schemeGeologicalUnit = "GeologicalUnit"
	schemeClassification = "Classification"
)

// subjectsOf flattens the classification lists into scheme-tagged subjects.
func subjectsOf(res *graph.Resource) []subject {
	var out []subject
	for _, v := range res.GeologicalAges {
		out = append(out, subject{scheme: schemeGeologicalAge, value: v})
	}
	for _, v := range res.GeologicalUnits {
		out = append(out, subject{scheme: schemeGeologicalUnit, value: v})
	}
	for _, v := range res.Classifications {
		out = append(out, subject{scheme: schemeClassification, value: v})
	}
	return out
}

// AlternateIdentifierTypeLabel tags sample-name alternate identifiers
// derived from Other-typed titles.
const AlternateIdentifierTypeLabel = "Sample Name"

// alternateIdentifiersOf returns the alternate identifiers to emit.
// Only sample resources emit the section: stored alternates first, then
// Other-typed titles not already present. Non-sample resources never emit
// it; their Other titles remain plain titles.
func alternateIdentifiersOf(res *graph.Resource) []graph.AlternateIdentifier {
	if !res.IsSample {
		return nil
	}
	seen := make(map[string]bool)
	var out []graph.AlternateIdentifier
	for _, alt := range res.AlternateIdentifiers {
		if alt.Value == "" || seen[alt.Value] {
			continue
		}
		seen[alt.Value] = true
		out = append(out, alt)
	}
	for _, t := range res.TitlesOfType(graph.TitleOther) {
		if t.Value == "" || seen[t.Value] {
			continue
		}
		seen[t.Value] = true
		out = append(out, graph.AlternateIdentifier{
			Value: t.Value,
			Type:  AlternateIdentifierTypeLabel,
		})
	}
	return out
}

// sizeLabel renders a measured dimension as DataCite free text.
func sizeLabel(s graph.Size) string {
	if s.Unit == "" {
		return s.Value
	}
	return strings.TrimSpace(s.Value + " " + s.Unit)
}

func geoLocationToXML(loc graph.GeoLocation) XMLGeoLocation {
	out := XMLGeoLocation{Place: loc.Place}
	switch loc.Variant() {
	case "point":
		out.Point = &XMLGeoPoint{
			Longitude: loc.Point.Longitude,
			Latitude:  loc.Point.Latitude,
		}
	case "box":
		out.Box = &XMLGeoBox{
			West:  loc.Box.WestLongitude,
			East:  loc.Box.EastLongitude,
			South: loc.Box.SouthLatitude,
			North: loc.Box.NorthLatitude,
		}
	case "polygon":
		poly := &XMLGeoPolygon{}
		for _, p := range loc.Polygon.Points {
			poly.Points = append(poly.Points, XMLGeoPoint{
				Longitude: p.Longitude,
				Latitude:  p.Latitude,
			})
		}
		if loc.Polygon.InPoint != nil {
			poly.InPoint = &XMLGeoPoint{
				Longitude: loc.Polygon.InPoint.Longitude,
				Latitude:  loc.Polygon.InPoint.Latitude,
			}
		}
		out.Polygon = poly
	}
	return out
}

// XML types for DataCite marshaling. Field order follows the kernel-4
// schema sequence.

type XMLResource struct {
	XMLName              xml.Name                 `xml:"resource"`
	Xmlns                string                   `xml:"xmlns,attr"`
	XmlnsXsi             string                   `xml:"xmlns:xsi,attr"`
	XsiSchemaLocation    string                   `xml:"xsi:schemaLocation,attr"`
	Identifier           *XMLIdentifier           `xml:"identifier"`
	Creators             []XMLCreator             `xml:"creators>creator"`
	Titles               []XMLTitle               `xml:"titles>title"`
	Publisher            string                   `xml:"publisher"`
	PublicationYear      int                      `xml:"publicationYear,omitempty"`
	ResourceType         *XMLResourceType         `xml:"resourceType,omitempty"`
	Subjects             []XMLSubject             `xml:"subjects>subject,omitempty"`
	Contributors         []XMLContributor         `xml:"contributors>contributor,omitempty"`
	Dates                []XMLDate                `xml:"dates>date,omitempty"`
	Language             string                   `xml:"language,omitempty"`
	AlternateIdentifiers []XMLAlternateIdentifier `xml:"alternateIdentifiers>alternateIdentifier,omitempty"`
	Sizes                []string                 `xml:"sizes>size,omitempty"`
	Version              string                   `xml:"version,omitempty"`
	Descriptions         []XMLDescription         `xml:"descriptions>description,omitempty"`
	GeoLocations         []XMLGeoLocation         `xml:"geoLocations>geoLocation,omitempty"`
	FundingReferences    []XMLFundingReference    `xml:"fundingReferences>fundingReference,omitempty"`
}

type XMLIdentifier struct {
	IdentifierType string `xml:"identifierType,attr"`
	Value          string `xml:",chardata"`
}

type XMLCreator struct {
	CreatorName     XMLAgentName        `xml:"creatorName"`
	GivenName       string              `xml:"givenName,omitempty"`
	FamilyName      string              `xml:"familyName,omitempty"`
	NameIdentifiers []XMLNameIdentifier `xml:"nameIdentifier,omitempty"`
	Affiliations    []XMLAffiliation    `xml:"affiliation,omitempty"`
}

type XMLContributor struct {
	ContributorType string              `xml:"contributorType,attr"`
	ContributorName XMLAgentName        `xml:"contributorName"`
	GivenName       string              `xml:"givenName,omitempty"`
	FamilyName      string              `xml:"familyName,omitempty"`
	NameIdentifiers []XMLNameIdentifier `xml:"nameIdentifier,omitempty"`
	Affiliations    []XMLAffiliation    `xml:"affiliation,omitempty"`
}

type XMLAgentName struct {
	NameType string `xml:"nameType,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type XMLNameIdentifier struct {
	NameIdentifierScheme string `xml:"nameIdentifierScheme,attr"`
	SchemeURI            string `xml:"schemeURI,attr,omitempty"`
	Value                string `xml:",chardata"`
}

type XMLAffiliation struct {
	Value string `xml:",chardata"`
}

type XMLTitle struct {
	TitleType string `xml:"titleType,attr,omitempty"`
	Value     string `xml:",chardata"`
}

type XMLSubject struct {
	SubjectScheme string `xml:"subjectScheme,attr,omitempty"`
	Value         string `xml:",chardata"`
}

type XMLResourceType struct {
	ResourceTypeGeneral string `xml:"resourceTypeGeneral,attr"`
	Value               string `xml:",chardata"`
}

type XMLDate struct {
	DateType string `xml:"dateType,attr"`
	Value    string `xml:",chardata"`
}

type XMLDescription struct {
	DescriptionType string `xml:"descriptionType,attr"`
	Value           string `xml:",chardata"`
}

type XMLAlternateIdentifier struct {
	AlternateIdentifierType string `xml:"alternateIdentifierType,attr"`
	Value                   string `xml:",chardata"`
}

type XMLFundingReference struct {
	FunderName           string `xml:"funderName"`
	FunderIdentifier     string `xml:"funderIdentifier,omitempty"`
	FunderIdentifierType string `xml:"funderIdentifierType,omitempty"`
	AwardNumber          string `xml:"awardNumber,omitempty"`
	AwardTitle           string `xml:"awardTitle,omitempty"`
}

type XMLGeoLocation struct {
	Place   string         `xml:"geoLocationPlace,omitempty"`
	Point   *XMLGeoPoint   `xml:"geoLocationPoint,omitempty"`
	Box     *XMLGeoBox     `xml:"geoLocationBox,omitempty"`
	Polygon *XMLGeoPolygon `xml:"geoLocationPolygon,omitempty"`
}

type XMLGeoPoint struct {
	Longitude float64 `xml:"pointLongitude"`
	Latitude  float64 `xml:"pointLatitude"`
}

type XMLGeoBox struct {
	West  float64 `xml:"westBoundLongitude"`
	East  float64 `xml:"eastBoundLongitude"`
	South float64 `xml:"southBoundLatitude"`
	North float64 `xml:"northBoundLatitude"`
}

type XMLGeoPolygon struct {
	Points  []XMLGeoPoint `xml:"polygonPoint"`
	InPoint *XMLGeoPoint  `xml:"inPolygonPoint,omitempty"`
}
