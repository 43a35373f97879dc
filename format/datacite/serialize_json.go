package datacite

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/McNamara84/ernie-sub002/dates"
	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/graph"
)

// Serialize writes graph resources as DataCite JSON. A single resource
// becomes the REST envelope {"data": {"type": "dois", "attributes": ...}};
// multiple resources become {"data": [...]}. With opts.Validate set every
// resource is checked against the DataCite JSON Schema before anything is
// written.
func (f *JSONFormat) Serialize(w io.Writer, resources []*graph.Resource, opts *format.SerializeOptions) error {
	if opts == nil {
		opts = format.NewSerializeOptions()
	}
	resolver := dates.NewResolver(opts.FallbackOffset)

	var entries []jsonData
	for i, res := range resources {
		if opts.Validate {
			if err := validateResource(res, resolver); err != nil {
				return fmt.Errorf("resource %d: %w", i, err)
			}
		}
		entries = append(entries, jsonData{
			Type:       "dois",
			Attributes: buildAttributes(res, resolver),
		})
	}

	var doc any
	if len(entries) == 1 {
		doc = jsonDocument{Data: entries[0]}
	} else {
		doc = jsonDocumentList{Data: entries}
	}

	var output []byte
	var err error
	if opts.Pretty {
		output, err = json.MarshalIndent(doc, "", "  ")
	} else {
		output, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}

	if _, err := w.Write(output); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}

// buildAttributes converts a graph resource to the DataCite JSON attributes
// object. Keys for absent values are omitted entirely rather than emitted
// empty, including parent keys whose children are all absent.
func buildAttributes(res *graph.Resource, resolver *dates.Resolver) jsonAttributes {
	attrs := jsonAttributes{
		Publisher:       res.Publisher,
		PublicationYear: flexYear(res.PublicationYear),
		Language:        res.Language,
		Version:         res.Version,
		SchemaVersion:   "http://datacite.org/schema/kernel-4",
		Types: &jsonTypes{
			ResourceTypeGeneral: string(res.DefaultTypeGeneral()),
			ResourceType:        res.ComposedResourceType(),
		},
	}

	if res.Identifier != "" {
		if res.IdentifierType == graph.IdentifierDOI {
			attrs.DOI = res.Identifier
		}
		attrs.Identifiers = []jsonIdentifier{{
			Identifier:     res.Identifier,
			IdentifierType: identifierTypeLabel(res.IdentifierType),
		}}
	}

	for _, a := range res.Authors {
		attrs.Creators = append(attrs.Creators, agentToJSON(a.Agent, ""))
	}

	for _, t := range res.Titles {
		attrs.Titles = append(attrs.Titles, jsonTitle{
			Title:     t.Value,
			TitleType: string(t.Type),
		})
	}

	for _, s := range subjectsOf(res) {
		attrs.Subjects = append(attrs.Subjects, jsonSubject{
			Subject:       s.value,
			SubjectScheme: s.scheme,
		})
	}

	for _, c := range contributorEntries(res) {
		attrs.Contributors = append(attrs.Contributors, agentToJSON(c.Agent, contributorTypeOf(c.Roles)))
	}

	for _, d := range res.Dates {
		rendered := resolver.RenderRange(d.Start, d.End)
		if rendered == "" {
			continue
		}
		attrs.Dates = append(attrs.Dates, jsonDate{
			Date:     rendered,
			DateType: string(d.Type),
		})
	}

	for _, alt := range alternateIdentifiersOf(res) {
		attrs.AlternateIdentifiers = append(attrs.AlternateIdentifiers, jsonAlternateIdentifier{
			AlternateIdentifier:     alt.Value,
			AlternateIdentifierType: alt.Type,
		})
	}

	for _, s := range res.Sizes {
		attrs.Sizes = append(attrs.Sizes, sizeLabel(s))
	}

	for _, d := range res.Descriptions {
		attrs.Descriptions = append(attrs.Descriptions, jsonDescription{
			Description:     d.Value,
			DescriptionType: string(d.Type),
		})
	}

	for _, loc := range res.GeoLocations {
		if loc.IsEmpty() {
			continue
		}
		attrs.GeoLocations = append(attrs.GeoLocations, geoLocationToJSON(loc))
	}

	for _, fr := range res.FundingReferences {
		attrs.FundingReferences = append(attrs.FundingReferences, jsonFundingReference{
			FunderName:           fr.Funder,
			FunderIdentifier:     fr.FunderIdentifier,
			FunderIdentifierType: fr.FunderIdentifierType,
			AwardNumber:          fr.AwardNumber,
			AwardTitle:           fr.AwardTitle,
		})
	}

	return attrs
}

func agentToJSON(a graph.Agent, contributorType string) jsonAgent {
	out := jsonAgent{
		Name:            a.DisplayName(),
		NameType:        nameTypeLabel(a),
		GivenName:       a.GivenName,
		FamilyName:      a.FamilyName,
		ContributorType: contributorType,
	}
	if a.ORCID != "" {
		out.NameIdentifiers = append(out.NameIdentifiers, jsonNameIdentifier{
			NameIdentifier:       a.ORCID,
			NameIdentifierScheme: "ORCID",
			SchemeURI:            "https://orcid.org",
		})
	}
	if a.ROR != "" {
		out.NameIdentifiers = append(out.NameIdentifiers, jsonNameIdentifier{
			NameIdentifier:       a.ROR,
			NameIdentifierScheme: "ROR",
			SchemeURI:            "https://ror.org",
		})
	}
	for _, aff := range a.Affiliations {
		jaff := jsonAffiliation{Name: aff.Name}
		if aff.ROR != "" {
			jaff.AffiliationIdentifier = aff.ROR
			jaff.AffiliationIdentifierScheme = "ROR"
		}
		out.Affiliation = append(out.Affiliation, jaff)
	}
	return out
}

func geoLocationToJSON(loc graph.GeoLocation) jsonGeoLocation {
	out := jsonGeoLocation{GeoLocationPlace: loc.Place}
	switch loc.Variant() {
	case "point":
		out.GeoLocationPoint = &jsonGeoPoint{
			PointLatitude:  flexCoord(loc.Point.Latitude),
			PointLongitude: flexCoord(loc.Point.Longitude),
		}
	case "box":
		out.GeoLocationBox = &jsonGeoBox{
			WestBoundLongitude: flexCoord(loc.Box.WestLongitude),
			EastBoundLongitude: flexCoord(loc.Box.EastLongitude),
			SouthBoundLatitude: flexCoord(loc.Box.SouthLatitude),
			NorthBoundLatitude: flexCoord(loc.Box.NorthLatitude),
		}
	case "polygon":
		for i, p := range loc.Polygon.Points {
			entry := jsonPolygonEntry{
				PolygonPoint: jsonGeoPoint{
					PointLatitude:  flexCoord(p.Latitude),
					PointLongitude: flexCoord(p.Longitude),
				},
			}
			if i == 0 && loc.Polygon.InPoint != nil {
				entry.InPolygonPoint = &jsonGeoPoint{
					PointLatitude:  flexCoord(loc.Polygon.InPoint.Latitude),
					PointLongitude: flexCoord(loc.Polygon.InPoint.Longitude),
				}
			}
			out.GeoLocationPolygon = append(out.GeoLocationPolygon, entry)
		}
	}
	return out
}

// JSON document types following the DataCite REST API shape.

type jsonDocument struct {
	Data jsonData `json:"data"`
}

type jsonDocumentList struct {
	Data []jsonData `json:"data"`
}

type jsonData struct {
	Type       string         `json:"type"`
	Attributes jsonAttributes `json:"attributes"`
}

type jsonAttributes struct {
	DOI                  string                    `json:"doi,omitempty"`
	Identifiers          []jsonIdentifier          `json:"identifiers,omitempty"`
	Creators             []jsonAgent               `json:"creators,omitempty"`
	Titles               []jsonTitle               `json:"titles,omitempty"`
	Publisher            string                    `json:"publisher,omitempty"`
	PublicationYear      flexYear                  `json:"publicationYear,omitempty"`
	Subjects             []jsonSubject             `json:"subjects,omitempty"`
	Contributors         []jsonAgent               `json:"contributors,omitempty"`
	Dates                []jsonDate                `json:"dates,omitempty"`
	Language             string                    `json:"language,omitempty"`
	Types                *jsonTypes                `json:"types,omitempty"`
	AlternateIdentifiers []jsonAlternateIdentifier `json:"alternateIdentifiers,omitempty"`
	Sizes                []string                  `json:"sizes,omitempty"`
	Version              string                    `json:"version,omitempty"`
	Descriptions         []jsonDescription         `json:"descriptions,omitempty"`
	GeoLocations         []jsonGeoLocation         `json:"geoLocations,omitempty"`
	FundingReferences    []jsonFundingReference    `json:"fundingReferences,omitempty"`
	SchemaVersion        string                    `json:"schemaVersion,omitempty"`
}

type jsonIdentifier struct {
	Identifier     string `json:"identifier"`
	IdentifierType string `json:"identifierType"`
}

type jsonAgent struct {
	Name            string               `json:"name"`
	NameType        string               `json:"nameType,omitempty"`
	GivenName       string               `json:"givenName,omitempty"`
	FamilyName      string               `json:"familyName,omitempty"`
	ContributorType string               `json:"contributorType,omitempty"`
	NameIdentifiers []jsonNameIdentifier `json:"nameIdentifiers,omitempty"`
	Affiliation     []jsonAffiliation    `json:"affiliation,omitempty"`
}

type jsonNameIdentifier struct {
	NameIdentifier       string `json:"nameIdentifier"`
	NameIdentifierScheme string `json:"nameIdentifierScheme"`
	SchemeURI            string `json:"schemeUri,omitempty"`
}

type jsonAffiliation struct {
	Name                        string `json:"name"`
	AffiliationIdentifier       string `json:"affiliationIdentifier,omitempty"`
	AffiliationIdentifierScheme string `json:"affiliationIdentifierScheme,omitempty"`
}

type jsonTitle struct {
	Title     string `json:"title"`
	TitleType string `json:"titleType,omitempty"`
}

type jsonSubject struct {
	Subject       string `json:"subject"`
	SubjectScheme string `json:"subjectScheme,omitempty"`
}

type jsonDate struct {
	Date     string `json:"date"`
	DateType string `json:"dateType"`
}

type jsonTypes struct {
	ResourceTypeGeneral string `json:"resourceTypeGeneral"`
	ResourceType        string `json:"resourceType,omitempty"`
}

type jsonAlternateIdentifier struct {
	AlternateIdentifier     string `json:"alternateIdentifier"`
	AlternateIdentifierType string `json:"alternateIdentifierType"`
}

type jsonDescription struct {
	Description     string `json:"description"`
	DescriptionType string `json:"descriptionType"`
}

type jsonGeoLocation struct {
	GeoLocationPlace   string             `json:"geoLocationPlace,omitempty"`
	GeoLocationPoint   *jsonGeoPoint      `json:"geoLocationPoint,omitempty"`
	GeoLocationBox     *jsonGeoBox        `json:"geoLocationBox,omitempty"`
	GeoLocationPolygon []jsonPolygonEntry `json:"geoLocationPolygon,omitempty"`
}

type jsonGeoPoint struct {
	PointLatitude  flexCoord `json:"pointLatitude"`
	PointLongitude flexCoord `json:"pointLongitude"`
}

type jsonGeoBox struct {
	WestBoundLongitude flexCoord `json:"westBoundLongitude"`
	EastBoundLongitude flexCoord `json:"eastBoundLongitude"`
	SouthBoundLatitude flexCoord `json:"southBoundLatitude"`
	NorthBoundLatitude flexCoord `json:"northBoundLatitude"`
}

type jsonPolygonEntry struct {
	PolygonPoint   jsonGeoPoint  `json:"polygonPoint"`
	InPolygonPoint *jsonGeoPoint `json:"inPolygonPoint,omitempty"`
}

type jsonFundingReference struct {
	FunderName           string `json:"funderName"`
	FunderIdentifier     string `json:"funderIdentifier,omitempty"`
	FunderIdentifierType string `json:"funderIdentifierType,omitempty"`
	AwardNumber          string `json:"awardNumber,omitempty"`
	AwardTitle           string `json:"awardTitle,omitempty"`
}
