// Package graph defines the canonical bibliographic resource graph.
//
// Every format plugin parses into and serializes from this model. It is a
// plain in-memory representation: ingestion builds it, the serializers read
// it, and persistence of the graph is the caller's concern.
package graph

import (
	"strings"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

// TitleType classifies a title the way DataCite does. An empty type marks
// the main title.
type TitleType string

const (
	TitleMain        TitleType = ""
	TitleAlternative TitleType = "AlternativeTitle"
	TitleSubtitle    TitleType = "Subtitle"
	TitleTranslated  TitleType = "TranslatedTitle"
	TitleOther       TitleType = "Other"
)

// ParseTitleType maps a free-text title-type label to the closed vocabulary.
func ParseTitleType(label string) TitleType {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "main", "maintitle":
		return TitleMain
	case "alternativetitle", "alternative title", "alternative":
		return TitleAlternative
	case "subtitle":
		return TitleSubtitle
	case "translatedtitle", "translated title", "translated":
		return TitleTranslated
	default:
		return TitleOther
	}
}

// Title is one title of a resource.
type Title struct {
	Value string    `json:"value"`
	Type  TitleType `json:"type,omitempty"`
}

// DescriptionType classifies a description.
type DescriptionType string

const (
	DescriptionAbstract      DescriptionType = "Abstract"
	DescriptionMethods       DescriptionType = "Methods"
	DescriptionTechnicalInfo DescriptionType = "TechnicalInfo"
	DescriptionSeriesInfo    DescriptionType = "SeriesInformation"
	DescriptionOther         DescriptionType = "Other"
)

// ParseDescriptionType maps a free-text label to the closed vocabulary.
func ParseDescriptionType(label string) DescriptionType {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "abstract":
		return DescriptionAbstract
	case "methods":
		return DescriptionMethods
	case "technicalinfo", "technical info":
		return DescriptionTechnicalInfo
	case "seriesinformation", "series information":
		return DescriptionSeriesInfo
	default:
		return DescriptionOther
	}
}

// Description is one description of a resource.
type Description struct {
	Value string          `json:"value"`
	Type  DescriptionType `json:"type,omitempty"`
}

// DateType classifies a ResourceDate.
type DateType string

const (
	DateAccepted    DateType = "Accepted"
	DateAvailable   DateType = "Available"
	DateCollected   DateType = "Collected"
	DateCopyrighted DateType = "Copyrighted"
	DateCreated     DateType = "Created"
	DateIssued      DateType = "Issued"
	DateSubmitted   DateType = "Submitted"
	DateUpdated     DateType = "Updated"
	DateValid       DateType = "Valid"
	DateWithdrawn   DateType = "Withdrawn"
	DateOther       DateType = "Other"
)

// ParseDateType maps a free-text date-type label to the closed vocabulary.
func ParseDateType(label string) DateType {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "accepted":
		return DateAccepted
	case "available":
		return DateAvailable
	case "collected":
		return DateCollected
	case "copyrighted":
		return DateCopyrighted
	case "created":
		return DateCreated
	case "issued":
		return DateIssued
	case "submitted":
		return DateSubmitted
	case "updated":
		return DateUpdated
	case "valid":
		return DateValid
	case "withdrawn":
		return DateWithdrawn
	default:
		return DateOther
	}
}

// ResourceDate is a (type, start, end) triple. Start and End hold date
// strings as the ingesting format resolved them; whatever is stored
// round-trips through export unchanged. An empty End marks an open-ended
// range, an empty Start an unknown one.
type ResourceDate struct {
	Type  DateType `json:"type"`
	Start string   `json:"start,omitempty"`
	End   string   `json:"end,omitempty"`
}

// Size is one measured dimension of a physical sample. Value is a decimal
// rendered with four fractional digits; Unit and Type come from the source
// column header ("Length (cm)" yields Type "Length", Unit "cm").
type Size struct {
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
	Type  string `json:"type,omitempty"`
}

// AlternateIdentifier is a secondary identifier of a resource. For sample
// resources these are derived from Other-typed titles at export time.
type AlternateIdentifier struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// FundingReference names a funder and optionally an award.
type FundingReference struct {
	Funder               string `json:"funder"`
	FunderIdentifier     string `json:"funderIdentifier,omitempty"`
	FunderIdentifierType string `json:"funderIdentifierType,omitempty"`
	AwardNumber          string `json:"awardNumber,omitempty"`
	AwardTitle           string `json:"awardTitle,omitempty"`
}

// Resource is the bibliographic/sample record, the root of the graph.
type Resource struct {
	// ID is a stable internal identifier assigned at construction. It is
	// the export filename fallback when no public identifier exists.
	ID string `json:"id"`

	Identifier     string         `json:"identifier,omitempty"`
	IdentifierType IdentifierType `json:"identifierType,omitempty"`

	PublicationYear int    `json:"publicationYear,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	Language        string `json:"language,omitempty"`
	Version         string `json:"version,omitempty"`

	// IsSample marks physical-sample (IGSN) resources. SampleType and
	// Material are the two halves of the composed resourceType label.
	IsSample   bool   `json:"isSample,omitempty"`
	SampleType string `json:"sampleType,omitempty"`
	Material   string `json:"material,omitempty"`

	// ResourceTypeText is the free-text resourceType label for resources
	// that do not compose one from SampleType/Material.
	ResourceTypeText    string              `json:"resourceType,omitempty"`
	ResourceTypeGeneral ResourceTypeGeneral `json:"resourceTypeGeneral,omitempty"`

	Titles               []Title               `json:"titles,omitempty"`
	Descriptions         []Description         `json:"descriptions,omitempty"`
	Dates                []ResourceDate        `json:"dates,omitempty"`
	Authors              []Author              `json:"authors,omitempty"`
	Contributors         []Contributor         `json:"contributors,omitempty"`
	GeoLocations         []GeoLocation         `json:"geoLocations,omitempty"`
	AlternateIdentifiers []AlternateIdentifier `json:"alternateIdentifiers,omitempty"`
	Sizes                []Size                `json:"sizes,omitempty"`
	FundingReferences    []FundingReference    `json:"fundingReferences,omitempty"`

	GeologicalAges  []string `json:"geologicalAges,omitempty"`
	GeologicalUnits []string `json:"geologicalUnits,omitempty"`
	Classifications []string `json:"classifications,omitempty"`

	// Extra carries source-system fields that have no first-class home
	// (legacy row ids, upload filenames). Keys are machine names.
	Extra *structpb.Struct `json:"extra,omitempty"`

	// SourceRow is the 1-based input row the resource first appeared on.
	// Zero when the resource did not come from a row-oriented source.
	SourceRow int `json:"-"`
}

// NewResource creates an empty Resource with a fresh internal ID.
func NewResource() *Resource {
	return &Resource{ID: uuid.NewString()}
}

// MainTitle returns the first main-typed title, falling back to the first
// title of any type.
func (r *Resource) MainTitle() string {
	for _, t := range r.Titles {
		if t.Type == TitleMain {
			return t.Value
		}
	}
	if len(r.Titles) > 0 {
		return r.Titles[0].Value
	}
	return ""
}

// TitlesOfType returns all titles with the given type.
func (r *Resource) TitlesOfType(tt TitleType) []Title {
	var out []Title
	for _, t := range r.Titles {
		if t.Type == tt {
			out = append(out, t)
		}
	}
	return out
}

// DatesOfType returns all dates with the given type.
func (r *Resource) DatesOfType(dt DateType) []ResourceDate {
	var out []ResourceDate
	for _, d := range r.Dates {
		if d.Type == dt {
			out = append(out, d)
		}
	}
	return out
}

// ContactAuthor returns the first author flagged as point of contact.
func (r *Resource) ContactAuthor() *Author {
	for i := range r.Authors {
		if r.Authors[i].IsContact {
			return &r.Authors[i]
		}
	}
	return nil
}

// FallbackResourceType is the generic resourceType label used when a
// resource carries neither sample-type/material fields nor a free label.
const FallbackResourceType = "Physical Object"

// ComposedResourceType builds the free-text resourceType label. Sample-type
// and material fields compose "SampleType: Material" when both are present,
// or stand alone when only one is; otherwise an explicit free label wins,
// and the generic fallback covers the rest.
func (r *Resource) ComposedResourceType() string {
	st := strings.TrimSpace(r.SampleType)
	mat := strings.TrimSpace(r.Material)
	switch {
	case st != "" && mat != "":
		return st + ": " + mat
	case st != "":
		return st
	case mat != "":
		return mat
	case strings.TrimSpace(r.ResourceTypeText) != "":
		return strings.TrimSpace(r.ResourceTypeText)
	default:
		return FallbackResourceType
	}
}
