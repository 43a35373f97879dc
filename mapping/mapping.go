// Package mapping provides configuration types for column mappings
// between delimited batch files and the resource graph.
package mapping

import (
	"fmt"
	"sort"
	"strings"
)

// FieldKind selects the graph target a column feeds.
type FieldKind string

const (
	FieldIdentifier      FieldKind = "identifier"
	FieldTitle           FieldKind = "title"
	FieldDescription     FieldKind = "description"
	FieldSampleType      FieldKind = "sample_type"
	FieldMaterial        FieldKind = "material"
	FieldResourceType    FieldKind = "resource_type"
	FieldPublisher       FieldKind = "publisher"
	FieldPublicationYear FieldKind = "publication_year"
	FieldLanguage        FieldKind = "language"
	FieldVersion         FieldKind = "version"

	FieldCollectorName       FieldKind = "collector_name"
	FieldCollectorGivenName  FieldKind = "collector_given_name"
	FieldCollectorFamilyName FieldKind = "collector_family_name"
	FieldCollectorORCID      FieldKind = "collector_orcid"
	FieldCollectorRole       FieldKind = "collector_role"
	FieldContactEmail        FieldKind = "contact_email"
	FieldContactWebsite      FieldKind = "contact_website"
	FieldAffiliation         FieldKind = "affiliation"
	FieldContributorName     FieldKind = "contributor_name"
	FieldContributorRole     FieldKind = "contributor_role"

	FieldDate FieldKind = "date"

	FieldLatitude      FieldKind = "latitude"
	FieldLongitude     FieldKind = "longitude"
	FieldWestLongitude FieldKind = "west_longitude"
	FieldEastLongitude FieldKind = "east_longitude"
	FieldSouthLatitude FieldKind = "south_latitude"
	FieldNorthLatitude FieldKind = "north_latitude"
	FieldPolygon       FieldKind = "polygon"
	FieldInteriorPoint FieldKind = "interior_point"
	FieldPlace         FieldKind = "place"

	FieldSize FieldKind = "size"

	FieldGeologicalAge  FieldKind = "geological_age"
	FieldGeologicalUnit FieldKind = "geological_unit"
	FieldClassification FieldKind = "classification"

	FieldFunder           FieldKind = "funder"
	FieldFunderIdentifier FieldKind = "funder_identifier"
	FieldAwardNumber      FieldKind = "award_number"
	FieldAwardTitle       FieldKind = "award_title"

	// FieldExtra keeps the raw value on the resource without interpreting it.
	FieldExtra FieldKind = "extra"
)

// RangePart marks which end of a date range a column carries.
type RangePart string

const (
	PartStart RangePart = "start"
	PartEnd   RangePart = "end"
)

// ColumnMapping describes how one source column feeds the resource graph.
type ColumnMapping struct {
	// Field is the graph target the column value lands on.
	Field FieldKind `yaml:"field" json:"field"`

	// TitleType refines title columns ("Other", "Subtitle", ...). Empty
	// means the main title.
	TitleType string `yaml:"title_type,omitempty" json:"title_type,omitempty"`

	// DescriptionType refines description columns ("Abstract", "Methods", ...).
	DescriptionType string `yaml:"description_type,omitempty" json:"description_type,omitempty"`

	// DateType names the semantic date a date column belongs to
	// ("Collected", "Issued", ...).
	DateType string `yaml:"date_type,omitempty" json:"date_type,omitempty"`

	// Part assigns a date column to the start or end of its range.
	Part RangePart `yaml:"part,omitempty" json:"part,omitempty"`

	// SizeType overrides the measurement label derived from the header.
	SizeType string `yaml:"size_type,omitempty" json:"size_type,omitempty"`

	// Unit overrides the unit derived from the header.
	Unit string `yaml:"unit,omitempty" json:"unit,omitempty"`

	// MultiValue splits the cell on the profile's separator.
	MultiValue bool `yaml:"multi_value,omitempty" json:"multi_value,omitempty"`

	// Required rejects rows where the column is empty.
	Required bool `yaml:"required,omitempty" json:"required,omitempty"`

	// ExtraKey is the key to store the value under for extra columns.
	// Defaults to the column header.
	ExtraKey string `yaml:"extra_key,omitempty" json:"extra_key,omitempty"`
}

// Profile is a complete column mapping for one batch layout.
type Profile struct {
	// Name is the profile identifier.
	Name string `yaml:"name" json:"name"`

	// Format names the file format the profile applies to.
	Format string `yaml:"format,omitempty" json:"format,omitempty"`

	// Description provides human-readable documentation.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Delimiter is the cell delimiter, a single character. Defaults to "|".
	Delimiter string `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`

	// MultiValueSeparator splits multi-value cells. Defaults to ";".
	MultiValueSeparator string `yaml:"multi_value_separator,omitempty" json:"multi_value_separator,omitempty"`

	// Columns maps source column headers to their targets. Header lookup
	// is case sensitive: "IGSN" and "igsn" are different columns.
	Columns map[string]ColumnMapping `yaml:"columns" json:"columns"`
}

// Column retrieves the mapping for a header. The lookup is exact; callers
// must not case-fold.
func (p *Profile) Column(header string) (ColumnMapping, bool) {
	m, ok := p.Columns[header]
	return m, ok
}

// Headers returns every mapped column header in a stable writing order:
// identifier columns first, then the rest alphabetically.
func (p *Profile) Headers() []string {
	headers := make([]string, 0, len(p.Columns))
	for header := range p.Columns {
		headers = append(headers, header)
	}
	sort.Slice(headers, func(i, j int) bool {
		iID := p.Columns[headers[i]].Field == FieldIdentifier
		jID := p.Columns[headers[j]].Field == FieldIdentifier
		if iID != jID {
			return iID
		}
		return headers[i] < headers[j]
	})
	return headers
}

// DelimiterRune returns the cell delimiter with the pipe default.
func (p *Profile) DelimiterRune() rune {
	if p.Delimiter == "" {
		return '|'
	}
	return []rune(p.Delimiter)[0]
}

// Separator returns the multi-value separator with the semicolon default.
func (p *Profile) Separator() string {
	if p.MultiValueSeparator == "" {
		return ";"
	}
	return p.MultiValueSeparator
}

// RequiredColumns lists the headers marked required, in no particular order.
func (p *Profile) RequiredColumns() []string {
	var required []string
	for header, m := range p.Columns {
		if m.Required {
			required = append(required, header)
		}
	}
	return required
}

// Validate checks the profile for internal consistency.
func (p *Profile) Validate() error {
	if len(p.Columns) == 0 {
		return fmt.Errorf("profile %q maps no columns", p.Name)
	}
	if p.Delimiter != "" && len([]rune(p.Delimiter)) != 1 {
		return fmt.Errorf("profile %q: delimiter %q is not a single character", p.Name, p.Delimiter)
	}
	for header, m := range p.Columns {
		if m.Field == "" {
			return fmt.Errorf("profile %q: column %q has no field", p.Name, header)
		}
		if m.Field == FieldDate && m.Part != "" && m.Part != PartStart && m.Part != PartEnd {
			return fmt.Errorf("profile %q: column %q: part %q is not start or end", p.Name, header, m.Part)
		}
	}
	return nil
}

// SizeHeaderParts splits a measurement header of the form "Label (unit)"
// into its label and unit. Headers without a parenthesized unit return the
// whole header as the label and an empty unit.
func SizeHeaderParts(header string) (label, unit string) {
	header = strings.TrimSpace(header)
	open := strings.LastIndex(header, "(")
	if open < 0 || !strings.HasSuffix(header, ")") {
		return header, ""
	}
	label = strings.TrimSpace(header[:open])
	unit = strings.TrimSpace(header[open+1 : len(header)-1])
	if label == "" {
		return header, ""
	}
	return label, unit
}

// SizeParts resolves the measurement label and unit for a size column,
// preferring explicit mapping overrides over the header-derived parts.
func (m ColumnMapping) SizeParts(header string) (label, unit string) {
	label, unit = SizeHeaderParts(header)
	if m.SizeType != "" {
		label = m.SizeType
	}
	if m.Unit != "" {
		unit = m.Unit
	}
	return label, unit
}
