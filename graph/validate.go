package graph

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a validation failure with context.
type ValidationError struct {
	Field   string // Field path (e.g., "authors[0].agent.orcid")
	Code    string // Error code (e.g., "required", "invalid_format")
	Message string // Human-readable message
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult contains all validation errors for a resource.
type ValidationResult struct {
	Errors []ValidationError
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Error returns a combined error message, or nil if valid.
func (r *ValidationResult) Error() error {
	if r.IsValid() {
		return nil
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

func (r *ValidationResult) add(field, code, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Code: code, Message: message})
}

// ValidationOptions configures validation behavior.
type ValidationOptions struct {
	// RequireTitle requires a non-empty main title.
	RequireTitle bool
	// RequireIdentifier requires a resource identifier.
	RequireIdentifier bool
	// ValidateIdentifierFormats checks DOI/IGSN/ORCID/ROR shapes.
	ValidateIdentifierFormats bool
	// ValidateGeoLocations checks variant exclusivity and bounds.
	ValidateGeoLocations bool
}

// DefaultValidationOptions returns the options used by batch ingestion.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		RequireTitle:              true,
		RequireIdentifier:         false,
		ValidateIdentifierFormats: true,
		ValidateGeoLocations:      true,
	}
}

// ValidateResource validates a resource graph node according to the options.
func ValidateResource(res *Resource, opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{}

	if opts.RequireTitle && strings.TrimSpace(res.MainTitle()) == "" {
		result.add("title", "required", "title is required")
	}

	if opts.RequireIdentifier && strings.TrimSpace(res.Identifier) == "" {
		result.add("identifier", "required", "identifier is required")
	}

	if res.PublicationYear != 0 {
		currentYear := time.Now().Year()
		if res.PublicationYear < 1000 || res.PublicationYear > currentYear+10 {
			result.add("publicationYear", "out_of_range",
				fmt.Sprintf("year %d is outside reasonable range (1000-%d)", res.PublicationYear, currentYear+10))
		}
	}

	if opts.ValidateIdentifierFormats {
		validateResourceIdentifier(res, result)
		for i, a := range res.Authors {
			validateAgent(a.Agent, fmt.Sprintf("authors[%d]", i), result)
		}
		for i, c := range res.Contributors {
			validateAgent(c.Agent, fmt.Sprintf("contributors[%d]", i), result)
		}
	}

	for i, a := range res.Authors {
		if strings.TrimSpace(a.Agent.DisplayName()) == "" {
			result.add(fmt.Sprintf("authors[%d]", i), "required", "author must have a name")
		}
	}

	for i, d := range res.Dates {
		if d.Start == "" && d.End == "" {
			result.add(fmt.Sprintf("dates[%d]", i), "required", "date must have a start or end")
		}
	}

	if opts.ValidateGeoLocations {
		for i, g := range res.GeoLocations {
			validateGeoLocation(g, fmt.Sprintf("geoLocations[%d]", i), result)
		}
	}

	return result
}

func validateResourceIdentifier(res *Resource, result *ValidationResult) {
	value := strings.TrimSpace(res.Identifier)
	if value == "" {
		return
	}
	switch res.IdentifierType {
	case IdentifierDOI:
		if !doiRegex.MatchString(NormalizeIdentifier(value, IdentifierDOI)) {
			result.add("identifier", "invalid_format",
				fmt.Sprintf("invalid DOI format: %s (expected 10.XXXX/...)", value))
		}
	case IdentifierIGSN:
		normalized := NormalizeIdentifier(value, IdentifierIGSN)
		if !doiRegex.MatchString(normalized) && !igsnRegex.MatchString(normalized) {
			result.add("identifier", "invalid_format",
				fmt.Sprintf("invalid IGSN format: %s", value))
		}
	}
}

func validateAgent(a Agent, field string, result *ValidationResult) {
	if a.ORCID != "" {
		normalized := NormalizeIdentifier(a.ORCID, IdentifierORCID)
		if !orcidRegex.MatchString(normalized) {
			result.add(field+".orcid", "invalid_format",
				fmt.Sprintf("invalid ORCID format: %s (expected XXXX-XXXX-XXXX-XXXX)", a.ORCID))
		}
	}
	if a.ROR != "" {
		normalized := NormalizeIdentifier(a.ROR, IdentifierROR)
		if !rorRegex.MatchString(normalized) {
			result.add(field+".ror", "invalid_format",
				fmt.Sprintf("invalid ROR format: %s", a.ROR))
		}
	}
	for i, aff := range a.Affiliations {
		if aff.ROR == "" {
			continue
		}
		normalized := NormalizeIdentifier(aff.ROR, IdentifierROR)
		if !rorRegex.MatchString(normalized) {
			result.add(fmt.Sprintf("%s.affiliations[%d].ror", field, i), "invalid_format",
				fmt.Sprintf("invalid ROR format: %s", aff.ROR))
		}
	}
}

func validateGeoLocation(g GeoLocation, field string, result *ValidationResult) {
	if g.variantCount() > 1 {
		result.add(field, "conflict",
			"geolocation must not mix point, box and polygon variants")
	}
	if g.Point != nil {
		validatePoint(*g.Point, field+".point", result)
	}
	if g.Box != nil {
		b := *g.Box
		if !validLatitude(b.SouthLatitude) || !validLatitude(b.NorthLatitude) {
			result.add(field+".box", "out_of_range", "box latitude out of range (-90..90)")
		}
		if !validLongitude(b.WestLongitude) || !validLongitude(b.EastLongitude) {
			result.add(field+".box", "out_of_range", "box longitude out of range (-180..180)")
		}
	}
	if g.Polygon != nil {
		if len(g.Polygon.Points) < 3 {
			result.add(field+".polygon", "out_of_range",
				fmt.Sprintf("polygon needs at least 3 vertices, got %d", len(g.Polygon.Points)))
		}
		for i, p := range g.Polygon.Points {
			validatePoint(p, fmt.Sprintf("%s.polygon.points[%d]", field, i), result)
		}
		if g.Polygon.InPoint != nil {
			validatePoint(*g.Polygon.InPoint, field+".polygon.inPoint", result)
		}
	}
}

func validatePoint(p GeoPoint, field string, result *ValidationResult) {
	if !validLatitude(p.Latitude) {
		result.add(field, "out_of_range",
			fmt.Sprintf("latitude %v out of range (-90..90)", p.Latitude))
	}
	if !validLongitude(p.Longitude) {
		result.add(field, "out_of_range",
			fmt.Sprintf("longitude %v out of range (-180..180)", p.Longitude))
	}
}
