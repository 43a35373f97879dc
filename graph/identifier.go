package graph

import (
	"regexp"
	"strings"
)

// IdentifierType names the identifier schemes the engine understands.
type IdentifierType string

const (
	IdentifierDOI         IdentifierType = "DOI"
	IdentifierIGSN        IdentifierType = "IGSN"
	IdentifierHandle      IdentifierType = "Handle"
	IdentifierORCID       IdentifierType = "ORCID"
	IdentifierROR         IdentifierType = "ROR"
	IdentifierURL         IdentifierType = "URL"
	IdentifierUnspecified IdentifierType = ""
)

var (
	doiRegex    = regexp.MustCompile(`^10\.\d{4,}/[^\s]+$`)
	handleRegex = regexp.MustCompile(`^\d+\.\d+/[^\s]+$`)
	orcidRegex  = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)
	rorRegex    = regexp.MustCompile(`^0[a-z0-9]{6}\d{2}$`)
	// Legacy IGSN bodies are namespace-prefixed upper-case codes.
	igsnRegex = regexp.MustCompile(`^[A-Z]{2,5}[A-Z0-9.\-]{4,}$`)
)

// DetectIdentifierType determines the identifier scheme from the value.
func DetectIdentifierType(value string) IdentifierType {
	value = strings.TrimSpace(value)
	if value == "" {
		return IdentifierUnspecified
	}

	if strings.HasPrefix(value, "10.") && doiRegex.MatchString(value) {
		return IdentifierDOI
	}
	if strings.HasPrefix(value, "https://doi.org/") || strings.HasPrefix(value, "http://doi.org/") {
		return IdentifierDOI
	}
	if strings.HasPrefix(strings.ToLower(value), "doi:") {
		return IdentifierDOI
	}

	if strings.HasPrefix(strings.ToLower(value), "igsn:") {
		return IdentifierIGSN
	}
	if strings.Contains(value, "igsn.org/") {
		return IdentifierIGSN
	}

	if handleRegex.MatchString(value) {
		return IdentifierHandle
	}
	if strings.HasPrefix(value, "https://hdl.handle.net/") || strings.HasPrefix(value, "http://hdl.handle.net/") {
		return IdentifierHandle
	}

	if orcidRegex.MatchString(value) {
		return IdentifierORCID
	}
	if strings.HasPrefix(value, "https://orcid.org/") {
		return IdentifierORCID
	}

	if rorRegex.MatchString(value) {
		return IdentifierROR
	}
	if strings.HasPrefix(value, "https://ror.org/") {
		return IdentifierROR
	}

	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return IdentifierURL
	}

	if igsnRegex.MatchString(value) && len(value) >= 9 {
		return IdentifierIGSN
	}

	return IdentifierUnspecified
}

// NormalizeIdentifier strips resolver prefixes and canonicalizes casing
// for the given scheme.
func NormalizeIdentifier(value string, idType IdentifierType) string {
	value = strings.TrimSpace(value)

	switch idType {
	case IdentifierDOI:
		value = strings.TrimPrefix(value, "https://doi.org/")
		value = strings.TrimPrefix(value, "http://doi.org/")
		value = strings.TrimPrefix(value, "doi:")
		value = strings.TrimPrefix(value, "DOI:")
		return value

	case IdentifierIGSN:
		value = strings.TrimPrefix(value, "https://igsn.org/")
		value = strings.TrimPrefix(value, "http://igsn.org/")
		value = strings.TrimPrefix(value, "igsn:")
		value = strings.TrimPrefix(value, "IGSN:")
		// IGSN DOIs keep their case-sensitive prefix; bare legacy codes
		// are upper-case by definition.
		if !strings.HasPrefix(value, "10.") {
			value = strings.ToUpper(value)
		}
		return value

	case IdentifierHandle:
		value = strings.TrimPrefix(value, "https://hdl.handle.net/")
		value = strings.TrimPrefix(value, "http://hdl.handle.net/")
		value = strings.TrimPrefix(value, "hdl:")
		return value

	case IdentifierORCID:
		value = strings.TrimPrefix(value, "https://orcid.org/")
		value = strings.TrimPrefix(value, "http://orcid.org/")
		return value

	case IdentifierROR:
		value = strings.TrimPrefix(value, "https://ror.org/")
		value = strings.TrimPrefix(value, "http://ror.org/")
		return value

	default:
		return value
	}
}

// IdentifierURI renders an identifier as a resolvable URI where the scheme
// has a canonical resolver.
func IdentifierURI(value string, idType IdentifierType) string {
	switch idType {
	case IdentifierDOI:
		return "https://doi.org/" + value
	case IdentifierIGSN:
		if strings.HasPrefix(value, "10.") {
			return "https://doi.org/" + value
		}
		return "https://igsn.org/" + value
	case IdentifierHandle:
		return "https://hdl.handle.net/" + value
	case IdentifierORCID:
		return "https://orcid.org/" + value
	case IdentifierROR:
		return "https://ror.org/" + value
	default:
		return value
	}
}
