// Package format defines the interface for metadata format plugins.
package format

import (
	"io"

	"github.com/McNamara84/ernie-sub002/graph"
	"github.com/McNamara84/ernie-sub002/mapping"
)

// Format defines the interface that all format plugins must implement.
type Format interface {
	// Name returns the format identifier (e.g., "igsncsv", "datacite")
	Name() string

	// Description returns a human-readable format description
	Description() string

	// Extensions returns file extensions associated with this format
	Extensions() []string

	// CanParse returns true if this format can parse the given input
	CanParse(peek []byte) bool
}

// Parser is a format that can parse input into graph resources.
type Parser interface {
	Format

	// Parse reads input and returns graph resources.
	// Options is format-specific configuration.
	Parse(r io.Reader, opts *ParseOptions) ([]*graph.Resource, error)
}

// Serializer is a format that can write graph resources to output.
type Serializer interface {
	Format

	// Serialize writes graph resources to the output.
	// Options is format-specific configuration.
	Serialize(w io.Writer, resources []*graph.Resource, opts *SerializeOptions) error
}

// ParseOptions contains options for parsing.
type ParseOptions struct {
	// Profile is the column mapping profile to use
	Profile *mapping.Profile

	// StripHTML removes markup from text fields
	StripHTML bool

	// Strict fails on unknown columns or elements
	Strict bool

	// SourceName is an identifier for the source (for error messages)
	SourceName string

	// FallbackOffset is the UTC offset appended to datetime values that
	// arrive without one (e.g. "+00:00"). Empty leaves them untouched.
	FallbackOffset string
}

// SerializeOptions contains options for serialization.
type SerializeOptions struct {
	// Pretty enables pretty-printing (for JSON/XML formats)
	Pretty bool

	// Validate checks the output against the format's schema before
	// writing. Validation failures abort the write entirely.
	Validate bool

	// FallbackOffset is the UTC offset applied to offset-less datetime
	// values on export. Empty leaves them untouched.
	FallbackOffset string

	// MultiValueSeparator is the delimiter for multi-value fields
	MultiValueSeparator string

	// IncludeHeader includes a header row (for tabular formats)
	IncludeHeader bool

	// Profile is the column mapping profile for tabular output
	Profile *mapping.Profile

	// Columns overrides the written column set (for tabular formats).
	// Empty means every column the profile maps.
	Columns []string
}

// NewParseOptions creates ParseOptions with defaults.
func NewParseOptions() *ParseOptions {
	return &ParseOptions{
		StripHTML: true,
	}
}

// NewSerializeOptions creates SerializeOptions with defaults.
func NewSerializeOptions() *SerializeOptions {
	return &SerializeOptions{
		Validate:            true,
		MultiValueSeparator: ";",
		IncludeHeader:       true,
	}
}
