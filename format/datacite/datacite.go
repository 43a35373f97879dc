// Package datacite provides a format plugin for DataCite metadata, in
// both the kernel-4 XML form and the REST API JSON envelope. Export
// documents are validated against an embedded copy of the DataCite JSON
// Schema before anything is written.
package datacite

import (
	"bytes"

	"github.com/McNamara84/ernie-sub002/format"
)

// Version documents the DataCite specification this implementation targets.
const Version = "4.5"

// Format implements the DataCite XML format.
type Format struct{}

// Ensure Format implements the interfaces
var (
	_ format.Format     = (*Format)(nil)
	_ format.Parser     = (*Format)(nil)
	_ format.Serializer = (*Format)(nil)
)

// Name returns the format identifier.
func (f *Format) Name() string {
	return "datacite"
}

// Description returns a human-readable format description.
func (f *Format) Description() string {
	return "DataCite Metadata Schema (v" + Version + ") XML"
}

// Extensions returns file extensions associated with this format.
func (f *Format) Extensions() []string {
	return []string{"xml"}
}

// CanParse returns true if the input looks like DataCite XML.
func (f *Format) CanParse(peek []byte) bool {
	peek = bytes.TrimSpace(peek)
	if len(peek) == 0 {
		return false
	}

	if peek[0] != '<' {
		return false
	}

	patterns := [][]byte{
		[]byte("datacite.org/schema"),
		[]byte("<resource"),
		[]byte("<identifier identifierType"),
	}

	for _, pattern := range patterns {
		if bytes.Contains(peek, pattern) {
			return true
		}
	}

	return false
}

// JSONFormat implements the DataCite REST API JSON format.
type JSONFormat struct{}

// Ensure JSONFormat implements the interfaces
var (
	_ format.Format     = (*JSONFormat)(nil)
	_ format.Parser     = (*JSONFormat)(nil)
	_ format.Serializer = (*JSONFormat)(nil)
)

// Name returns the format identifier.
func (f *JSONFormat) Name() string {
	return "datacite-json"
}

// Description returns a human-readable format description.
func (f *JSONFormat) Description() string {
	return "DataCite Metadata Schema (v" + Version + ") JSON envelope"
}

// Extensions returns file extensions associated with this format. The
// json extension belongs to the graph dump format, so DataCite JSON is
// selected by name or by content sniffing.
func (f *JSONFormat) Extensions() []string {
	return nil
}

// CanParse returns true if the input looks like a DataCite JSON document.
func (f *JSONFormat) CanParse(peek []byte) bool {
	peek = bytes.TrimSpace(peek)
	if len(peek) == 0 {
		return false
	}

	if peek[0] != '{' {
		return false
	}

	if bytes.Contains(peek, []byte(`"data"`)) && bytes.Contains(peek, []byte(`"dois"`)) {
		return true
	}

	return bytes.Contains(peek, []byte(`"attributes"`)) && bytes.Contains(peek, []byte(`"creators"`))
}

func init() {
	format.Register(&Format{})
	format.Register(&JSONFormat{})
}
