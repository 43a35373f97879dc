// Package igsncsv provides a format plugin for pipe-delimited sample
// batch files.
//
// A batch file has a case-sensitive header row whose column names are keys
// into a mapping profile. Rows sharing an IGSN describe one sample: the
// first row creates the resource, later rows add further people, dates and
// locations to it.
package igsncsv

import (
	"bytes"

	"github.com/McNamara84/ernie-sub002/format"
)

// Format implements the IGSN batch CSV format.
type Format struct{}

// Ensure Format implements the interfaces
var (
	_ format.Format     = (*Format)(nil)
	_ format.Parser     = (*Format)(nil)
	_ format.Serializer = (*Format)(nil)
)

// Name returns the format identifier.
func (f *Format) Name() string {
	return "igsncsv"
}

// Description returns a human-readable format description.
func (f *Format) Description() string {
	return "Pipe-delimited IGSN sample batch metadata"
}

// Extensions returns file extensions associated with this format.
func (f *Format) Extensions() []string {
	return []string{"csv"}
}

// CanParse returns true if the input looks like a pipe-delimited batch
// with an IGSN header column.
func (f *Format) CanParse(peek []byte) bool {
	peek = bytes.TrimSpace(peek)
	if len(peek) == 0 {
		return false
	}
	if peek[0] == '{' || peek[0] == '[' || peek[0] == '<' {
		return false
	}

	header := peek
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		header = peek[:i]
	}
	if !bytes.Contains(header, []byte("|")) {
		return false
	}
	for _, cell := range bytes.Split(header, []byte("|")) {
		if string(bytes.TrimSpace(cell)) == "IGSN" {
			return true
		}
	}
	return false
}

func init() {
	format.Register(&Format{})
}
