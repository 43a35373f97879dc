package datacite

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/graph"
)

func TestValidateDocumentConforming(t *testing.T) {
	doc := []byte(`{
  "data": {
    "type": "dois",
    "attributes": {
      "creators": [{"name": "Förste, Christoph"}],
      "titles": [{"title": "Lake Towuti Drill Core Section 1"}],
      "publisher": "GFZ Data Services",
      "publicationYear": 2021,
      "types": {"resourceTypeGeneral": "PhysicalObject", "resourceType": "Core: Sedite"}
    }
  }
}`)

	schemaErrors, err := ValidateDocument(doc)
	if err != nil {
		t.Fatalf("ValidateDocument failed: %v", err)
	}
	if len(schemaErrors) != 0 {
		t.Errorf("Expected no violations, got %v", schemaErrors)
	}
}

func TestValidateDocumentMissingRequired(t *testing.T) {
	doc := []byte(`{
  "data": {
    "type": "dois",
    "attributes": {
      "titles": [{"title": "No publisher or creators"}],
      "publicationYear": 2021,
      "types": {"resourceTypeGeneral": "Dataset"}
    }
  }
}`)

	schemaErrors, err := ValidateDocument(doc)
	if err != nil {
		t.Fatalf("ValidateDocument failed: %v", err)
	}
	if len(schemaErrors) == 0 {
		t.Fatal("Expected violations for missing required properties")
	}

	var sawRequired bool
	for _, se := range schemaErrors {
		if se.Message == "" {
			t.Errorf("Violation without message: %+v", se)
		}
		if se.Keyword == "required" {
			sawRequired = true
		}
	}
	if !sawRequired {
		t.Errorf("No required-keyword violation in %v", schemaErrors)
	}
}

func TestValidateDocumentRejectsUnknownVocabulary(t *testing.T) {
	doc := []byte(`{
  "data": {
    "type": "dois",
    "attributes": {
      "creators": [{"name": "Doe, Jane"}],
      "titles": [{"title": "Bad general type"}],
      "publisher": "GFZ Data Services",
      "publicationYear": 2021,
      "types": {"resourceTypeGeneral": "Rock"}
    }
  }
}`)

	schemaErrors, err := ValidateDocument(doc)
	if err != nil {
		t.Fatalf("ValidateDocument failed: %v", err)
	}
	if len(schemaErrors) == 0 {
		t.Fatal("Expected violation for resourceTypeGeneral outside the vocabulary")
	}
}

func TestSerializeValidationFailureWritesNothing(t *testing.T) {
	res := graph.NewResource()
	res.Titles = []graph.Title{{Value: "Incomplete"}}

	for name, s := range map[string]format.Serializer{
		"xml":  &Format{},
		"json": &JSONFormat{},
	} {
		var buf bytes.Buffer
		err := s.Serialize(&buf, []*graph.Resource{res}, format.NewSerializeOptions())
		if err == nil {
			t.Fatalf("%s: expected validation failure", name)
		}

		var ve *SchemaValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: error is %T, want *SchemaValidationError", name, err)
		}
		if ve.SchemaVersion != SchemaVersion {
			t.Errorf("%s: SchemaVersion: got %q", name, ve.SchemaVersion)
		}
		if len(ve.Errors) == 0 {
			t.Errorf("%s: no schema errors attached", name)
		}
		for _, se := range ve.Errors {
			if se.Path == "" && se.Keyword == "" {
				t.Errorf("%s: violation without location: %+v", name, se)
			}
		}

		// The document must not be written, not even partially.
		if buf.Len() != 0 {
			t.Errorf("%s: wrote %d bytes despite validation failure", name, buf.Len())
		}
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		ext        string
		want       string
	}{
		{"igsn", "ICDP5054EEW1001", "xml", "ICDP5054EEW1001.xml"},
		{"doi slash folded", "10.5880/GFZ.b103", "json", "10.5880-GFZ.b103.json"},
		{"hostile runes", "ab c:d*e", "xml", "ab-c-d-e.xml"},
		{"dotted ext", "ICDP5054EEW1001", ".xml", "ICDP5054EEW1001.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := graph.NewResource()
			res.Identifier = tt.identifier
			if got := ExportFilename(res, tt.ext); got != tt.want {
				t.Errorf("ExportFilename: got %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("fallback to internal id", func(t *testing.T) {
		res := graph.NewResource()
		got := ExportFilename(res, "json")
		if !strings.HasPrefix(got, "resource-") || !strings.HasSuffix(got, ".json") {
			t.Errorf("ExportFilename: got %q", got)
		}
		if got == "resource-.json" {
			t.Error("Internal id missing from fallback filename")
		}
	})
}
