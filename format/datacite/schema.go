package datacite

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema"

	"github.com/McNamara84/ernie-sub002/dates"
	"github.com/McNamara84/ernie-sub002/graph"
)

//go:embed schema/datacite-v4.5.json
var schemaSource []byte

// SchemaVersion identifies the embedded schema in validation reports.
const SchemaVersion = "datacite-v4.5"

const schemaURL = "datacite-v4.5.json"

// SchemaError is one schema violation found while validating an export
// document.
type SchemaError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Keyword string `json:"keyword"`
	Context string `json:"context,omitempty"`
}

// SchemaValidationError reports that a document failed schema validation.
// No document is produced when this error is returned.
type SchemaValidationError struct {
	SchemaVersion string
	Errors        []SchemaError
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("document does not conform to %s: %d schema violations", e.SchemaVersion, len(e.Errors))
}

var (
	schemaOnce     sync.Once
	compiled       *jsonschema.Schema
	compileFailure error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
			compileFailure = fmt.Errorf("loading embedded schema: %w", err)
			return
		}
		compiled, compileFailure = compiler.Compile(schemaURL)
	})
	return compiled, compileFailure
}

// ValidateDocument checks a serialized DataCite JSON document against the
// embedded schema. It returns the flattened violations, or nil when the
// document conforms.
func ValidateDocument(doc []byte) ([]SchemaError, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	err = schema.Validate(bytes.NewReader(doc))
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		return flattenCauses(ve, nil), nil
	}
	return nil, err
}

// validateResource builds the JSON document for a resource and validates
// it. The same check guards both the JSON and the XML serializers, since
// both emit the same attribute set.
func validateResource(res *graph.Resource, resolver *dates.Resolver) error {
	doc := jsonDocument{Data: jsonData{Type: "dois", Attributes: buildAttributes(res, resolver)}}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document for validation: %w", err)
	}
	schemaErrors, err := ValidateDocument(payload)
	if err != nil {
		return err
	}
	if len(schemaErrors) > 0 {
		return &SchemaValidationError{SchemaVersion: SchemaVersion, Errors: schemaErrors}
	}
	return nil
}

// flattenCauses walks the validation error tree and collects the leaf
// violations, which carry the most specific messages.
func flattenCauses(ve *jsonschema.ValidationError, out []SchemaError) []SchemaError {
	if len(ve.Causes) == 0 {
		return append(out, SchemaError{
			Path:    ve.InstancePtr,
			Message: ve.Message,
			Keyword: keywordOf(ve.SchemaPtr),
			Context: contextOf(ve),
		})
	}
	for _, cause := range ve.Causes {
		out = flattenCauses(cause, out)
	}
	return out
}

func keywordOf(schemaPtr string) string {
	ptr := strings.TrimSuffix(strings.TrimPrefix(schemaPtr, "#"), "/")
	if i := strings.LastIndex(ptr, "/"); i >= 0 {
		ptr = ptr[i+1:]
	}
	return ptr
}

func contextOf(ve *jsonschema.ValidationError) string {
	url := strings.TrimSuffix(ve.SchemaURL, "#")
	ptr := strings.TrimPrefix(ve.SchemaPtr, "#")
	if ptr == "" {
		return url
	}
	return url + "#" + ptr
}
