// Package graphjson dumps and restores the resource graph as JSON. It is
// the lossless interchange format between tool runs: every graph field
// survives, including extra fields that no export format carries.
package graphjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/graph"
)

// Format implements the graph JSON dump format.
type Format struct{}

// Ensure Format implements the interfaces
var (
	_ format.Format     = (*Format)(nil)
	_ format.Parser     = (*Format)(nil)
	_ format.Serializer = (*Format)(nil)
)

// Name returns the format identifier.
func (f *Format) Name() string {
	return "graphjson"
}

// Description returns a human-readable format description.
func (f *Format) Description() string {
	return "Lossless resource graph dump (JSON)"
}

// Extensions returns file extensions associated with this format.
func (f *Format) Extensions() []string {
	return []string{"json"}
}

// CanParse returns true if the input looks like a graph dump.
func (f *Format) CanParse(peek []byte) bool {
	peek = bytes.TrimSpace(peek)
	if len(peek) == 0 {
		return false
	}
	if peek[0] != '{' && peek[0] != '[' {
		return false
	}
	return bytes.Contains(peek, []byte(`"resources"`)) || bytes.Contains(peek, []byte(`"identifierType"`))
}

// envelope is the top-level dump document.
type envelope struct {
	Resources []*resourceJSON `json:"resources"`
}

// resourceJSON shadows the Extra field with raw JSON so protobuf
// well-known types round-trip through protojson instead of encoding/json.
type resourceJSON struct {
	*graph.Resource
	Extra json.RawMessage `json:"extra,omitempty"`
}

// Parse reads a graph dump and returns its resources. Both the
// {"resources": [...]} envelope and a bare resource array are accepted.
func (f *Format) Parse(r io.Reader, _ *format.ParseOptions) ([]*graph.Resource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	var entries []*resourceJSON
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("parsing resource array: %w", err)
		}
	} else {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("parsing graph dump: %w", err)
		}
		entries = env.Resources
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no resources in graph dump")
	}

	resources := make([]*graph.Resource, 0, len(entries))
	for i, entry := range entries {
		res, err := unwrapResource(entry)
		if err != nil {
			return nil, fmt.Errorf("resource %d: %w", i, err)
		}
		resources = append(resources, res)
	}

	return resources, nil
}

// Serialize writes resources as a graph dump.
func (f *Format) Serialize(w io.Writer, resources []*graph.Resource, opts *format.SerializeOptions) error {
	if opts == nil {
		opts = format.NewSerializeOptions()
	}

	env := envelope{Resources: make([]*resourceJSON, 0, len(resources))}
	for i, res := range resources {
		entry, err := wrapResource(res)
		if err != nil {
			return fmt.Errorf("resource %d: %w", i, err)
		}
		env.Resources = append(env.Resources, entry)
	}

	var output []byte
	var err error
	if opts.Pretty {
		output, err = json.MarshalIndent(env, "", "  ")
	} else {
		output, err = json.Marshal(env)
	}
	if err != nil {
		return fmt.Errorf("marshaling graph dump: %w", err)
	}

	if _, err := w.Write(output); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}

func wrapResource(res *graph.Resource) (*resourceJSON, error) {
	entry := &resourceJSON{Resource: res}
	if res.Extra != nil {
		raw, err := protojson.Marshal(res.Extra)
		if err != nil {
			return nil, fmt.Errorf("encoding extra fields: %w", err)
		}
		entry.Extra = raw
	}
	return entry, nil
}

func unwrapResource(entry *resourceJSON) (*graph.Resource, error) {
	if entry == nil {
		return nil, fmt.Errorf("null resource entry")
	}
	res := entry.Resource
	if res == nil {
		res = &graph.Resource{}
	}
	if len(entry.Extra) > 0 {
		var st structpb.Struct
		if err := protojson.Unmarshal(entry.Extra, &st); err != nil {
			return nil, fmt.Errorf("decoding extra fields: %w", err)
		}
		res.Extra = &st
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	return res, nil
}

func init() {
	format.Register(&Format{})
}
