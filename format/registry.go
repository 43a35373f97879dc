package format

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Registry holds registered formats.
type Registry struct {
	formats map[string]Format
}

// DefaultRegistry is the global format registry.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a new format registry.
func NewRegistry() *Registry {
	return &Registry{
		formats: make(map[string]Format),
	}
}

// Register adds a format to the registry. Names are case-insensitive.
func (r *Registry) Register(f Format) {
	r.formats[strings.ToLower(f.Name())] = f
}

// Get retrieves a format by name, ignoring case.
func (r *Registry) Get(name string) (Format, bool) {
	f, ok := r.formats[strings.ToLower(name)]
	return f, ok
}

// GetParser retrieves a format by name and requires it to parse.
func (r *Registry) GetParser(name string) (Parser, error) {
	f, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown format %q", name)
	}
	p, ok := f.(Parser)
	if !ok {
		return nil, fmt.Errorf("format %q has no parser", name)
	}
	return p, nil
}

// GetSerializer retrieves a format by name and requires it to serialize.
func (r *Registry) GetSerializer(name string) (Serializer, error) {
	f, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown format %q", name)
	}
	s, ok := f.(Serializer)
	if !ok {
		return nil, fmt.Errorf("format %q has no serializer", name)
	}
	return s, nil
}

// List returns all registered format names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectFormat attempts to detect the format from file extension and/or content.
// Candidates are tried in name order so detection is deterministic.
func (r *Registry) DetectFormat(filename string, peek []byte) (Format, error) {
	// Try by extension first
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, name := range r.List() {
		f := r.formats[name]
		for _, fext := range f.Extensions() {
			if ext == fext {
				return f, nil
			}
		}
	}

	// Try by content detection
	if len(peek) > 0 {
		for _, name := range r.List() {
			if f := r.formats[name]; f.CanParse(peek) {
				return f, nil
			}
		}
	}

	return nil, fmt.Errorf("could not detect format of %q", filename)
}

// DetectFromContent attempts to detect format from content alone.
func (r *Registry) DetectFromContent(peek []byte) (Format, error) {
	// Trim whitespace for detection
	peek = bytes.TrimSpace(peek)

	for _, name := range r.List() {
		if f := r.formats[name]; f.CanParse(peek) {
			return f, nil
		}
	}

	return nil, fmt.Errorf("no registered format recognizes the input")
}

// Register adds a format to the default registry.
func Register(f Format) {
	DefaultRegistry.Register(f)
}

// Get retrieves a format from the default registry.
func Get(name string) (Format, bool) {
	return DefaultRegistry.Get(name)
}

// GetParser retrieves a parser from the default registry.
func GetParser(name string) (Parser, error) {
	return DefaultRegistry.GetParser(name)
}

// GetSerializer retrieves a serializer from the default registry.
func GetSerializer(name string) (Serializer, error) {
	return DefaultRegistry.GetSerializer(name)
}

// DetectFormat detects format using the default registry.
func DetectFormat(filename string, peek []byte) (Format, error) {
	return DefaultRegistry.DetectFormat(filename, peek)
}

// DetectFromContent detects format from content using the default registry.
func DetectFromContent(peek []byte) (Format, error) {
	return DefaultRegistry.DetectFromContent(peek)
}
