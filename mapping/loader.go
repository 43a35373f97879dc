package mapping

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var embeddedProfiles embed.FS

// ProfileRegistry holds loaded profiles.
type ProfileRegistry struct {
	profiles map[string]*Profile
}

// NewProfileRegistry creates a registry preloaded with the embedded
// profiles. A broken embedded profile is a build defect and fails hard.
func NewProfileRegistry() (*ProfileRegistry, error) {
	r := &ProfileRegistry{profiles: make(map[string]*Profile)}

	paths, err := fs.Glob(embeddedProfiles, "profiles/*.yaml")
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		data, err := embeddedProfiles.ReadFile(path)
		if err != nil {
			return nil, err
		}
		profile, err := parseProfile(data)
		if err != nil {
			return nil, fmt.Errorf("embedded profile %s: %w", path, err)
		}
		r.add(profile, path)
	}
	return r, nil
}

// add registers a profile, deriving a name from its file path when the
// document does not carry one.
func (r *ProfileRegistry) add(profile *Profile, path string) {
	if profile.Name == "" {
		profile.Name = strings.TrimSuffix(filepath.Base(path), ".yaml")
	}
	r.profiles[profile.Name] = profile
}

// LoadProfile loads a profile from a file path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	return parseProfile(data)
}

// LoadProfileFromString loads a profile from YAML content.
func LoadProfileFromString(content string) (*Profile, error) {
	return parseProfile([]byte(content))
}

func parseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile YAML: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Get retrieves a profile by name.
func (r *ProfileRegistry) Get(name string) (*Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Register adds a profile to the registry.
func (r *ProfileRegistry) Register(profile *Profile) {
	r.profiles[profile.Name] = profile
}

// List returns all registered profile names.
func (r *ProfileRegistry) List() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	return names
}

// LoadFromDirectory loads every .yaml profile in dir, shadowing already
// registered profiles of the same name. A missing directory is not an
// error; a profile that fails to parse is skipped so one bad user file
// cannot take out the registry.
func (r *ProfileRegistry) LoadFromDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading profile directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		profile, err := LoadProfile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		r.add(profile, name)
	}
	return nil
}

// MergeProfiles merges a custom profile over a base profile.
// Custom columns override base columns of the same header.
func MergeProfiles(base, custom *Profile) *Profile {
	merged := &Profile{
		Name:                custom.Name,
		Format:              custom.Format,
		Description:         custom.Description,
		Delimiter:           base.Delimiter,
		MultiValueSeparator: base.MultiValueSeparator,
		Columns:             make(map[string]ColumnMapping, len(base.Columns)+len(custom.Columns)),
	}

	if merged.Format == "" {
		merged.Format = base.Format
	}
	if merged.Description == "" {
		merged.Description = base.Description
	}
	if custom.Delimiter != "" {
		merged.Delimiter = custom.Delimiter
	}
	if custom.MultiValueSeparator != "" {
		merged.MultiValueSeparator = custom.MultiValueSeparator
	}

	for k, v := range base.Columns {
		merged.Columns[k] = v
	}
	for k, v := range custom.Columns {
		merged.Columns[k] = v
	}

	return merged
}
