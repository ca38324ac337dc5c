// Parses store manifest YAML files.

package pathstore

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest declares a store in a YAML file: the backing filename, the
// persistence flags, and the path-to-shape entry table.
type Manifest struct {
	Filename       string           `yaml:"filename"`
	SaveOnPush     bool             `yaml:"save_on_push,omitempty"`
	HumanReadable  bool             `yaml:"human_readable,omitempty"`
	Separator      string           `yaml:"separator,omitempty"`
	ErrorOnMissing bool             `yaml:"error_on_missing,omitempty"`
	Entries        map[string]Shape `yaml:"entries"`
}

// ParseManifest reads and parses a store manifest from a file. A relative
// backing filename is resolved against the manifest's directory.
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	manifest, err := ParseManifestBytes(data)
	if err != nil {
		return nil, err
	}
	if manifest.Filename != "" && !filepath.IsAbs(manifest.Filename) {
		manifest.Filename = filepath.Join(filepath.Dir(path), manifest.Filename)
	}
	return manifest, nil
}

// ParseManifestBytes parses a store manifest from bytes.
func ParseManifestBytes(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &manifest, nil
}

// Validate checks that the manifest is well-formed.
func (m *Manifest) Validate() error {
	if m.Filename == "" {
		return fmt.Errorf("filename is required")
	}
	if len(m.Entries) == 0 {
		return fmt.Errorf("at least one entry is required")
	}
	for path, shape := range m.Entries {
		if !shape.Valid() {
			return fmt.Errorf("entry %q: unknown shape %q (want %s, %s or %s)", path, shape, ShapeSingle, ShapeArray, ShapeDictionary)
		}
	}
	return nil
}

// Options converts the manifest into store construction options.
func (m *Manifest) Options() Options {
	return Options{
		Filename:       m.Filename,
		Entries:        m.Entries,
		SaveOnPush:     m.SaveOnPush,
		HumanReadable:  m.HumanReadable,
		Separator:      m.Separator,
		ErrorOnMissing: m.ErrorOnMissing,
	}
}

// OpenManifest parses a manifest file and creates the store it declares.
func OpenManifest(path string) (*Store, error) {
	manifest, err := ParseManifest(path)
	if err != nil {
		return nil, err
	}
	return New(manifest.Options())
}
