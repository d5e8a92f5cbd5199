package texture_registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ManifestEntry is one texture listed in a manifest.
type ManifestEntry struct {
	Name string `toml:"name" yaml:"name"`
	Path string `toml:"path" yaml:"path"`
}

// Manifest lists the textures of a registry in index order, with optional atlas layer settings.
//
// TOML:
//
//	layer_width = 32
//	layer_height = 32
//	resize = true
//
//	[[textures]]
//	name = "grass"
//	path = "tiles/grass.png"
type Manifest struct {
	LayerWidth  uint32          `toml:"layer_width" yaml:"layer_width"`
	LayerHeight uint32          `toml:"layer_height" yaml:"layer_height"`
	Resize      bool            `toml:"resize" yaml:"resize"`
	Textures    []ManifestEntry `toml:"textures" yaml:"textures"`
}

// ParseManifest decodes a manifest.
//
// Parameters:
//   - data: the manifest contents
//   - ext: the file extension selecting the format: ".toml", ".yaml" or ".yml"
//
// Returns:
//   - Manifest: the decoded manifest
//   - error: an error for an unknown format, a syntax error, or an entry without name or path
func ParseManifest(data []byte, ext string) (Manifest, error) {
	var m Manifest
	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.Unmarshal(data, &m)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		return m, fmt.Errorf("unsupported manifest format %q", ext)
	}
	if err != nil {
		return m, fmt.Errorf("parse manifest: %w", err)
	}
	for i, t := range m.Textures {
		if t.Name == "" || t.Path == "" {
			return m, fmt.Errorf("manifest texture %d: name and path are required", i)
		}
	}
	return m, nil
}

// LoadManifest reads a manifest file and registers its textures in order. Relative texture paths
// resolve against the manifest's directory. The manifest's layer settings are applied before
// options, so options override them.
//
// Parameters:
//   - path: the manifest file path
//   - options: a variadic list of RegistryBuilderOption functions
//
// Returns:
//   - Registry: the registry with every texture registered, not yet decoded
//   - error: a read, parse or registration error
func LoadManifest(path string, options ...RegistryBuilderOption) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	opts := []RegistryBuilderOption{WithResize(m.Resize)}
	if m.LayerWidth > 0 && m.LayerHeight > 0 {
		opts = append(opts, WithLayerSize(m.LayerWidth, m.LayerHeight))
	}
	r := NewRegistry(append(opts, options...)...)

	dir := filepath.Dir(path)
	for _, t := range m.Textures {
		p := t.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		if _, err := r.AddFile(t.Name, p); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return r, nil
}
