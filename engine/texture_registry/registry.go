// Package texture_registry assigns dense indices to named textures, decodes them and uploads them
// to a device as either one image per texture or one layered atlas.
package texture_registry

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-grid/common"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/grid_renderer"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
)

// entry is one registered texture and, once decoded, its pixels.
type entry struct {
	texture *common.ImportedTexture
	staging *common.TextureStagingData
}

// registry is the implementation of the Registry interface.
type registry struct {
	mu *sync.Mutex

	entries []*entry
	byName  map[string]uint32

	layerWidth  uint32
	layerHeight uint32
	resize      bool
	workers     int
	format      device.ImageFormat
}

// Registry holds the textures a grid's cell indices refer to. Indices are assigned densely from 0
// in registration order and never change.
type Registry interface {
	grid_renderer.TextureSource

	// Add registers a texture under a name.
	//
	// Parameters:
	//   - name: the unique texture name
	//   - texture: the encoded texture, held in memory or on disk
	//
	// Returns:
	//   - uint32: the assigned index
	//   - error: ErrDuplicateName if the name is taken
	Add(name string, texture *common.ImportedTexture) (uint32, error)

	// AddFile registers a texture file under a name.
	//
	// Parameters:
	//   - name: the unique texture name
	//   - path: the image file path
	//
	// Returns:
	//   - uint32: the assigned index
	//   - error: ErrDuplicateName if the name is taken
	AddFile(name, path string) (uint32, error)

	// Index returns the index assigned to a name.
	//
	// Parameters:
	//   - name: the texture name
	//
	// Returns:
	//   - uint32: the index
	//   - bool: false if the name is not registered
	Index(name string) (uint32, bool)

	// Name returns the name registered at an index.
	//
	// Parameters:
	//   - index: the texture index
	//
	// Returns:
	//   - string: the name
	//   - bool: false if the index is out of range
	Name(index uint32) (string, bool)

	// DecodeAll decodes every texture not yet decoded, in parallel. When resizing is enabled
	// textures are scaled to the layer size.
	//
	// Returns:
	//   - error: the joined decode errors; textures that decoded are kept
	DecodeAll() error

	// Staging returns the decoded pixels of a texture.
	//
	// Parameters:
	//   - index: the texture index
	//
	// Returns:
	//   - common.TextureStagingData: the RGBA pixels
	//   - bool: false if the index is out of range or not decoded
	Staging(index uint32) (common.TextureStagingData, bool)
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry.
//
// Parameters:
//   - options: a variadic list of RegistryBuilderOption functions
//
// Returns:
//   - Registry: the registry
func NewRegistry(options ...RegistryBuilderOption) Registry {
	r := &registry{
		mu:      &sync.Mutex{},
		byName:  make(map[string]uint32),
		workers: runtime.NumCPU(),
		format:  device.ImageFormatRGBA8UnormSrgb,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *registry) Add(name string, texture *common.ImportedTexture) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	if texture == nil {
		return 0, fmt.Errorf("texture %q is nil", name)
	}
	texture.Name = name
	index := uint32(len(r.entries))
	r.entries = append(r.entries, &entry{texture: texture})
	r.byName[name] = index
	return index, nil
}

func (r *registry) AddFile(name, path string) (uint32, error) {
	return r.Add(name, &common.ImportedTexture{Path: path})
}

func (r *registry) Index(name string) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byName[name]
	return i, ok
}

func (r *registry) Name(index uint32) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(index) >= len(r.entries) {
		return "", false
	}
	return r.entries[index].texture.Name, true
}

func (r *registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *registry) Staging(index uint32) (common.TextureStagingData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(index) >= len(r.entries) || r.entries[index].staging == nil {
		return common.TextureStagingData{}, false
	}
	return *r.entries[index].staging, true
}

func (r *registry) Textures(dev device.Device, strategy pipeline.BindingStrategy) ([]device.Image, error) {
	if err := r.DecodeAll(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil, ErrEmptyRegistry
	}

	switch strategy {
	case pipeline.StrategyDescriptorArray:
		return r.uploadEach(dev)
	case pipeline.StrategyLayeredAtlas:
		return r.uploadAtlas(dev)
	default:
		return nil, fmt.Errorf("%w: %s", grid_renderer.ErrUnsupportedStrategy, strategy)
	}
}

// uploadEach creates one plain 2D image per texture. Callers hold mu.
func (r *registry) uploadEach(dev device.Device) ([]device.Image, error) {
	images := make([]device.Image, 0, len(r.entries))
	release := func() {
		for _, img := range images {
			img.Release()
		}
	}
	for _, e := range r.entries {
		img, err := dev.CreateImage(device.ImageDescriptor{
			Label:  e.texture.Name,
			Width:  e.staging.Width,
			Height: e.staging.Height,
			Layers: 1,
			Format: r.format,
		})
		if err != nil {
			release()
			return nil, fmt.Errorf("texture %q: %w", e.texture.Name, err)
		}
		images = append(images, img)
		if err := dev.WriteImage(img, 0, e.staging.Pixels); err != nil {
			release()
			return nil, fmt.Errorf("texture %q: %w", e.texture.Name, err)
		}
	}
	return images, nil
}

// uploadAtlas creates one layered image with a layer per texture, in index order. Callers hold mu.
func (r *registry) uploadAtlas(dev device.Device) ([]device.Image, error) {
	w, h := r.entries[0].staging.Width, r.entries[0].staging.Height
	for _, e := range r.entries[1:] {
		if e.staging.Width != w || e.staging.Height != h {
			return nil, fmt.Errorf("%w: %q is %dx%d, atlas layers are %dx%d",
				ErrLayerSizeMismatch, e.texture.Name, e.staging.Width, e.staging.Height, w, h)
		}
	}

	img, err := dev.CreateImage(device.ImageDescriptor{
		Label:   "texture atlas",
		Width:   w,
		Height:  h,
		Layers:  uint32(len(r.entries)),
		Format:  r.format,
		Layered: true,
	})
	if err != nil {
		return nil, err
	}
	for i, e := range r.entries {
		if err := dev.WriteImage(img, uint32(i), e.staging.Pixels); err != nil {
			img.Release()
			return nil, fmt.Errorf("atlas layer %d (%q): %w", i, e.texture.Name, err)
		}
	}
	return []device.Image{img}, nil
}
