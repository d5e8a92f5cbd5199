package texture_registry

import "github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"

// RegistryBuilderOption is a functional option applied to a registry during construction via NewRegistry.
type RegistryBuilderOption func(*registry)

// WithLayerSize fixes the size every texture must have, or is scaled to when resizing is enabled.
// Without it the first decoded texture sets the size.
//
// Parameters:
//   - width, height: the layer size in pixels
//
// Returns:
//   - RegistryBuilderOption: a function that applies the layer size to a registry
func WithLayerSize(width, height uint32) RegistryBuilderOption {
	return func(r *registry) {
		r.layerWidth, r.layerHeight = width, height
	}
}

// WithResize scales textures to the layer size during decode instead of rejecting them.
//
// Parameters:
//   - resize: true to scale mismatched textures
//
// Returns:
//   - RegistryBuilderOption: a function that applies the resize flag to a registry
func WithResize(resize bool) RegistryBuilderOption {
	return func(r *registry) {
		r.resize = resize
	}
}

// WithDecodeWorkers sets the maximum number of goroutines DecodeAll uses.
func WithDecodeWorkers(n int) RegistryBuilderOption {
	return func(r *registry) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithFormat sets the image format textures are uploaded as.
func WithFormat(format device.ImageFormat) RegistryBuilderOption {
	return func(r *registry) {
		r.format = format
	}
}
