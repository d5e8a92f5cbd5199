package renderer

import "github.com/Carmen-Shannon/oxy-grid/engine/renderer/grid_renderer"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithDeviceOptions passes options to the WebGPU device NewRenderer creates.
//
// Parameters:
//   - options: the device options, e.g. WithPresentMode or WithMSAA
//
// Returns:
//   - RendererBuilderOption: a function that applies the device options to a renderer
func WithDeviceOptions(options ...WGPUDeviceBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.deviceOptions = append(r.deviceOptions, options...)
	}
}

// WithLayer adds a grid renderer at draw order z.
//
// Parameters:
//   - z: the draw order, lower first
//   - g: the grid renderer to draw
//
// Returns:
//   - RendererBuilderOption: a function that adds the layer to a renderer
func WithLayer(z int, g grid_renderer.GridRenderer) RendererBuilderOption {
	return func(r *renderer) {
		r.addLayer(z, g)
	}
}
