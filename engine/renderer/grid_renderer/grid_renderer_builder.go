package grid_renderer

import (
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
)

// GridRendererBuilderOption is a function that configures a gridRenderer.
type GridRendererBuilderOption func(*gridRenderer)

// WithPosition sets the world position of the grid's lower left corner.
//
// Parameters:
//   - x, y: the world position
//
// Returns:
//   - GridRendererBuilderOption: a function that applies the position
func WithPosition(x, y float32) GridRendererBuilderOption {
	return func(r *gridRenderer) {
		r.position = [2]float32{x, y}
	}
}

// WithCellSize sets the world size of one cell. Non-positive sizes are ignored.
//
// Parameters:
//   - size: the cell edge length in world units
//
// Returns:
//   - GridRendererBuilderOption: a function that applies the cell size
func WithCellSize(size float32) GridRendererBuilderOption {
	return func(r *gridRenderer) {
		if size > 0 {
			r.cellSize = size
		}
	}
}

// WithLabel sets the label used for GPU objects and log lines.
func WithLabel(label string) GridRendererBuilderOption {
	return func(r *gridRenderer) {
		r.label = label
	}
}

// WithCellCoordSource selects where the fragment stage derives grid positions from.
func WithCellCoordSource(c pipeline.CellCoordSource) GridRendererBuilderOption {
	return func(r *gridRenderer) {
		r.coordSource = c
	}
}

// WithSampler overrides the nearest filtering, clamp to edge sampler. An empty label takes the
// renderer label.
func WithSampler(desc device.SamplerDescriptor) GridRendererBuilderOption {
	return func(r *gridRenderer) {
		r.sampler = desc
	}
}

// WithBlend enables alpha blending, for grids drawn over lower layers.
func WithBlend(enabled bool) GridRendererBuilderOption {
	return func(r *gridRenderer) {
		r.blend = enabled
	}
}
