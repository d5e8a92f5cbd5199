package engine

import (
	"github.com/Carmen-Shannon/oxy-grid/engine/camera"
	"github.com/Carmen-Shannon/oxy-grid/engine/profiler"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/grid_renderer"
	"github.com/Carmen-Shannon/oxy-grid/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//   - options: options for the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool, options ...profiler.ProfilerBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
		if len(options) > 0 {
			e.profiler = profiler.NewProfiler(options...)
		}
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(fps)
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameInterval(fps)
	}
}

// WithWindow sets the window whose input drives the camera and whose resizes reach the renderer.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer that draws the layers.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithCamera sets the camera instead of a default one sized to the renderer viewport.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithCameraController sets the controller input is routed to. It should drive the engine's camera.
//
// Parameters:
//   - cc: the controller
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCameraController(cc camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		e.controller = cc
		if e.camera == nil {
			e.camera = cc.Camera()
		}
	}
}

// WithLayer registers a grid renderer at a z order key. Requires WithRenderer.
//
// Parameters:
//   - z: the draw order key (lower draws first)
//   - g: the grid renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLayer(z int, g grid_renderer.GridRenderer) EngineBuilderOption {
	return func(e *engine) {
		e.pendingLayers = append(e.pendingLayers, layerEntry{z: z, grid: g})
	}
}

// WithShaderHotReload watches a directory of grid shader files and reloads every initialized layer
// when they change. A layer whose new shaders fail to load keeps drawing with the old ones.
//
// Parameters:
//   - dir: the directory holding the grid shader files
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithShaderHotReload(dir string) EngineBuilderOption {
	return func(e *engine) {
		e.shaderDir = dir
	}
}
