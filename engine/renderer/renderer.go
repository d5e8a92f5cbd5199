package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-grid/common"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/grid_renderer"
	"github.com/Carmen-Shannon/oxy-grid/engine/window"
)

// layer is one grid renderer and its draw order.
type layer struct {
	z    int
	grid grid_renderer.GridRenderer
}

// Model space bounds of a grid quad.
var (
	quadMin = [3]float32{0, 0, 0}
	quadMax = [3]float32{1, 1, 0}
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType   BackendType
	dev           device.Device
	deviceOptions []WGPUDeviceBuilderOption

	layers   []layer
	viewport [2]float32
}

// Renderer composes grid layers into frames on one device.
//
// Every frame opens with BeginFrame, draws each Ready layer in ascending z order with its own
// model matrix applied to the shared view-projection, then closes with EndFrame and Present.
// Layers that are not Ready, or whose quad lies entirely off-screen, are skipped for the frame.
type Renderer interface {
	// Device returns the device the renderer draws with. Layers are created on this device.
	//
	// Returns:
	//   - device.Device: the device
	Device() device.Device

	// AddLayer adds a grid renderer at draw order z. Layers with equal z draw in insertion order.
	//
	// Parameters:
	//   - z: the draw order, lower first
	//   - g: the grid renderer to draw
	AddLayer(z int, g grid_renderer.GridRenderer)

	// RemoveLayer removes a grid renderer without tearing it down.
	//
	// Parameters:
	//   - g: the grid renderer to remove
	//
	// Returns:
	//   - bool: true if the layer was present
	RemoveLayer(g grid_renderer.GridRenderer) bool

	// Layers returns the grid renderers in draw order.
	//
	// Returns:
	//   - []grid_renderer.GridRenderer: the layers
	Layers() []grid_renderer.GridRenderer

	// Render draws one frame.
	//
	// Parameters:
	//   - viewProj: the camera's column-major view-projection matrix
	//
	// Returns:
	//   - error: a frame error from the device, or the joined layer errors
	Render(viewProj [16]float32) error

	// Resize configures the device for a new surface size, which is also the viewport passed to
	// every layer.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Viewport returns the current surface size in pixels.
	//
	// Returns:
	//   - [2]float32: width and height
	Viewport() [2]float32

	// Release tears down every layer and releases the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with a device of the given backend on a window's surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - win: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the device cannot be created
func NewRenderer(backendType BackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(backendType, options...)

	switch backendType {
	case BackendTypeWGPU:
		dev, err := NewWGPUDevice(win.SurfaceDescriptor(), win.Width(), win.Height(), r.deviceOptions...)
		if err != nil {
			return nil, err
		}
		r.dev = dev
	default:
		return nil, fmt.Errorf("unknown backend type %d", backendType)
	}
	r.viewport = [2]float32{float32(win.Width()), float32(win.Height())}
	return r, nil
}

// NewRendererWithDevice creates a Renderer on an existing device.
//
// Parameters:
//   - dev: the device to draw with; the renderer takes ownership
//   - width, height: the initial surface size
//   - options: variadic list of RendererBuilderOption functions; device options are ignored
//
// Returns:
//   - Renderer: the renderer
func NewRendererWithDevice(dev device.Device, width, height int, options ...RendererBuilderOption) Renderer {
	r := newRenderer(BackendTypeWGPU, options...)
	r.dev = dev
	r.viewport = [2]float32{float32(width), float32(height)}
	return r
}

func newRenderer(backendType BackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) Device() device.Device {
	return r.dev
}

func (r *renderer) AddLayer(z int, g grid_renderer.GridRenderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLayer(z, g)
}

func (r *renderer) addLayer(z int, g grid_renderer.GridRenderer) {
	r.layers = append(r.layers, layer{z: z, grid: g})
	slices.SortStableFunc(r.layers, func(a, b layer) int {
		return a.z - b.z
	})
}

func (r *renderer) RemoveLayer(g grid_renderer.GridRenderer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.layers, func(l layer) bool { return l.grid == g })
	if i < 0 {
		return false
	}
	r.layers = slices.Delete(r.layers, i, i+1)
	return true
}

func (r *renderer) Layers() []grid_renderer.GridRenderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]grid_renderer.GridRenderer, len(r.layers))
	for i, l := range r.layers {
		out[i] = l.grid
	}
	return out
}

func (r *renderer) Render(viewProj [16]float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.dev.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}

	var errs []error
	var mvp [16]float32
	for _, l := range r.layers {
		if l.grid.State() != grid_renderer.StateReady {
			slog.Debug("skipping layer", "layer", l.grid.Label(), "state", l.grid.State())
			continue
		}
		model := l.grid.ModelMatrix()
		common.Mul4(mvp[:], viewProj[:], model[:])
		if !common.ExtractFrustumFromMatrix(mvp[:]).IntersectsBox(quadMin, quadMax) {
			continue
		}
		if err := l.grid.RenderFrame(grid_renderer.FrameInput{Viewport: r.viewport, MVP: mvp}); err != nil {
			errs = append(errs, err)
		}
	}

	if err := r.dev.EndFrame(); err != nil {
		return errors.Join(append(errs, fmt.Errorf("end frame: %w", err))...)
	}
	r.dev.Present()
	return errors.Join(errs...)
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width <= 0 || height <= 0 {
		return
	}
	r.dev.Resize(width, height)
	r.viewport = [2]float32{float32(width), float32(height)}
}

func (r *renderer) Viewport() [2]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewport
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.layers {
		if err := l.grid.Teardown(); err != nil {
			slog.Error("layer teardown failed", "layer", l.grid.Label(), "err", err)
		}
	}
	r.layers = nil
	r.dev.Release()
}
