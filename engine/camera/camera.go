package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-grid/common"
)

// viewDistance is how far in front of the world plane the camera sits.
const viewDistance = 10

type cameraImpl struct {
	mu *sync.Mutex

	position [2]float32
	zoom     float32
	minZoom  float32
	maxZoom  float32
	viewport [2]float32
	near     float32
	far      float32

	viewMatrix              [16]float32
	projectionMatrix        [16]float32
	viewProjectionMatrix    [16]float32
	inverseProjectionMatrix [16]float32
}

// Camera defines a 2D orthographic camera looking down at the world plane z = 0.
// World y points up on screen. Zoom is the height of the visible area in world units, the width
// follows the viewport aspect ratio. Matrices target the WebGPU clip space with depth in [0, 1].
type Camera interface {
	// Position returns the world position at the center of the screen.
	//
	// Returns:
	//   - [2]float32: the world position
	Position() [2]float32

	// SetPosition moves the camera and recomputes matrices.
	//
	// Parameters:
	//   - x, y: the world position
	SetPosition(x, y float32)

	// Zoom returns the height of the visible area in world units.
	//
	// Returns:
	//   - float32: the zoom
	Zoom() float32

	// SetZoom sets the height of the visible area, clamped to the zoom bounds, and recomputes matrices.
	//
	// Parameters:
	//   - zoom: the visible height in world units
	SetZoom(zoom float32)

	// Viewport returns the framebuffer size in pixels.
	//
	// Returns:
	//   - [2]float32: width and height
	Viewport() [2]float32

	// SetViewport sets the framebuffer size in pixels and recomputes matrices. Non-positive sizes,
	// such as a minimized window, are ignored.
	//
	// Parameters:
	//   - width, height: the framebuffer size
	SetViewport(width, height int)

	// ViewMatrix returns the current view matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current orthographic projection matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns projection * view (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// ScreenToView converts a screen position to an offset from the screen center in world units.
	//
	// Parameters:
	//   - x, y: pixels from the top left corner of the viewport
	//
	// Returns:
	//   - [2]float32: the offset in world units, y up
	ScreenToView(x, y float32) [2]float32

	// ScreenToWorld converts a screen position to a world position on the z = 0 plane.
	//
	// Parameters:
	//   - x, y: pixels from the top left corner of the viewport
	//
	// Returns:
	//   - [2]float32: the world position
	ScreenToWorld(x, y float32) [2]float32
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at the origin showing 1 world unit vertically on a 1x1 viewport.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		zoom:     1,
		minZoom:  0.01,
		maxZoom:  10000,
		viewport: [2]float32{1, 1},
		near:     0.01,
		far:      1000,
	}
	for _, opt := range options {
		opt(c)
	}
	c.zoom = clampZoom(c.zoom, c.minZoom, c.maxZoom)
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() [2]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [2]float32{x, y}
	c.updateMatrices()
}

func (c *cameraImpl) Zoom() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *cameraImpl) SetZoom(zoom float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = clampZoom(zoom, c.minZoom, c.maxZoom)
	c.updateMatrices()
}

func (c *cameraImpl) Viewport() [2]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

func (c *cameraImpl) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = [2]float32{float32(width), float32(height)}
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) ScreenToView(x, y float32) [2]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screenToView(x, y)
}

func (c *cameraImpl) ScreenToWorld(x, y float32) [2]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.screenToView(x, y)
	return [2]float32{c.position[0] + v[0], c.position[1] + v[1]}
}

// screenToView unprojects a screen position through the inverse projection. Caller must hold the mutex.
func (c *cameraImpl) screenToView(x, y float32) [2]float32 {
	ndc := [4]float32{
		2*x/c.viewport[0] - 1,
		1 - 2*y/c.viewport[1],
		0,
		1,
	}
	v := common.MulVec4(c.inverseProjectionMatrix[:], ndc)
	return [2]float32{v[0], v[1]}
}

// updateMatrices recalculates the view, projection, view-projection and inverse projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	common.Translate(c.viewMatrix[:], -c.position[0], -c.position[1], -viewDistance)

	halfH := c.zoom / 2
	halfW := halfH * c.viewport[0] / c.viewport[1]
	common.Orthographic(c.projectionMatrix[:], -halfW, halfW, -halfH, halfH, c.near, c.far)

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
	common.Invert4(c.inverseProjectionMatrix[:], c.projectionMatrix[:])
}

func clampZoom(zoom, lo, hi float32) float32 {
	return min(max(zoom, lo), hi)
}
