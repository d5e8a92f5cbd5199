package camera

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the world position at the center of the screen.
//
// Parameters:
//   - x, y: the world position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(x, y float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = [2]float32{x, y}
	}
}

// WithZoom sets the height of the visible area in world units.
//
// Parameters:
//   - zoom: the visible height
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's zoom
func WithZoom(zoom float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.zoom = zoom
	}
}

// WithZoomBounds sets the range zoom is clamped to.
//
// Parameters:
//   - minZoom: the smallest visible height
//   - maxZoom: the largest visible height
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's zoom bounds
func WithZoomBounds(minZoom, maxZoom float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if minZoom > 0 && maxZoom >= minZoom {
			c.minZoom, c.maxZoom = minZoom, maxZoom
		}
	}
}

// WithViewport sets the framebuffer size in pixels.
//
// Parameters:
//   - width, height: the framebuffer size
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's viewport
func WithViewport(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		if width > 0 && height > 0 {
			c.viewport = [2]float32{float32(width), float32(height)}
		}
	}
}

// WithDepthRange sets the near and far planes, measured from the camera.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's depth range
func WithDepthRange(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near, c.far = near, far
	}
}
