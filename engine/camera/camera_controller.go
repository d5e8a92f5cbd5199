package camera

import "time"

// CameraController turns input events into camera motion. Events only record input state; Update
// applies it once per tick so motion is independent of event rate.
//
// W/A/S/D and the arrow keys pan. E or = zooms in and Q or - zooms out. Scrolling zooms and a
// drag moves the world with the cursor.
type CameraController interface {
	// Camera returns the camera this controller moves.
	//
	// Returns:
	//   - Camera: the controlled camera
	Camera() Camera

	// PanSpeed returns the keyboard pan speed in world units per second.
	//
	// Returns:
	//   - float32: the pan speed
	PanSpeed() float32

	// SetPanSpeed sets the keyboard pan speed in world units per second.
	//
	// Parameters:
	//   - speed: the pan speed
	SetPanSpeed(speed float32)

	// MagnificationSpeed returns the fraction the zoom changes per scroll step.
	//
	// Returns:
	//   - float32: the magnification speed
	MagnificationSpeed() float32

	// SetMagnificationSpeed sets the fraction the zoom changes per scroll step.
	//
	// Parameters:
	//   - speed: the magnification speed
	SetMagnificationSpeed(speed float32)

	// KeyDown records a pressed key.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	KeyDown(keyCode uint32)

	// KeyUp records a released key.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	KeyUp(keyCode uint32)

	// Scroll accumulates scroll steps. Positive values zoom in.
	//
	// Parameters:
	//   - delta: the scroll amount
	Scroll(delta float32)

	// DragStart begins a drag at a screen position.
	//
	// Parameters:
	//   - x, y: the mouse position in pixels
	DragStart(x, y int32)

	// DragMove records the mouse position. Ignored unless a drag is active.
	//
	// Parameters:
	//   - x, y: the mouse position in pixels
	DragMove(x, y int32)

	// DragEnd ends the active drag.
	//
	// Parameters:
	//   - x, y: the mouse position in pixels
	DragEnd(x, y int32)

	// Update applies the input recorded since the last call to the camera.
	//
	// Parameters:
	//   - dt: the time elapsed since the last update
	Update(dt time.Duration)
}
