package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPanSpeed sets the keyboard pan speed.
//
// Parameters:
//   - speed: world units per second
//
// Returns:
//   - CameraControllerOption: functional option to set the pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}

// WithMagnificationSpeed sets the fraction the zoom changes per scroll step.
//
// Parameters:
//   - speed: the zoom fraction per step
//
// Returns:
//   - CameraControllerOption: functional option to set the magnification speed
func WithMagnificationSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.magnificationSpeed = speed
	}
}
