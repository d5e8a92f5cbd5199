package camera

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-grid/common"
)

// keyZoomSteps is how many scroll steps a held zoom key is worth per second.
const keyZoomSteps = 10

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	camera Camera

	panSpeed           float32
	magnificationSpeed float32

	// held keys by virtual key code
	keys map[uint32]bool

	// accumulated scroll since the last Update
	zoomDelta float32

	dragging bool
	// mouse position consumed by the last Update
	dragLast [2]int32
	// latest mouse position during a drag
	dragMouse [2]int32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller driving the given camera.
//
// Parameters:
//   - camera: the camera to move
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(camera Camera, options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:                 &sync.Mutex{},
		camera:             camera,
		panSpeed:           50,
		magnificationSpeed: 0.05,
		keys:               make(map[uint32]bool),
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Camera() Camera {
	return cc.camera
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}

func (cc *cameraControllerImpl) SetPanSpeed(speed float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.panSpeed = speed
}

func (cc *cameraControllerImpl) MagnificationSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.magnificationSpeed
}

func (cc *cameraControllerImpl) SetMagnificationSpeed(speed float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.magnificationSpeed = speed
}

func (cc *cameraControllerImpl) KeyDown(keyCode uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.keys[keyCode] = true
}

func (cc *cameraControllerImpl) KeyUp(keyCode uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.keys, keyCode)
}

func (cc *cameraControllerImpl) Scroll(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.zoomDelta += delta
}

func (cc *cameraControllerImpl) DragStart(x, y int32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.dragging = true
	cc.dragLast = [2]int32{x, y}
	cc.dragMouse = cc.dragLast
}

func (cc *cameraControllerImpl) DragMove(x, y int32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.dragging {
		cc.dragMouse = [2]int32{x, y}
	}
}

func (cc *cameraControllerImpl) DragEnd(x, y int32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.dragging {
		cc.dragMouse = [2]int32{x, y}
	}
	cc.dragging = false
}

func (cc *cameraControllerImpl) Update(dt time.Duration) {
	cc.mu.Lock()
	var dir [2]float32
	if cc.keys[common.KeyW] || cc.keys[common.KeyUp] {
		dir[1]++
	}
	if cc.keys[common.KeyS] || cc.keys[common.KeyDown] {
		dir[1]--
	}
	if cc.keys[common.KeyA] || cc.keys[common.KeyLeft] {
		dir[0]--
	}
	if cc.keys[common.KeyD] || cc.keys[common.KeyRight] {
		dir[0]++
	}
	step := cc.panSpeed * float32(dt.Seconds())

	if cc.keys[common.KeyE] || cc.keys[common.KeyEqual] {
		cc.zoomDelta += keyZoomSteps * float32(dt.Seconds())
	}
	if cc.keys[common.KeyQ] || cc.keys[common.KeyMinus] {
		cc.zoomDelta -= keyZoomSteps * float32(dt.Seconds())
	}
	zoomDelta := cc.zoomDelta
	cc.zoomDelta = 0
	mag := cc.magnificationSpeed

	drag := [2]int32{cc.dragMouse[0] - cc.dragLast[0], cc.dragMouse[1] - cc.dragLast[1]}
	cc.dragLast = cc.dragMouse
	cc.mu.Unlock()

	pos := cc.camera.Position()
	pos[0] += dir[0] * step
	pos[1] += dir[1] * step

	if drag != [2]int32{} {
		// the screen center plus the mouse delta unprojects to the world offset the mouse covered
		vp := cc.camera.Viewport()
		offset := cc.camera.ScreenToView(vp[0]/2+float32(drag[0]), vp[1]/2+float32(drag[1]))
		pos[0] -= offset[0]
		pos[1] -= offset[1]
	}
	cc.camera.SetPosition(pos[0], pos[1])

	if zoomDelta != 0 {
		cc.camera.SetZoom(cc.camera.Zoom() * (1 - zoomDelta*mag))
	}
}
