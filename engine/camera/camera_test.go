package camera

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-grid/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, [2]float32{0, 0}, c.Position())
	assert.Equal(t, float32(1), c.Zoom())
	assert.Equal(t, [2]float32{1, 1}, c.Viewport())
}

func TestViewProjectionMapsVisibleAreaToClipSpace(t *testing.T) {
	c := NewCamera(WithPosition(10, 5), WithZoom(6), WithViewport(800, 600))
	vp := c.ViewProjectionMatrix()

	// 6 units tall at 4:3 is 8 units wide
	topRight := common.MulVec4(vp[:], [4]float32{14, 8, 0, 1})
	assert.InDelta(t, 1, topRight[0], 1e-5)
	assert.InDelta(t, 1, topRight[1], 1e-5)
	assert.True(t, topRight[2] > 0 && topRight[2] < 1, "world plane depth %f", topRight[2])

	bottomLeft := common.MulVec4(vp[:], [4]float32{6, 2, 0, 1})
	assert.InDelta(t, -1, bottomLeft[0], 1e-5)
	assert.InDelta(t, -1, bottomLeft[1], 1e-5)

	center := common.MulVec4(vp[:], [4]float32{10, 5, 0, 1})
	assert.InDelta(t, 0, center[0], 1e-5)
	assert.InDelta(t, 0, center[1], 1e-5)
}

func TestViewProjectionIsProjectionTimesView(t *testing.T) {
	c := NewCamera(WithPosition(-3, 2), WithZoom(20), WithViewport(1280, 720))
	view := c.ViewMatrix()
	proj := c.ProjectionMatrix()
	want := make([]float32, 16)
	common.Mul4(want, proj[:], view[:])
	vp := c.ViewProjectionMatrix()
	assert.InDeltaSlice(t, want, vp[:], 1e-6)
}

func TestScreenToWorld(t *testing.T) {
	c := NewCamera(WithPosition(10, 5), WithZoom(6), WithViewport(800, 600))

	tests := []struct {
		name   string
		screen [2]float32
		want   [2]float32
	}{
		{"center", [2]float32{400, 300}, [2]float32{10, 5}},
		{"top left", [2]float32{0, 0}, [2]float32{6, 8}},
		{"bottom right", [2]float32{800, 600}, [2]float32{14, 2}},
		{"quarter", [2]float32{600, 450}, [2]float32{12, 3.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ScreenToWorld(tt.screen[0], tt.screen[1])
			assert.InDelta(t, tt.want[0], got[0], 1e-4)
			assert.InDelta(t, tt.want[1], got[1], 1e-4)
		})
	}
}

func TestSetViewportIgnoresEmptySizes(t *testing.T) {
	c := NewCamera(WithViewport(800, 600))
	before := c.ProjectionMatrix()

	c.SetViewport(0, 600)
	c.SetViewport(800, -1)
	assert.Equal(t, [2]float32{800, 600}, c.Viewport())
	assert.Equal(t, before, c.ProjectionMatrix())

	c.SetViewport(600, 600)
	assert.Equal(t, [2]float32{600, 600}, c.Viewport())
	assert.NotEqual(t, before, c.ProjectionMatrix())
}

func TestZoomIsClamped(t *testing.T) {
	c := NewCamera(WithZoomBounds(1, 100))
	c.SetZoom(0.001)
	assert.Equal(t, float32(1), c.Zoom())
	c.SetZoom(1e6)
	assert.Equal(t, float32(100), c.Zoom())

	c = NewCamera(WithZoom(500), WithZoomBounds(1, 100))
	assert.Equal(t, float32(100), c.Zoom())
}

func TestControllerDefaults(t *testing.T) {
	cc := NewCameraController(NewCamera())
	assert.Equal(t, float32(50), cc.PanSpeed())
	assert.Equal(t, float32(0.05), cc.MagnificationSpeed())

	cc = NewCameraController(NewCamera(), WithPanSpeed(10), WithMagnificationSpeed(0.1))
	assert.Equal(t, float32(10), cc.PanSpeed())
	assert.Equal(t, float32(0.1), cc.MagnificationSpeed())
}

func TestControllerKeyPan(t *testing.T) {
	c := NewCamera()
	cc := NewCameraController(c, WithPanSpeed(10))

	cc.KeyDown(common.KeyD)
	cc.KeyDown(common.KeyUp)
	cc.Update(500 * time.Millisecond)
	assert.InDelta(t, 5, c.Position()[0], 1e-5)
	assert.InDelta(t, 5, c.Position()[1], 1e-5)

	cc.KeyUp(common.KeyUp)
	cc.KeyDown(common.KeyA)
	cc.Update(time.Second)
	// left and right cancel
	assert.InDelta(t, 5, c.Position()[0], 1e-5)
	assert.InDelta(t, 5, c.Position()[1], 1e-5)

	cc.KeyUp(common.KeyD)
	cc.KeyDown(common.KeyS)
	cc.Update(100 * time.Millisecond)
	assert.InDelta(t, 4, c.Position()[0], 1e-5)
	assert.InDelta(t, 4, c.Position()[1], 1e-5)
}

func TestControllerScrollZoom(t *testing.T) {
	c := NewCamera(WithZoom(100))
	cc := NewCameraController(c, WithMagnificationSpeed(0.1))

	cc.Scroll(1)
	cc.Scroll(1)
	cc.Update(0)
	assert.InDelta(t, 80, c.Zoom(), 1e-4)

	// consumed by the previous update
	cc.Update(0)
	assert.InDelta(t, 80, c.Zoom(), 1e-4)

	cc.Scroll(-5)
	cc.Update(0)
	assert.InDelta(t, 120, c.Zoom(), 1e-3)
}

func TestControllerKeyZoom(t *testing.T) {
	c := NewCamera(WithZoom(100))
	cc := NewCameraController(c, WithMagnificationSpeed(0.05))

	cc.KeyDown(common.KeyEqual)
	cc.Update(time.Second)
	// ten steps in one update
	assert.InDelta(t, 50, c.Zoom(), 1e-3)

	cc.KeyUp(common.KeyEqual)
	cc.KeyDown(common.KeyQ)
	cc.Update(100 * time.Millisecond)
	assert.InDelta(t, 52.5, c.Zoom(), 1e-3)
}

func TestControllerDragFollowsMouse(t *testing.T) {
	c := NewCamera(WithZoom(6), WithViewport(800, 600))
	cc := NewCameraController(c)

	under := c.ScreenToWorld(200, 150)

	cc.DragStart(200, 150)
	cc.DragMove(300, 210)
	cc.Update(0)

	// the world point grabbed stays under the cursor
	got := c.ScreenToWorld(300, 210)
	assert.InDelta(t, under[0], got[0], 1e-4)
	assert.InDelta(t, under[1], got[1], 1e-4)

	cc.DragMove(400, 300)
	cc.DragEnd(400, 300)
	cc.Update(0)
	got = c.ScreenToWorld(400, 300)
	assert.InDelta(t, under[0], got[0], 1e-4)
	assert.InDelta(t, under[1], got[1], 1e-4)

	// moves after the drag ended are ignored
	pos := c.Position()
	cc.DragMove(0, 0)
	cc.Update(0)
	require.Equal(t, pos, c.Position())
}
