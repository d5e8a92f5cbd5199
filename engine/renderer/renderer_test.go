package renderer

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-grid/common"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/grid_renderer"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-grid/engine/tile_grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type layerTextures struct{}

func (layerTextures) Count() int { return 2 }

func (layerTextures) Textures(dev device.Device, strategy pipeline.BindingStrategy) ([]device.Image, error) {
	img, err := dev.CreateImage(device.ImageDescriptor{Label: "atlas", Width: 2, Height: 2, Layers: 2, Layered: true})
	if err != nil {
		return nil, err
	}
	return []device.Image{img}, nil
}

func newLayer(t *testing.T, dev device.Device, label string, x float32, ready bool) grid_renderer.GridRenderer {
	t.Helper()
	g, err := tile_grid.NewGrid(2, 2, tile_grid.WithTextureCount(2))
	require.NoError(t, err)
	gr := grid_renderer.NewGridRenderer(dev, g, layerTextures{}, grid_renderer.WithLabel(label), grid_renderer.WithPosition(x, 0))
	if ready {
		require.NoError(t, gr.Initialize(pipeline.StrategyLayeredAtlas, 2, grid_renderer.ShaderSet{}))
	}
	return gr
}

func TestRenderDrawsLayersInZOrder(t *testing.T) {
	dev := devicetest.NewDevice()
	top := newLayer(t, dev, "top", 1, true)
	bottom := newLayer(t, dev, "bottom", 0, true)
	pending := newLayer(t, dev, "pending", 0, false)

	r := NewRendererWithDevice(dev, 800, 600, WithLayer(10, top), WithLayer(0, bottom))
	r.AddLayer(5, pending)
	assert.Equal(t, []grid_renderer.GridRenderer{bottom, pending, top}, r.Layers())
	dev.Reset()

	var vp [16]float32
	common.Identity(vp[:])
	vp[0] = 0.5
	require.NoError(t, r.Render(vp))

	ops := dev.Ops()
	require.NotEmpty(t, ops)
	assert.Equal(t, devicetest.OpBeginFrame, ops[0])
	assert.Equal(t, devicetest.OpPresent, ops[len(ops)-1])

	draws := dev.CallsOf(devicetest.OpRecordDraw)
	require.Len(t, draws, 2)
	assert.Equal(t, "bottom/layered_atlas", draws[0].Label)
	assert.Equal(t, "top/layered_atlas", draws[1].Label)

	model := top.ModelMatrix()
	var want [16]float32
	common.Mul4(want[:], vp[:], model[:])
	assert.Equal(t, grid_renderer.BuildTransformPushConstant(want), draws[1].Data)

	assert.True(t, r.RemoveLayer(pending))
	assert.False(t, r.RemoveLayer(pending))
}

func TestRenderJoinsLayerErrors(t *testing.T) {
	dev := devicetest.NewDevice()
	a := newLayer(t, dev, "a", 0, true)
	b := newLayer(t, dev, "b", 0, true)
	r := NewRendererWithDevice(dev, 800, 600, WithLayer(0, a), WithLayer(1, b))

	boom := fmt.Errorf("write failed")
	dev.FailNext(devicetest.OpWriteBuffer, boom)

	var vp [16]float32
	common.Identity(vp[:])
	err := r.Render(vp)
	require.ErrorIs(t, err, boom)

	// the healthy layer still drew and the frame was presented
	assert.Len(t, dev.CallsOf(devicetest.OpRecordDraw), 1)
	assert.Len(t, dev.CallsOf(devicetest.OpPresent), 1)
}

func TestRenderCullsOffscreenLayers(t *testing.T) {
	dev := devicetest.NewDevice()
	visible := newLayer(t, dev, "visible", -1, true)
	offscreen := newLayer(t, dev, "offscreen", 40, true)
	r := NewRendererWithDevice(dev, 800, 600, WithLayer(0, visible), WithLayer(1, offscreen))

	var vp [16]float32
	common.Identity(vp[:])
	vp[0], vp[5] = 0.1, 0.1
	require.NoError(t, r.Render(vp))

	draws := dev.CallsOf(devicetest.OpRecordDraw)
	require.Len(t, draws, 1)
	assert.Equal(t, "visible/layered_atlas", draws[0].Label)
	assert.Zero(t, offscreen.Stats().Frames)
}

func TestRenderBeginFrameFailure(t *testing.T) {
	dev := devicetest.NewDevice()
	r := NewRendererWithDevice(dev, 800, 600, WithLayer(0, newLayer(t, dev, "a", 0, true)))
	boom := fmt.Errorf("surface lost")
	dev.FailNext(devicetest.OpBeginFrame, boom)

	require.ErrorIs(t, r.Render([16]float32{}), boom)
	assert.Empty(t, dev.CallsOf(devicetest.OpRecordDraw))
}

func TestResizeAndRelease(t *testing.T) {
	dev := devicetest.NewDevice()
	layer := newLayer(t, dev, "a", 0, true)
	r := NewRendererWithDevice(dev, 800, 600, WithLayer(0, layer))

	r.Resize(1024, 768)
	assert.Equal(t, [2]float32{1024, 768}, r.Viewport())
	w, h := dev.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)

	r.Resize(0, 0)
	assert.Equal(t, [2]float32{1024, 768}, r.Viewport())

	r.Release()
	assert.Equal(t, grid_renderer.StateUninitialized, layer.State())
	assert.Empty(t, dev.Live())
	assert.Empty(t, r.Layers())
}
