package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-grid/common"
	"github.com/Carmen-Shannon/oxy-grid/engine/camera"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/grid_renderer"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-grid/engine/tile_grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type atlasTextures struct{}

func (atlasTextures) Count() int { return 2 }

func (atlasTextures) Textures(dev device.Device, strategy pipeline.BindingStrategy) ([]device.Image, error) {
	img, err := dev.CreateImage(device.ImageDescriptor{Label: "atlas", Width: 2, Height: 2, Layers: 2, Layered: true})
	if err != nil {
		return nil, err
	}
	return []device.Image{img}, nil
}

func newLayer(t *testing.T, dev device.Device, label string, ready bool) grid_renderer.GridRenderer {
	t.Helper()
	g, err := tile_grid.NewGrid(2, 2, tile_grid.WithTextureCount(2))
	require.NoError(t, err)
	gr := grid_renderer.NewGridRenderer(dev, g, atlasTextures{}, grid_renderer.WithLabel(label))
	if ready {
		require.NoError(t, gr.Initialize(pipeline.StrategyLayeredAtlas, 2, grid_renderer.ShaderSet{}))
	}
	return gr
}

func newTestEngine(t *testing.T, dev *devicetest.Device, options ...EngineBuilderOption) *engine {
	t.Helper()
	r := renderer.NewRendererWithDevice(dev, 800, 600)
	opts := append([]EngineBuilderOption{WithRenderer(r)}, options...)
	return NewEngine(opts...).(*engine)
}

func TestNewEngineSizesDefaultCamera(t *testing.T) {
	e := newTestEngine(t, devicetest.NewDevice())
	assert.Equal(t, [2]float32{800, 600}, e.Camera().Viewport())
	assert.Same(t, e.Camera(), e.Controller().Camera())
}

func TestRenderFrameUsesCameraViewProjection(t *testing.T) {
	dev := devicetest.NewDevice()
	bottom := newLayer(t, dev, "bottom", true)
	top := newLayer(t, dev, "top", true)
	cam := camera.NewCamera(camera.WithViewport(800, 600), camera.WithZoom(6), camera.WithPosition(1, 1))
	e := newTestEngine(t, dev, WithCamera(cam), WithLayer(1, top), WithLayer(0, bottom))
	dev.Reset()

	e.renderFrame()

	draws := dev.CallsOf(devicetest.OpRecordDraw)
	require.Len(t, draws, 2)
	assert.Equal(t, "bottom/layered_atlas", draws[0].Label)

	vp := cam.ViewProjectionMatrix()
	model := top.ModelMatrix()
	var mvp [16]float32
	common.Mul4(mvp[:], vp[:], model[:])
	assert.Equal(t, grid_renderer.BuildTransformPushConstant(mvp), draws[1].Data)
}

func TestRenderFrameLogsAndContinues(t *testing.T) {
	dev := devicetest.NewDevice()
	e := newTestEngine(t, dev, WithLayer(0, newLayer(t, dev, "a", true)))

	dev.FailNext(devicetest.OpBeginFrame, assert.AnError)
	e.renderFrame()
	assert.NotEmpty(t, e.lastRenderErr)

	e.renderFrame()
	assert.Empty(t, e.lastRenderErr)
	assert.Len(t, dev.CallsOf(devicetest.OpPresent), 1)
}

func TestPickCellPrefersTopLayer(t *testing.T) {
	dev := devicetest.NewDevice()
	bottom := newLayer(t, dev, "bottom", true)
	top := newLayer(t, dev, "top", true)
	pending := newLayer(t, dev, "pending", false)
	cam := camera.NewCamera(camera.WithViewport(800, 600), camera.WithZoom(6))
	e := newTestEngine(t, dev, WithCamera(cam), WithLayer(0, bottom), WithLayer(1, top), WithLayer(2, pending))

	// world (0.5, 1.5): 8x6 units visible around the origin
	layer, x, y, ok := e.PickCell(450, 150)
	require.True(t, ok)
	assert.Same(t, top, layer)
	assert.Equal(t, 0, x)
	assert.Equal(t, 1, y)

	require.True(t, e.RemoveLayer(top))
	layer, _, _, ok = e.PickCell(450, 150)
	require.True(t, ok)
	assert.Same(t, bottom, layer)

	// world (-0.5, -0.5) is left of and below the grids
	_, _, _, ok = e.PickCell(350, 350)
	assert.False(t, ok)
}

func TestPickCellFragCoordLayer(t *testing.T) {
	dev := devicetest.NewDevice()
	g, err := tile_grid.NewGrid(2, 2, tile_grid.WithTextureCount(2))
	require.NoError(t, err)
	layer := grid_renderer.NewGridRenderer(dev, g, atlasTextures{}, grid_renderer.WithCellCoordSource(pipeline.CellCoordFragCoord))
	require.NoError(t, layer.Initialize(pipeline.StrategyLayeredAtlas, 2, grid_renderer.ShaderSet{}))
	cam := camera.NewCamera(camera.WithViewport(800, 600), camera.WithZoom(6))
	e := newTestEngine(t, dev, WithCamera(cam), WithLayer(0, layer))

	// world (0.5, 1.5) is on the quad; the cell comes from the pixel over the 800x600 viewport
	got, x, y, ok := e.PickCell(450, 150)
	require.True(t, ok)
	assert.Same(t, layer, got)
	assert.Equal(t, 1, x)
	assert.Equal(t, 0, y)
}

func TestClickCallsCellCallback(t *testing.T) {
	dev := devicetest.NewDevice()
	layer := newLayer(t, dev, "a", true)
	cam := camera.NewCamera(camera.WithViewport(800, 600), camera.WithZoom(6))
	e := newTestEngine(t, dev, WithCamera(cam), WithLayer(0, layer))

	e.click(450, 150)

	var hits [][2]int
	e.SetCellClickCallback(func(l grid_renderer.GridRenderer, x, y int) {
		assert.Same(t, layer, l)
		hits = append(hits, [2]int{x, y})
	})
	e.click(450, 150)
	e.click(0, 0)
	assert.Equal(t, [][2]int{{0, 1}}, hits)
}

func TestResizeReachesRendererAndCamera(t *testing.T) {
	dev := devicetest.NewDevice()
	e := newTestEngine(t, dev)

	e.resize(1024, 768)
	assert.Equal(t, [2]float32{1024, 768}, e.Renderer().Viewport())
	assert.Equal(t, [2]float32{1024, 768}, e.Camera().Viewport())

	// minimized
	e.resize(0, 0)
	assert.Equal(t, [2]float32{1024, 768}, e.Camera().Viewport())
	assert.Len(t, dev.CallsOf(devicetest.OpResize), 1)
}

func writeShaders(t *testing.T, dir string) {
	t.Helper()
	for _, name := range []string{grid_renderer.VertexShaderFile, grid_renderer.AtlasFragmentShaderFile} {
		src, err := os.ReadFile(filepath.Join("renderer", "grid_renderer", "assets", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), src, 0o644))
	}
}

func TestReloadShadersSkipsUninitializedLayers(t *testing.T) {
	dev := devicetest.NewDevice()
	ready := newLayer(t, dev, "ready", true)
	pending := newLayer(t, dev, "pending", false)
	dir := t.TempDir()
	writeShaders(t, dir)
	e := newTestEngine(t, dev, WithLayer(0, ready), WithLayer(1, pending), WithShaderHotReload(dir))
	dev.Reset()

	e.reloadShaders()

	assert.Len(t, dev.CallsOf(devicetest.OpCreatePipeline), 1)
	assert.Equal(t, grid_renderer.StateReady, ready.State())
	assert.Equal(t, grid_renderer.StateUninitialized, pending.State())
}

func TestReloadShadersKeepsLayerOnLoadFailure(t *testing.T) {
	dev := devicetest.NewDevice()
	layer := newLayer(t, dev, "ready", true)
	e := newTestEngine(t, dev, WithLayer(0, layer), WithShaderHotReload(t.TempDir()))
	dev.Reset()

	e.reloadShaders()

	assert.Empty(t, dev.CallsOf(devicetest.OpCreatePipeline))
	assert.Equal(t, grid_renderer.StateReady, layer.State())
}

func TestRequestReloadCoalesces(t *testing.T) {
	e := newTestEngine(t, devicetest.NewDevice())
	e.requestReload()
	e.requestReload()
	assert.Len(t, e.reloadChannel, 1)
}

func TestGridStatsSumsLayers(t *testing.T) {
	dev := devicetest.NewDevice()
	e := newTestEngine(t, dev, WithLayer(0, newLayer(t, dev, "a", true)), WithLayer(1, newLayer(t, dev, "b", true)))
	e.renderFrame()
	e.renderFrame()

	stats := e.gridStats()
	assert.Equal(t, 2, stats.Layers)
	assert.Equal(t, uint64(2), stats.Uploads)
	assert.Equal(t, uint64(2), stats.SkippedEncodes)
}

func TestRunHeadlessUntilQuit(t *testing.T) {
	dev := devicetest.NewDevice()
	e := newTestEngine(t, dev, WithLayer(0, newLayer(t, dev, "a", true)), WithTickRate(240), WithRenderFrameLimit(240))

	ticks := make(chan struct{}, 1)
	e.SetTickCallback(func(float32) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-ticks:
	case <-time.After(5 * time.Second):
		t.Fatal("no tick")
	}
	e.Quit()
	e.Quit()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.NotEmpty(t, dev.CallsOf(devicetest.OpRelease))
	assert.Empty(t, dev.Live())
}

func TestIntervals(t *testing.T) {
	assert.Equal(t, time.Second/60, tickInterval(0))
	assert.Equal(t, 10*time.Millisecond, tickInterval(100))
	assert.Equal(t, time.Duration(0), frameInterval(-1))
	assert.Equal(t, 20*time.Millisecond, frameInterval(50))
}
