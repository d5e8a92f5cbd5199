package engine

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-grid/common"
	"github.com/Carmen-Shannon/oxy-grid/engine/camera"
	"github.com/Carmen-Shannon/oxy-grid/engine/profiler"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/grid_renderer"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-grid/engine/window"
)

// layerEntry is a layer registered before the renderer is known.
type layerEntry struct {
	z    int
	grid grid_renderer.GridRenderer
}

// engine implements the Engine interface.
// Coordinates the tick, render and window goroutines.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window     window.Window
	renderer   renderer.Renderer
	camera     camera.Camera
	controller camera.CameraController

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate   time.Duration
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	tickCallback     func(deltaTime float32)
	renderCallback   func(deltaTime float32)
	cellClick        func(layer grid_renderer.GridRenderer, x, y int)

	pendingLayers []layerEntry

	shaderDir     string
	shaderWatcher shader.Watcher
	reloadChannel chan struct{}

	lastRenderErr string
}

// Engine is the main entry point for the engine.
// It runs a fixed-rate tick goroutine that applies camera input, a render goroutine that draws
// every grid layer in z order, and the window message loop.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, nil when running headless
	Window() window.Window

	// Renderer returns the renderer drawing the layers.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Camera returns the camera whose view-projection every layer is drawn with.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Controller returns the controller applying window input to the camera.
	//
	// Returns:
	//   - camera.CameraController: the controller
	Controller() camera.CameraController

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick, after camera input is applied.
	// Use this to edit grid cells.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// SetCellClickCallback registers the function called when the left mouse button is pressed
	// over a grid cell.
	//
	// Parameters:
	//   - callback: function receiving the top-most layer under the cursor and the cell coordinates
	SetCellClickCallback(callback func(layer grid_renderer.GridRenderer, x, y int))

	// AddLayer registers a grid renderer. Layers draw in ascending z order.
	//
	// Parameters:
	//   - z: the draw order key (lower draws first)
	//   - g: the grid renderer
	AddLayer(z int, g grid_renderer.GridRenderer)

	// RemoveLayer unregisters a grid renderer without tearing it down.
	//
	// Parameters:
	//   - g: the grid renderer
	//
	// Returns:
	//   - bool: true if the layer was registered
	RemoveLayer(g grid_renderer.GridRenderer) bool

	// PickCell finds the top-most ready layer cell under a screen position.
	//
	// Parameters:
	//   - x, y: pixels from the top left corner of the window
	//
	// Returns:
	//   - grid_renderer.GridRenderer: the layer hit, nil if none
	//   - cx, cy: the cell coordinates
	//   - ok: false if no layer is under the position
	PickCell(x, y float32) (layer grid_renderer.GridRenderer, cx, cy int, ok bool)

	// Run starts the engine goroutines and the window message loop (blocks until the window closes).
	// Without a window it blocks until Quit.
	Run()

	// Quit signals all engine goroutines to stop and releases the renderer once they have.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// A camera sized to the renderer viewport and a controller for it are created unless provided.
// Window input is wired to the controller and window resizes to the renderer and camera.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		reloadChannel:   make(chan struct{}, 1),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.camera == nil {
		var opts []camera.CameraBuilderOption
		if e.renderer != nil {
			vp := e.renderer.Viewport()
			opts = append(opts, camera.WithViewport(int(vp[0]), int(vp[1])))
		}
		e.camera = camera.NewCamera(opts...)
	}
	if e.controller == nil {
		e.controller = camera.NewCameraController(e.camera)
	}

	if e.renderer != nil {
		for _, l := range e.pendingLayers {
			e.renderer.AddLayer(l.z, l.grid)
		}
		e.pendingLayers = nil
	}

	if e.window != nil {
		e.bindWindow()
	}
	return e
}

// bindWindow routes window events to the renderer, camera and controller.
func (e *engine) bindWindow() {
	e.window.SetResizeCallback(e.resize)
	e.window.SetKeyDownCallback(e.controller.KeyDown)
	e.window.SetKeyUpCallback(e.controller.KeyUp)
	e.window.SetScrollCallback(e.controller.Scroll)
	e.window.SetMouseMoveCallback(e.controller.DragMove)
	e.window.SetMouseButtonCallback(func(button uint32, pressed bool, x, y int32) {
		switch button {
		case common.MouseButtonMiddle:
			if pressed {
				e.controller.DragStart(x, y)
			} else {
				e.controller.DragEnd(x, y)
			}
		case common.MouseButtonLeft:
			if pressed {
				e.click(float32(x), float32(y))
			}
		}
	})
}

func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
	e.camera.SetViewport(width, height)
}

func (e *engine) click(x, y float32) {
	e.mu.Lock()
	callback := e.cellClick
	e.mu.Unlock()
	if callback == nil {
		return
	}
	if layer, cx, cy, ok := e.PickCell(x, y); ok {
		callback(layer, cx, cy)
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Controller() camera.CameraController {
	return e.controller
}

func (e *engine) AddLayer(z int, g grid_renderer.GridRenderer) {
	e.renderer.AddLayer(z, g)
}

func (e *engine) RemoveLayer(g grid_renderer.GridRenderer) bool {
	return e.renderer.RemoveLayer(g)
}

func (e *engine) PickCell(x, y float32) (grid_renderer.GridRenderer, int, int, bool) {
	world := e.camera.ScreenToWorld(x, y)
	screen := [2]float32{x, y}
	viewport := e.renderer.Viewport()
	layers := e.renderer.Layers()
	for _, l := range slices.Backward(layers) {
		if l.State() != grid_renderer.StateReady {
			continue
		}
		if cx, cy, ok := l.PickCellAt(world, screen, viewport); ok {
			return l, cx, cy, true
		}
	}
	return nil, 0, 0, false
}

func (e *engine) Run() {
	e.startShaderWatcher()
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
	e.shutdown()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(e.quitChannel)
	})
}

// shutdown stops the shader watcher, releases GPU resources and closes the window after the
// goroutines exit. The surface is released before its window.
func (e *engine) shutdown() {
	if e.shaderWatcher != nil {
		if err := e.shaderWatcher.Close(); err != nil {
			slog.Error("close shader watcher", "err", err)
		}
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			slog.Error("close window", "err", err)
		}
	}
}

// handle launches the tick and render goroutines.
func (e *engine) handle() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate tick loop: camera input first, then the tick callback.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	e.mu.Lock()
	rate := e.engineTickRate
	e.mu.Unlock()
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := now.Sub(lastTick)
			lastTick = now

			e.controller.Update(dt)

			e.mu.Lock()
			callback := e.tickCallback
			e.mu.Unlock()
			if callback != nil {
				callback(float32(dt.Seconds()))
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop. Pending shader reloads run
// between frames. A panic is logged and quits the engine.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		case <-e.reloadChannel:
			e.reloadShaders()
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			e.renderFrame()

			e.mu.Lock()
			callback := e.renderCallback
			profiling := e.profilingEnabled
			limit := e.renderFrameLimit
			e.mu.Unlock()

			if callback != nil {
				callback(dt)
			}
			if profiling && e.profiler != nil {
				e.profiler.Tick(e.gridStats())
			}
			if limit > 0 {
				if remaining := limit - time.Since(lastRender); remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// renderFrame draws one frame with the camera's view-projection. A failing frame is logged once
// until the error changes.
func (e *engine) renderFrame() {
	if e.renderer == nil {
		return
	}
	err := e.renderer.Render(e.camera.ViewProjectionMatrix())
	if err == nil {
		e.lastRenderErr = ""
		return
	}
	if msg := err.Error(); msg != e.lastRenderErr {
		slog.Error("render frame failed", "err", err)
		e.lastRenderErr = msg
	}
}

// gridStats sums the counters of every layer for the profiler.
func (e *engine) gridStats() profiler.GridStats {
	var stats profiler.GridStats
	if e.renderer == nil {
		return stats
	}
	for _, l := range e.renderer.Layers() {
		s := l.Stats()
		stats.Layers++
		stats.Uploads += s.Uploads
		stats.SkippedEncodes += s.SkippedEncodes
	}
	return stats
}

// startShaderWatcher watches the hot reload directory, if one is configured. Changes are batched
// by the watcher and handed to the render goroutine.
func (e *engine) startShaderWatcher() {
	if e.shaderDir == "" || e.renderer == nil {
		return
	}
	w, err := shader.NewWatcher(e.shaderDir, func(paths []string) {
		slog.Info("shader change detected", "dir", e.shaderDir, "files", len(paths))
		e.requestReload()
	})
	if err != nil {
		slog.Error("shader hot reload disabled", "dir", e.shaderDir, "err", err)
		return
	}
	e.shaderWatcher = w
}

// requestReload schedules a reload on the render goroutine. Requests made while one is pending
// merge into it.
func (e *engine) requestReload() {
	select {
	case e.reloadChannel <- struct{}{}:
	default:
	}
}

// reloadShaders reloads every layer that has been initialized from the hot reload directory.
func (e *engine) reloadShaders() {
	for _, l := range e.renderer.Layers() {
		if l.Strategy() == pipeline.StrategyAuto {
			continue
		}
		if err := l.ReloadShaders(e.shaderDir); err != nil {
			slog.Error("shader reload failed", "layer", l.Label(), "state", l.State(), "err", err)
			continue
		}
		slog.Info("shaders reloaded", "layer", l.Label(), "strategy", l.Strategy())
	}
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

// SetTickRate takes effect immediately when the engine is running.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	e.mu.Lock()
	running := e.running
	e.engineTickRate = newRate
	e.mu.Unlock()
	if !running {
		return
	}

	// replace any pending, unapplied rate
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderFrameLimit = frameInterval(fps)
}

func (e *engine) SetCellClickCallback(callback func(layer grid_renderer.GridRenderer, x, y int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cellClick = callback
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
