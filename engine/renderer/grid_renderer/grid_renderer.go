package grid_renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-grid/common"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-grid/engine/tile_grid"
)

// State is the lifecycle state of a GridRenderer.
type State int

const (
	// StateUninitialized holds no GPU resources. Frames are rejected.
	StateUninitialized State = iota
	// StateReady holds a pipeline variant, its descriptor sets and buffers.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// quadVertexCount is the number of vertices drawn per grid: two triangles.
const quadVertexCount = 6

// quadVertices is the unit quad, position then texcoord per vertex, with texcoord equal to position.
var quadVertices = []float32{
	0, 0, 0, 0,
	1, 0, 1, 0,
	1, 1, 1, 1,
	0, 0, 0, 0,
	1, 1, 1, 1,
	0, 1, 0, 1,
}

// FrameInput carries the per-frame values a grid draw needs.
type FrameInput struct {
	// Viewport is the framebuffer size in pixels.
	Viewport [2]float32
	// MVP is the column-major model-view-projection matrix of the grid quad.
	MVP [16]float32
}

// Stats holds frame counters of a GridRenderer.
type Stats struct {
	Frames         uint64
	Uploads        uint64
	SkippedEncodes uint64
}

// TextureSource supplies the images a grid samples from.
type TextureSource interface {
	// Count returns the number of textures, which is the exclusive upper bound of valid cell indices.
	//
	// Returns:
	//   - int: the texture count
	Count() int

	// Textures creates and uploads the images for a binding strategy: one image per texture for
	// StrategyDescriptorArray, one layered image for StrategyLayeredAtlas.
	// The caller owns the returned images.
	//
	// Parameters:
	//   - dev: the device to create the images on
	//   - strategy: a concrete binding strategy
	//
	// Returns:
	//   - []device.Image: the uploaded images
	//   - error: an error if creation or upload fails
	Textures(dev device.Device, strategy pipeline.BindingStrategy) ([]device.Image, error)
}

// uniformSlot is one of the two frame uniform buffers and the descriptor set that binds it.
type uniformSlot struct {
	buf   device.Buffer
	set   device.DescriptorSet
	fence device.Fence
}

// gridRenderer is the implementation of the GridRenderer interface.
type gridRenderer struct {
	mu *sync.Mutex

	dev      device.Device
	grid     tile_grid.Grid
	textures TextureSource

	label       string
	position    [2]float32
	cellSize    float32
	coordSource pipeline.CellCoordSource
	sampler     device.SamplerDescriptor
	blend       bool

	state        State
	strategy     pipeline.BindingStrategy
	gridLength   int
	textureCount int
	shaders      ShaderSet

	packer        *tile_grid.IndexPacker
	images        []device.Image
	samplerHandle device.Sampler
	pipe          device.PipelineHandle
	quad          device.Buffer
	slots         [2]uniformSlot
	front         int

	uploaded         bool
	uploadedVersion  uint64
	uploadedViewport [2]float32

	stats Stats
}

// GridRenderer draws one tile grid as a single textured quad.
//
// A GridRenderer moves between StateUninitialized and StateReady. Initialize resolves a binding
// strategy and creates every GPU object the variant needs; Teardown releases them. RenderFrame
// records exactly one draw per call and re-uploads the frame uniform only when the grid version
// or the viewport changed, double buffering the uniform so an in-flight frame is never written.
type GridRenderer interface {
	// State returns the current lifecycle state.
	//
	// Returns:
	//   - State: the state
	State() State

	// Strategy returns the resolved binding strategy, StrategyAuto before the first Initialize.
	//
	// Returns:
	//   - pipeline.BindingStrategy: the strategy
	Strategy() pipeline.BindingStrategy

	// CellCoordSource returns where the fragment stage derives grid positions from.
	//
	// Returns:
	//   - pipeline.CellCoordSource: the coordinate source
	CellCoordSource() pipeline.CellCoordSource

	// Grid returns the grid being drawn.
	//
	// Returns:
	//   - tile_grid.Grid: the grid
	Grid() tile_grid.Grid

	// Label returns the label used for the renderer's GPU objects and log lines.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Initialize resolves the binding strategy and creates the pipeline variant, uniform buffers,
	// sampler, descriptor sets and quad buffer. On failure every object created so far is
	// released and the renderer stays Uninitialized.
	//
	// Parameters:
	//   - strategy: the requested strategy, StrategyAuto to pick by capability
	//   - gridLength: the number of cells along each axis, must match the grid
	//   - shaders: the shader pair, the zero ShaderSet for the embedded shaders
	//
	// Returns:
	//   - error: ErrInvalidStateTransition when Ready, tile_grid.ErrGridSizeMismatch,
	//     tile_grid.ErrIndexOutOfRange, strategy errors or device errors (wrapped)
	Initialize(strategy pipeline.BindingStrategy, gridLength int, shaders ShaderSet) error

	// Teardown waits for frames using the renderer's resources, releases them and returns to
	// Uninitialized. It is a no-op when already Uninitialized.
	//
	// Returns:
	//   - error: a fence wait error; resources are released regardless
	Teardown() error

	// Reload tears down and initializes again with the last strategy and grid length and the
	// given shaders. It never rebinds in place.
	//
	// Parameters:
	//   - shaders: the new shader pair, the zero ShaderSet for the embedded shaders
	//
	// Returns:
	//   - error: ErrInvalidStateTransition if the renderer was never initialized, or any
	//     Initialize error, in which case the renderer is Uninitialized
	Reload(shaders ShaderSet) error

	// ReloadShaders loads the shader files for the current variant from a directory and reloads
	// with them. When loading or compiling fails the current variant keeps running.
	//
	// Parameters:
	//   - dir: the directory holding the grid shader files
	//
	// Returns:
	//   - error: ErrInvalidStateTransition if the renderer was never initialized, a load error,
	//     or any Reload error
	ReloadShaders(dir string) error

	// RenderFrame records the grid draw into the device's current frame. Cell indices are checked
	// against the textures bound at Initialize, not only against the grid's texture count.
	//
	// Parameters:
	//   - input: the viewport and the model-view-projection matrix
	//
	// Returns:
	//   - error: ErrInvalidStateTransition when not Ready, tile_grid.ErrIndexOutOfRange (wrapped)
	//     when a cell references a texture that is not bound, or device errors (wrapped)
	RenderFrame(input FrameInput) error

	// ModelMatrix returns the grid quad's model matrix: the unit quad scaled to the grid's world
	// size and translated to its position.
	//
	// Returns:
	//   - [16]float32: the column-major model matrix
	ModelMatrix() [16]float32

	// PickCell maps a world position to the grid cell under it. Grids using
	// pipeline.CellCoordFragCoord lay cells out in screen space and always report ok=false here;
	// use PickCellAt for them.
	//
	// Parameters:
	//   - world: the world position
	//
	// Returns:
	//   - x, y: the cell coordinates
	//   - ok: false if the position is outside the grid
	PickCell(world [2]float32) (x, y int, ok bool)

	// PickCellAt maps a pointer position to the grid cell drawn under it, for either coordinate
	// source. With pipeline.CellCoordFragCoord the quad must cover the position and the cell comes
	// from the screen position over the viewport, row 0 at the top, as the fragment stage does.
	//
	// Parameters:
	//   - world: the pointer's world position
	//   - screen: the pointer's position in pixels from the top left corner
	//   - viewport: the framebuffer size the grid is drawn with
	//
	// Returns:
	//   - x, y: the cell coordinates
	//   - ok: false if no cell of the grid is drawn there
	PickCellAt(world, screen, viewport [2]float32) (x, y int, ok bool)

	// Stats returns the frame counters.
	//
	// Returns:
	//   - Stats: a copy of the counters
	Stats() Stats
}

var _ GridRenderer = &gridRenderer{}

// NewGridRenderer creates an Uninitialized GridRenderer for a grid.
//
// Parameters:
//   - dev: the device to create resources on and record draws into
//   - grid: the grid to draw
//   - textures: the texture source the cell indices refer to
//   - options: a variadic list of GridRendererBuilderOption functions
//
// Returns:
//   - GridRenderer: the renderer
func NewGridRenderer(dev device.Device, grid tile_grid.Grid, textures TextureSource, options ...GridRendererBuilderOption) GridRenderer {
	r := &gridRenderer{
		mu:          &sync.Mutex{},
		dev:         dev,
		grid:        grid,
		textures:    textures,
		label:       "grid",
		cellSize:    1,
		coordSource: pipeline.CellCoordTexcoord,
		sampler: device.SamplerDescriptor{
			AddressModeU: device.AddressModeClampToEdge,
			AddressModeV: device.AddressModeClampToEdge,
			MagFilter:    device.FilterModeNearest,
			MinFilter:    device.FilterModeNearest,
		},
		packer: tile_grid.NewIndexPacker(),
	}
	for _, opt := range options {
		opt(r)
	}
	r.sampler.Label = common.Coalesce(r.sampler.Label, r.label)
	return r
}

func (r *gridRenderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *gridRenderer) Strategy() pipeline.BindingStrategy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.strategy
}

func (r *gridRenderer) CellCoordSource() pipeline.CellCoordSource {
	return r.coordSource
}

func (r *gridRenderer) Grid() tile_grid.Grid {
	return r.grid
}

func (r *gridRenderer) Label() string {
	return r.label
}

func (r *gridRenderer) Initialize(strategy pipeline.BindingStrategy, gridLength int, shaders ShaderSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialize(strategy, gridLength, shaders)
}

func (r *gridRenderer) initialize(strategy pipeline.BindingStrategy, gridLength int, shaders ShaderSet) error {
	if r.state == StateReady {
		return fmt.Errorf("%w: %s is already %s", ErrInvalidStateTransition, r.label, r.state)
	}
	if gridLength <= 0 || r.grid.Width() != gridLength || r.grid.Height() != gridLength {
		return fmt.Errorf("%w: grid is %dx%d, pipeline expects %dx%d",
			tile_grid.ErrGridSizeMismatch, r.grid.Width(), r.grid.Height(), gridLength, gridLength)
	}

	count := r.textures.Count()
	resolved, err := SelectStrategy(strategy, r.dev.Capabilities(), count)
	if err != nil {
		return err
	}
	if int(r.grid.TextureCount()) > count {
		return fmt.Errorf("%w: grid references %d textures, source has %d",
			tile_grid.ErrIndexOutOfRange, r.grid.TextureCount(), count)
	}

	if err := r.build(resolved, gridLength, count, shaders); err != nil {
		r.release()
		return fmt.Errorf("initialize %s: %w", r.label, err)
	}

	r.strategy = resolved
	r.gridLength = gridLength
	r.textureCount = count
	r.shaders = shaders
	r.front = 0
	r.uploaded = false
	r.packer.Invalidate()
	r.state = StateReady
	slog.Debug("grid renderer ready", "layer", r.label, "strategy", resolved, "grid_length", gridLength, "textures", count)
	return nil
}

// build creates the GPU objects of a variant in dependency order. Objects are stored on r as they
// are created so release can undo a partial build.
func (r *gridRenderer) build(strategy pipeline.BindingStrategy, gridLength, count int, shaders ShaderSet) error {
	var err error
	if shaders.IsZero() {
		shaders, err = DefaultShaderSet(strategy, r.coordSource, gridLength, count)
		if err != nil {
			return err
		}
	}

	r.images, err = r.textures.Textures(r.dev, strategy)
	if err != nil {
		return err
	}

	cellCount := gridLength * gridLength
	layout := DescriptorLayout(strategy, count, cellCount)
	desc := pipeline.NewPipeline(r.label+"/"+strategy.String(), strategy,
		pipeline.WithVertexShader(shaders.Vertex),
		pipeline.WithFragmentShader(shaders.Fragment),
		pipeline.WithCellCoordSource(r.coordSource),
		pipeline.WithGridLength(gridLength),
		pipeline.WithTextureCount(count),
		pipeline.WithBlendEnabled(r.blend),
	)
	if r.pipe, err = r.dev.CreatePipeline(desc, layout); err != nil {
		return err
	}
	if r.samplerHandle, err = r.dev.CreateSampler(r.sampler); err != nil {
		return err
	}

	if r.quad, err = r.dev.CreateBuffer(r.label+" quad", uint64(len(quadVertices)*4), device.BufferUsageVertex|device.BufferUsageCopyDst); err != nil {
		return err
	}
	if err = r.dev.WriteBuffer(r.quad, 0, common.SliceToBytes(quadVertices)); err != nil {
		return err
	}

	size := uint64(FrameUniformSize(cellCount))
	for i := range r.slots {
		slot := &r.slots[i]
		if slot.buf, err = r.dev.CreateBuffer(fmt.Sprintf("%s frame %d", r.label, i), size, device.BufferUsageUniform|device.BufferUsageCopyDst); err != nil {
			return err
		}
		if slot.set, err = r.dev.AllocateDescriptorSet(layout); err != nil {
			return err
		}
		bindings := []device.Binding{
			{Binding: 0, Buffer: slot.buf, Size: size},
			{Binding: 1, Sampler: r.samplerHandle},
			{Binding: 2, Images: r.images},
		}
		if err = r.dev.UpdateDescriptorSet(slot.set, bindings); err != nil {
			return err
		}
		slot.fence = 0
	}
	return nil
}

// release frees every GPU object the renderer holds, in reverse creation order.
func (r *gridRenderer) release() {
	for i := len(r.slots) - 1; i >= 0; i-- {
		slot := &r.slots[i]
		if slot.set != nil {
			slot.set.Release()
		}
		if slot.buf != nil {
			slot.buf.Release()
		}
		*slot = uniformSlot{}
	}
	if r.quad != nil {
		r.quad.Release()
		r.quad = nil
	}
	if r.samplerHandle != nil {
		r.samplerHandle.Release()
		r.samplerHandle = nil
	}
	if r.pipe != nil {
		r.pipe.Release()
		r.pipe = nil
	}
	for _, img := range r.images {
		img.Release()
	}
	r.images = nil
}

func (r *gridRenderer) Teardown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teardown()
}

func (r *gridRenderer) teardown() error {
	if r.state == StateUninitialized {
		return nil
	}
	var err error
	if last := max(r.slots[0].fence, r.slots[1].fence); last != 0 {
		if err = r.dev.WaitFence(last); err != nil {
			err = fmt.Errorf("teardown %s: %w", r.label, err)
		}
	}
	r.release()
	r.state = StateUninitialized
	slog.Debug("grid renderer torn down", "layer", r.label, "strategy", r.strategy)
	return err
}

func (r *gridRenderer) Reload(shaders ShaderSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gridLength == 0 {
		return fmt.Errorf("%w: %s was never initialized", ErrInvalidStateTransition, r.label)
	}
	return r.reload(shaders)
}

func (r *gridRenderer) ReloadShaders(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gridLength == 0 {
		return fmt.Errorf("%w: %s was never initialized", ErrInvalidStateTransition, r.label)
	}
	count := r.textures.Count()
	shaders, err := LoadShaderSet(dir, r.strategy, r.coordSource, r.gridLength, count)
	if err != nil {
		return fmt.Errorf("reload %s: %w", r.label, err)
	}
	if err := shaders.check(DescriptorLayout(r.strategy, count, r.gridLength*r.gridLength)); err != nil {
		return fmt.Errorf("reload %s: %w", r.label, err)
	}
	return r.reload(shaders)
}

func (r *gridRenderer) reload(shaders ShaderSet) error {
	teardownErr := r.teardown()
	if err := r.initialize(r.strategy, r.gridLength, shaders); err != nil {
		return errors.Join(teardownErr, err)
	}
	return teardownErr
}

func (r *gridRenderer) RenderFrame(input FrameInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateReady {
		return fmt.Errorf("%w: %s is %s", ErrInvalidStateTransition, r.label, r.state)
	}

	snap := r.grid.Snapshot()
	// the grid may allow more textures than were bound at Initialize
	snap.TextureCount = min(snap.TextureCount, uint32(r.textureCount))
	pack, _, err := r.packer.Pack(snap)
	if err != nil {
		return fmt.Errorf("render %s: %w", r.label, err)
	}
	version := snap.Version
	if !r.uploaded || version != r.uploadedVersion || input.Viewport != r.uploadedViewport {
		if err := r.upload(input.Viewport, pack, version); err != nil {
			return fmt.Errorf("render %s: %w", r.label, err)
		}
	} else {
		r.stats.SkippedEncodes++
	}

	push := BuildTransformPushConstant(input.MVP)
	front := &r.slots[r.front]
	if err := r.dev.RecordDraw(r.pipe, front.set, push, quadVertexCount, r.quad); err != nil {
		return fmt.Errorf("render %s: %w", r.label, err)
	}
	front.fence = r.dev.CurrentFrame()
	r.stats.Frames++
	return nil
}

// upload writes the frame uniform into the back slot once the GPU is done with it, then makes it
// the front slot. A slot already drawn in the frame being recorded has not been submitted, so it
// is written without waiting.
func (r *gridRenderer) upload(viewport [2]float32, pack []byte, version uint64) error {
	back := 1 - r.front
	slot := &r.slots[back]
	if slot.fence != 0 && slot.fence != r.dev.CurrentFrame() {
		if err := r.dev.WaitFence(slot.fence); err != nil {
			return err
		}
	}
	if err := r.dev.WriteBuffer(slot.buf, 0, BuildFrameUniform(viewport, pack)); err != nil {
		return err
	}
	r.front = back
	r.uploaded = true
	r.uploadedVersion = version
	r.uploadedViewport = viewport
	r.stats.Uploads++
	return nil
}

func (r *gridRenderer) ModelMatrix() [16]float32 {
	var m [16]float32
	size := r.cellSize * float32(r.grid.Width())
	common.BuildModelMatrix2D(m[:], r.position[0], r.position[1], 0, size, size)
	return m
}

func (r *gridRenderer) PickCell(world [2]float32) (x, y int, ok bool) {
	if r.coordSource == pipeline.CellCoordFragCoord {
		return 0, 0, false
	}
	return tile_grid.PickCell(world, r.position, r.cellSize, r.grid.Width())
}

func (r *gridRenderer) PickCellAt(world, screen, viewport [2]float32) (x, y int, ok bool) {
	if r.coordSource != pipeline.CellCoordFragCoord {
		return r.PickCell(world)
	}
	if _, _, ok := tile_grid.PickCell(world, r.position, r.cellSize, r.grid.Width()); !ok {
		return 0, 0, false
	}
	return tile_grid.PickFragCoord(screen, viewport, r.grid.Width())
}

func (r *gridRenderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
