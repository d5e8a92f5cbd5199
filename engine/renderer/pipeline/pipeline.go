package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/shader"
)

// ErrInvalidPipeline is returned by Validate when a pipeline description cannot be built.
var ErrInvalidPipeline = errors.New("invalid pipeline")

// TransformSize is the size in bytes of the per-draw transform: one column-major 4x4 float matrix.
const TransformSize = 64

// pipeline is the implementation of the Pipeline interface.
// It is a backend independent description of one grid render pipeline variant.
type pipeline struct {
	pipelineKey string

	strategy     BindingStrategy
	coordSource  CellCoordSource
	gridLength   int
	textureCount int

	vertexShader, fragmentShader shader.Shader

	blendEnabled     bool
	cullMode         CullMode
	topology         Topology
	frontFace        FrontFace
	pushConstantSize uint32
}

// Pipeline defines a render pipeline variant: the binding strategy and coordinate source it was
// built for, the grid size baked into its shaders, its shader pair and its raster state.
// A device turns a Pipeline into a PipelineHandle.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for labels and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Strategy returns the texture binding strategy the pipeline's shaders were built for.
	//
	// Returns:
	//   - BindingStrategy: never StrategyAuto for a valid pipeline
	Strategy() BindingStrategy

	// CellCoordSource returns where the fragment stage derives grid positions from.
	//
	// Returns:
	//   - CellCoordSource: the coordinate source
	CellCoordSource() CellCoordSource

	// GridLength returns the number of cells along each grid axis.
	//
	// Returns:
	//   - int: the grid length
	GridLength() int

	// TextureCount returns the number of textures (or atlas layers) bound to the pipeline.
	//
	// Returns:
	//   - int: the texture count
	TextureCount() int

	// Shader retrieves the shader for the given stage, nil if not set.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// BlendEnabled returns whether alpha blending is enabled.
	//
	// Returns:
	//   - bool: true if blending is enabled
	BlendEnabled() bool

	// CullMode returns the face culling mode.
	//
	// Returns:
	//   - CullMode: the cull mode
	CullMode() CullMode

	// Topology returns the primitive topology.
	//
	// Returns:
	//   - Topology: the topology
	Topology() Topology

	// FrontFace returns the front face winding order.
	//
	// Returns:
	//   - FrontFace: the winding order
	FrontFace() FrontFace

	// PushConstantSize returns the number of bytes pushed with every draw.
	//
	// Returns:
	//   - uint32: the push constant range size
	PushConstantSize() uint32

	// Validate checks that the description can be turned into a device pipeline.
	//
	// Returns:
	//   - error: ErrInvalidPipeline (wrapped) describing the first problem found
	Validate() error
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new Pipeline description.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - strategy: the binding strategy the shaders were built for
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline with the given configuration
func NewPipeline(pipelineKey string, strategy BindingStrategy, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:      pipelineKey,
		strategy:         strategy,
		coordSource:      CellCoordTexcoord,
		blendEnabled:     false,
		cullMode:         CullModeNone,
		topology:         TopologyTriangleList,
		frontFace:        FrontFaceCCW,
		pushConstantSize: TransformSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Strategy() BindingStrategy {
	return p.strategy
}

func (p *pipeline) CellCoordSource() CellCoordSource {
	return p.coordSource
}

func (p *pipeline) GridLength() int {
	return p.gridLength
}

func (p *pipeline) TextureCount() int {
	return p.textureCount
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() Topology {
	return p.topology
}

func (p *pipeline) FrontFace() FrontFace {
	return p.frontFace
}

func (p *pipeline) PushConstantSize() uint32 {
	return p.pushConstantSize
}

func (p *pipeline) Validate() error {
	switch {
	case p.strategy != StrategyDescriptorArray && p.strategy != StrategyLayeredAtlas:
		return fmt.Errorf("%w: %s: strategy %s is not a concrete variant", ErrInvalidPipeline, p.pipelineKey, p.strategy)
	case p.gridLength <= 0:
		return fmt.Errorf("%w: %s: grid length %d", ErrInvalidPipeline, p.pipelineKey, p.gridLength)
	case p.textureCount <= 0:
		return fmt.Errorf("%w: %s: texture count %d", ErrInvalidPipeline, p.pipelineKey, p.textureCount)
	case p.vertexShader == nil || p.vertexShader.ShaderType() != shader.ShaderTypeVertex:
		return fmt.Errorf("%w: %s: missing vertex shader", ErrInvalidPipeline, p.pipelineKey)
	case p.fragmentShader == nil || p.fragmentShader.ShaderType() != shader.ShaderTypeFragment:
		return fmt.Errorf("%w: %s: missing fragment shader", ErrInvalidPipeline, p.pipelineKey)
	case p.pushConstantSize < TransformSize:
		return fmt.Errorf("%w: %s: push constant range of %d bytes cannot hold the transform", ErrInvalidPipeline, p.pipelineKey, p.pushConstantSize)
	}
	return nil
}
