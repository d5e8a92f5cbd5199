package pipeline

import "github.com/Carmen-Shannon/oxy-grid/engine/renderer/shader"

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex shader for this pipeline.
//
// Parameters:
//   - s: the vertex shader to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex shader for this pipeline
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader sets the fragment shader for this pipeline.
//
// Parameters:
//   - s: the fragment shader to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment shader for this pipeline
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithCellCoordSource sets where the fragment stage derives grid positions from.
func WithCellCoordSource(c CellCoordSource) PipelineBuilderOption {
	return func(p *pipeline) {
		p.coordSource = c
	}
}

// WithGridLength sets the number of cells along each grid axis.
func WithGridLength(n int) PipelineBuilderOption {
	return func(p *pipeline) {
		p.gridLength = n
	}
}

// WithTextureCount sets the number of textures or atlas layers bound to the pipeline.
func WithTextureCount(n int) PipelineBuilderOption {
	return func(p *pipeline) {
		p.textureCount = n
	}
}

// WithBlendEnabled sets whether standard alpha blending is enabled.
//
// Parameters:
//   - enabled: true to blend source over destination using source alpha
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state for this pipeline
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithCullMode sets the face culling mode.
func WithCullMode(mode CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology.
func WithTopology(t Topology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = t
	}
}

// WithFrontFace sets the front face winding order.
func WithFrontFace(f FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = f
	}
}

// WithPushConstantSize sets the number of bytes pushed with each draw. Must be at least TransformSize.
func WithPushConstantSize(size uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.pushConstantSize = size
	}
}
