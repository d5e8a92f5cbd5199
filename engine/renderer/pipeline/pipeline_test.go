package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShaders(t *testing.T) (shader.Shader, shader.Shader) {
	t.Helper()
	vs, err := shader.NewShaderFromSource("vs", shader.ShaderTypeVertex, "@vertex\nfn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }")
	require.NoError(t, err)
	fs, err := shader.NewShaderFromSource("fs", shader.ShaderTypeFragment, "@fragment\nfn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(); }")
	require.NoError(t, err)
	return vs, fs
}

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("grid", StrategyLayeredAtlas)
	assert.Equal(t, "grid", p.PipelineKey())
	assert.Equal(t, CellCoordTexcoord, p.CellCoordSource())
	assert.Equal(t, CullModeNone, p.CullMode())
	assert.Equal(t, TopologyTriangleList, p.Topology())
	assert.Equal(t, FrontFaceCCW, p.FrontFace())
	assert.Equal(t, uint32(TransformSize), p.PushConstantSize())
	assert.False(t, p.BlendEnabled())
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))
}

func TestPipelineValidate(t *testing.T) {
	vs, fs := testShaders(t)
	base := []PipelineBuilderOption{
		WithVertexShader(vs),
		WithFragmentShader(fs),
		WithGridLength(8),
		WithTextureCount(4),
	}

	require.NoError(t, NewPipeline("ok", StrategyDescriptorArray, base...).Validate())

	tests := []struct {
		name     string
		strategy BindingStrategy
		opts     []PipelineBuilderOption
	}{
		{"auto strategy", StrategyAuto, nil},
		{"no grid length", StrategyLayeredAtlas, []PipelineBuilderOption{WithGridLength(0)}},
		{"no textures", StrategyLayeredAtlas, []PipelineBuilderOption{WithTextureCount(0)}},
		{"swapped shaders", StrategyLayeredAtlas, []PipelineBuilderOption{WithVertexShader(fs)}},
		{"missing fragment", StrategyLayeredAtlas, []PipelineBuilderOption{WithFragmentShader(nil)}},
		{"small push range", StrategyLayeredAtlas, []PipelineBuilderOption{WithPushConstantSize(16)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append(append([]PipelineBuilderOption{}, base...), tt.opts...)
			assert.ErrorIs(t, NewPipeline(tt.name, tt.strategy, opts...).Validate(), ErrInvalidPipeline)
		})
	}
}

func TestStrategyNames(t *testing.T) {
	assert.Equal(t, "descriptor_array", StrategyDescriptorArray.String())
	assert.Equal(t, "layered_atlas", StrategyLayeredAtlas.String())
	assert.Equal(t, "fragcoord", CellCoordFragCoord.String())
}
