package grid_renderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultShaderSetArray(t *testing.T) {
	set, err := DefaultShaderSet(pipeline.StrategyDescriptorArray, pipeline.CellCoordTexcoord, 8, 3)
	require.NoError(t, err)
	require.False(t, set.IsZero())

	assert.Equal(t, "vs_main", set.Vertex.EntryPoint())
	assert.Equal(t, "fs_main", set.Fragment.EntryPoint())
	assert.Len(t, set.Vertex.VertexLayouts(), 1)

	frame, ok := set.Fragment.Binding(0, 0)
	require.True(t, ok)
	assert.Equal(t, shader.ResourceKindUniformBuffer, frame.Kind)
	assert.Equal(t, uint64(FrameUniformSize(64)), frame.MinSize)

	for i := 0; i < 3; i++ {
		b, ok := set.Fragment.Binding(0, 2+i)
		require.True(t, ok, "slot %d", i)
		assert.Equal(t, shader.ResourceKindTexture2D, b.Kind)
	}
	_, ok = set.Fragment.Binding(0, 5)
	assert.False(t, ok)

	assert.Contains(t, set.Fragment.Source(), "const GRID_LENGTH: u32 = 8u;")
	assert.Contains(t, set.Fragment.Source(), "const CELL_COORD_FRAG: u32 = 0u;")
}

func TestDefaultShaderSetAtlasFragCoord(t *testing.T) {
	set, err := DefaultShaderSet(pipeline.StrategyLayeredAtlas, pipeline.CellCoordFragCoord, 16, 40)
	require.NoError(t, err)

	b, ok := set.Fragment.Binding(0, 2)
	require.True(t, ok)
	assert.Equal(t, shader.ResourceKindTexture2DArray, b.Kind)
	assert.Contains(t, set.Fragment.Source(), "const CELL_COORD_FRAG: u32 = 1u;")
	assert.Contains(t, set.Fragment.Source(), "const PACKED_ELEMENTS: u32 = 64u;")
}

func TestDefaultShaderSetRejectsAuto(t *testing.T) {
	_, err := DefaultShaderSet(pipeline.StrategyAuto, pipeline.CellCoordTexcoord, 8, 3)
	assert.ErrorIs(t, err, ErrUnsupportedStrategy)
}

func TestLoadShaderSet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, VertexShaderFile), []byte(gridVertexSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, AtlasFragmentShaderFile), []byte(gridAtlasFragmentSource), 0o644))

	set, err := LoadShaderSet(dir, pipeline.StrategyLayeredAtlas, pipeline.CellCoordTexcoord, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, AtlasFragmentShaderFile), set.Fragment.Path())

	_, err = LoadShaderSet(dir, pipeline.StrategyDescriptorArray, pipeline.CellCoordTexcoord, 4, 2)
	assert.Error(t, err)
}
