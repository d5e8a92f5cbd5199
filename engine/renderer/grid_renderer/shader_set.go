package grid_renderer

import (
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-grid/engine/tile_grid"
)

// File names of the grid shaders, both in the embedded assets and in a hot reload directory.
const (
	VertexShaderFile        = "grid.vert.wgsl"
	ArrayFragmentShaderFile = "grid_array.frag.wgsl"
	AtlasFragmentShaderFile = "grid_atlas.frag.wgsl"
)

// ShaderSet is the vertex and fragment shader pair a grid pipeline is built from.
// The zero ShaderSet selects the embedded shaders.
type ShaderSet struct {
	Vertex   shader.Shader
	Fragment shader.Shader
}

// IsZero reports whether neither shader is set.
func (s ShaderSet) IsZero() bool {
	return s.Vertex == nil && s.Fragment == nil
}

// check compiles both shaders and matches their bindings against layout at group 0, the checks a
// device runs when creating the pipeline.
func (s ShaderSet) check(layout device.DescriptorLayout) error {
	for _, sh := range []shader.Shader{s.Vertex, s.Fragment} {
		if err := device.CheckShaderBindings(layout, 0, sh); err != nil {
			return err
		}
		if err := shader.Validate(sh); err != nil {
			return err
		}
	}
	return nil
}

// Includes returns the WGSL fragments the grid shaders pull in with @oxy:include.
func Includes() map[string]string {
	return map[string]string{
		"frame_uniform": GPUFrameUniformSource,
		"transform":     GPUTransformSource,
		"grid_lookup":   gridLookupSource,
	}
}

// Defines returns the constant values the grid shaders are specialized with.
//
// Parameters:
//   - coordSource: where the fragment stage derives grid positions from
//   - gridLength: the number of cells along each axis
//   - textureCount: the number of textures or atlas layers
//
// Returns:
//   - map[string]uint32: define name to value
func Defines(coordSource pipeline.CellCoordSource, gridLength, textureCount int) map[string]uint32 {
	frag := uint32(0)
	if coordSource == pipeline.CellCoordFragCoord {
		frag = 1
	}
	return map[string]uint32{
		shader.DefineGridLength:     uint32(gridLength),
		shader.DefineTextureCount:   uint32(textureCount),
		shader.DefinePackedElements: uint32(tile_grid.PackedElementCount(gridLength * gridLength)),
		shader.DefineCellCoordFrag:  frag,
	}
}

func fragmentFile(strategy pipeline.BindingStrategy) (string, string, error) {
	switch strategy {
	case pipeline.StrategyDescriptorArray:
		return ArrayFragmentShaderFile, gridArrayFragmentSource, nil
	case pipeline.StrategyLayeredAtlas:
		return AtlasFragmentShaderFile, gridAtlasFragmentSource, nil
	default:
		return "", "", fmt.Errorf("%w: no fragment shader for %s", ErrUnsupportedStrategy, strategy)
	}
}

// DefaultShaderSet builds the embedded grid shaders for a strategy.
//
// Parameters:
//   - strategy: a concrete binding strategy
//   - coordSource: where the fragment stage derives grid positions from
//   - gridLength: the number of cells along each axis
//   - textureCount: the number of textures or atlas layers
//
// Returns:
//   - ShaderSet: the processed shader pair
//   - error: ErrUnsupportedStrategy or shader.ErrCompileFailure (wrapped)
func DefaultShaderSet(strategy pipeline.BindingStrategy, coordSource pipeline.CellCoordSource, gridLength, textureCount int) (ShaderSet, error) {
	fragName, fragSource, err := fragmentFile(strategy)
	if err != nil {
		return ShaderSet{}, err
	}
	opts := []shader.ShaderBuilderOption{
		shader.WithIncludes(Includes()),
		shader.WithDefines(Defines(coordSource, gridLength, textureCount)),
	}
	vs, err := shader.NewShaderFromSource(VertexShaderFile, shader.ShaderTypeVertex, gridVertexSource, opts...)
	if err != nil {
		return ShaderSet{}, err
	}
	fs, err := shader.NewShaderFromSource(fragName, shader.ShaderTypeFragment, fragSource, opts...)
	if err != nil {
		return ShaderSet{}, err
	}
	return ShaderSet{Vertex: vs, Fragment: fs}, nil
}

// LoadShaderSet loads the grid shaders for a strategy from a directory, used by shader hot reload.
// The directory holds files named like the embedded assets.
//
// Parameters:
//   - dir: the shader directory
//   - strategy: a concrete binding strategy
//   - coordSource: where the fragment stage derives grid positions from
//   - gridLength: the number of cells along each axis
//   - textureCount: the number of textures or atlas layers
//
// Returns:
//   - ShaderSet: the processed shader pair
//   - error: a read error, ErrUnsupportedStrategy or shader.ErrCompileFailure (wrapped)
func LoadShaderSet(dir string, strategy pipeline.BindingStrategy, coordSource pipeline.CellCoordSource, gridLength, textureCount int) (ShaderSet, error) {
	fragName, _, err := fragmentFile(strategy)
	if err != nil {
		return ShaderSet{}, err
	}
	opts := []shader.ShaderBuilderOption{
		shader.WithIncludes(Includes()),
		shader.WithDefines(Defines(coordSource, gridLength, textureCount)),
	}
	vs, err := shader.NewShader(VertexShaderFile, shader.ShaderTypeVertex, filepath.Join(dir, VertexShaderFile), opts...)
	if err != nil {
		return ShaderSet{}, err
	}
	fs, err := shader.NewShader(fragName, shader.ShaderTypeFragment, filepath.Join(dir, fragName), opts...)
	if err != nil {
		return ShaderSet{}, err
	}
	return ShaderSet{Vertex: vs, Fragment: fs}, nil
}
