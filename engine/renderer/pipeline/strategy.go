package pipeline

import "fmt"

// BindingStrategy selects how a grid's textures are bound to the fragment stage.
type BindingStrategy int

const (
	// StrategyAuto picks the best strategy the device supports.
	StrategyAuto BindingStrategy = iota

	// StrategyDescriptorArray (variant A) binds every texture as its own element of a texture array
	// and selects the element per fragment from the cell's texture index.
	StrategyDescriptorArray

	// StrategyLayeredAtlas (variant B) binds one layered texture and selects the layer per fragment.
	StrategyLayeredAtlas
)

// String returns a short name for the strategy, used in logs and pipeline keys.
func (s BindingStrategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyDescriptorArray:
		return "descriptor_array"
	case StrategyLayeredAtlas:
		return "layered_atlas"
	default:
		return fmt.Sprintf("BindingStrategy(%d)", int(s))
	}
}

// CellCoordSource selects where the fragment stage derives its grid position from.
type CellCoordSource int

const (
	// CellCoordTexcoord uses the interpolated texture coordinate of the grid quad.
	CellCoordTexcoord CellCoordSource = iota

	// CellCoordFragCoord uses the fragment's pixel position divided by the viewport size.
	CellCoordFragCoord
)

// String returns a short name for the coordinate source.
func (c CellCoordSource) String() string {
	switch c {
	case CellCoordTexcoord:
		return "texcoord"
	case CellCoordFragCoord:
		return "fragcoord"
	default:
		return fmt.Sprintf("CellCoordSource(%d)", int(c))
	}
}

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// Topology selects how vertices are assembled into primitives.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
)

// FrontFace selects the winding order of front-facing triangles.
type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)
