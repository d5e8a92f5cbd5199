package grid_renderer

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-grid/engine/tile_grid"
)

// GPUFrameUniformSource is the canonical WGSL definition of the FrameUniform struct.
// The array length is the PACKED_ELEMENTS define. Matches GPUFrameUniform.Marshal exactly.
//
//go:embed assets/frame_uniform.wgsl
var GPUFrameUniformSource string

// GPUTransformSource is the canonical WGSL definition of the Transform struct (64 bytes).
//
//go:embed assets/transform.wgsl
var GPUTransformSource string

// gridLookupSource holds the shared cell derivation and packed index lookup used by every
// fragment variant.
//
//go:embed assets/grid_lookup.wgsl
var gridLookupSource string

//go:embed assets/grid.vert.wgsl
var gridVertexSource string

//go:embed assets/grid_array.frag.wgsl
var gridArrayFragmentSource string

//go:embed assets/grid_atlas.frag.wgsl
var gridAtlasFragmentSource string

// viewportBlockSize is the space the viewport takes after the index pack: a vec2<f32> padded to
// the struct's 16 byte alignment.
const viewportBlockSize = 16

// GPUFrameUniform is the host representation of the FrameUniform block.
// Layout: the index pack (PackedSize bytes) first, then the viewport vec2<f32>, then 8 bytes of padding.
type GPUFrameUniform struct {
	IndexPack []byte
	Viewport  [2]float32
}

// FrameUniformSize returns the byte size of the frame uniform for a grid with cellCount cells.
func FrameUniformSize(cellCount int) int {
	return tile_grid.PackedSize(cellCount) + viewportBlockSize
}

// Size returns the size of the marshaled uniform in bytes.
//
// Returns:
//   - int: len(IndexPack) + 16
func (g *GPUFrameUniform) Size() int {
	return len(g.IndexPack) + viewportBlockSize
}

// Marshal serializes the uniform into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFrameUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.MarshalInto(buf)
	return buf
}

// MarshalInto serializes the uniform into buf, which must be at least Size bytes.
func (g *GPUFrameUniform) MarshalInto(buf []byte) {
	n := copy(buf, g.IndexPack)
	binary.LittleEndian.PutUint32(buf[n:], math.Float32bits(g.Viewport[0]))
	binary.LittleEndian.PutUint32(buf[n+4:], math.Float32bits(g.Viewport[1]))
	clear(buf[n+8 : n+viewportBlockSize])
}

// BuildFrameUniform builds the frame uniform block bytes for one upload.
//
// Parameters:
//   - viewport: the framebuffer size in pixels
//   - pack: the encoded index pack
//
// Returns:
//   - []byte: the uniform block, index pack first and viewport last
func BuildFrameUniform(viewport [2]float32, pack []byte) []byte {
	u := GPUFrameUniform{IndexPack: pack, Viewport: viewport}
	return u.Marshal()
}

// GPUTransform is the per-draw transform pushed with every draw.
// Size: 64 bytes, one column-major mat4x4<f32>.
type GPUTransform struct {
	MVP [16]float32
}

// Size returns the size of the GPUTransform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUTransform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the transform into a byte buffer.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUTransform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.MVP[i]))
	}
	return buf
}

// BuildTransformPushConstant builds the push constant bytes for one draw.
func BuildTransformPushConstant(mvp [16]float32) []byte {
	t := GPUTransform{MVP: mvp}
	return t.Marshal()
}
