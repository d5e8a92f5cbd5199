// Package tile_grid holds the CPU-side model of a tile grid: the cell texture indices,
// the packed uniform layout those indices are uploaded in, and the cell coordinate math
// shared with the fragment shaders.
//
// Uniform buffers give every array element a 16-byte stride, so a tightly packed
// array<u32> cannot be bound. Four consecutive cell indices are instead packed into one
// vec4<u32> element; the shader reads lane (cell % 4) of element (cell / 4).
package tile_grid

import (
	"encoding/binary"
	"fmt"
)

const (
	// LaneSize is the size in bytes of a single packed cell index.
	LaneSize = 4

	// LanesPerElement is the number of cell indices packed into one uniform array element.
	LanesPerElement = 4

	// PackedElementSize is the stride in bytes of one uniform array element (vec4<u32>).
	PackedElementSize = LaneSize * LanesPerElement
)

// PackedElementCount returns the number of vec4<u32> elements needed to hold cellCount indices.
//
// Parameters:
//   - cellCount: the number of logical cells
//
// Returns:
//   - int: ceil(cellCount / 4)
func PackedElementCount(cellCount int) int {
	if cellCount <= 0 {
		return 0
	}
	return (cellCount + LanesPerElement - 1) / LanesPerElement
}

// PackedSize returns the byte length of an index pack holding cellCount indices.
//
// Parameters:
//   - cellCount: the number of logical cells
//
// Returns:
//   - int: ceil(cellCount / 4) * 16
func PackedSize(cellCount int) int {
	return PackedElementCount(cellCount) * PackedElementSize
}

// PackedLocation maps a row-major cell index to its packed element and lane.
//
// Parameters:
//   - cellIndex: the row-major index of the cell
//
// Returns:
//   - element: the vec4<u32> element holding the cell
//   - lane: the component (0..3) within the element
func PackedLocation(cellIndex int) (element, lane int) {
	return cellIndex / LanesPerElement, cellIndex % LanesPerElement
}

// CellIndex returns the row-major index of the cell at (x, y) in a grid of the given width.
// Every shader variant uses this same mapping.
func CellIndex(x, y, width int) int {
	return y*width + x
}

// Encode packs a row-major sequence of cell texture indices into the uniform index pack layout.
// All indices are validated before anything is written, so a failed call produces no output.
//
// Parameters:
//   - indices: width*height texture indices in row-major order
//   - width: the grid width in cells
//   - height: the grid height in cells
//   - textureCount: the number of textures in the pool or layers in the atlas
//
// Returns:
//   - []byte: the packed buffer of PackedSize(width*height) bytes
//   - error: ErrGridSizeMismatch or ErrIndexOutOfRange (wrapped) on invalid input
func Encode(indices []uint32, width, height int, textureCount uint32) ([]byte, error) {
	if err := validate(indices, width, height, textureCount); err != nil {
		return nil, err
	}
	out := make([]byte, PackedSize(len(indices)))
	writePack(out, indices)
	return out, nil
}

// EncodeInto packs indices into dst, which must be at least PackedSize(width*height) bytes.
// Bytes of dst past the packed size are left untouched. On error dst is not modified.
//
// Parameters:
//   - dst: the destination buffer
//   - indices: width*height texture indices in row-major order
//   - width: the grid width in cells
//   - height: the grid height in cells
//   - textureCount: the number of textures in the pool or layers in the atlas
//
// Returns:
//   - int: the number of bytes written
//   - error: ErrGridSizeMismatch or ErrIndexOutOfRange (wrapped) on invalid input
func EncodeInto(dst []byte, indices []uint32, width, height int, textureCount uint32) (int, error) {
	if err := validate(indices, width, height, textureCount); err != nil {
		return 0, err
	}
	size := PackedSize(len(indices))
	if len(dst) < size {
		return 0, fmt.Errorf("%w: destination holds %d bytes, pack needs %d", ErrGridSizeMismatch, len(dst), size)
	}
	writePack(dst[:size], indices)
	return size, nil
}

// Decode unpacks cellCount indices from an index pack. It is the exact inverse of Encode.
//
// Parameters:
//   - pack: the packed buffer
//   - cellCount: the number of cells encoded in the pack
//
// Returns:
//   - []uint32: the row-major cell indices
//   - error: ErrGridSizeMismatch (wrapped) if the pack is too small
func Decode(pack []byte, cellCount int) ([]uint32, error) {
	if cellCount < 0 || len(pack) < PackedSize(cellCount) {
		return nil, fmt.Errorf("%w: pack of %d bytes cannot hold %d cells", ErrGridSizeMismatch, len(pack), cellCount)
	}
	out := make([]uint32, cellCount)
	for i := range out {
		element, lane := PackedLocation(i)
		out[i] = binary.LittleEndian.Uint32(pack[element*PackedElementSize+lane*LaneSize:])
	}
	return out, nil
}

// Resolve reads the texture index of cell (x, y) directly from an index pack, the same
// way the fragment stage does.
//
// Parameters:
//   - pack: the packed buffer
//   - width, height: the grid size in cells
//   - x, y: the cell coordinate
//
// Returns:
//   - uint32: the texture index stored for the cell
//   - error: ErrCellOutOfBounds or ErrGridSizeMismatch (wrapped) if the cell is not in the pack
func Resolve(pack []byte, width, height, x, y int) (uint32, error) {
	if x < 0 || y < 0 || x >= width || y >= height {
		return 0, fmt.Errorf("%w: (%d, %d) in a %dx%d grid", ErrCellOutOfBounds, x, y, width, height)
	}
	element, lane := PackedLocation(CellIndex(x, y, width))
	offset := element*PackedElementSize + lane*LaneSize
	if offset+LaneSize > len(pack) {
		return 0, fmt.Errorf("%w: cell (%d, %d) lies past the end of a %d byte pack", ErrGridSizeMismatch, x, y, len(pack))
	}
	return binary.LittleEndian.Uint32(pack[offset:]), nil
}

func validate(indices []uint32, width, height int, textureCount uint32) error {
	if width <= 0 || height <= 0 || len(indices) != width*height {
		return fmt.Errorf("%w: got %d indices for a %dx%d grid", ErrGridSizeMismatch, len(indices), width, height)
	}
	for i, idx := range indices {
		if idx >= textureCount {
			return fmt.Errorf("%w: cell %d references texture %d, texture count is %d", ErrIndexOutOfRange, i, idx, textureCount)
		}
	}
	return nil
}

// writePack assumes dst is exactly PackedSize(len(indices)) bytes.
func writePack(dst []byte, indices []uint32) {
	for i, idx := range indices {
		element, lane := PackedLocation(i)
		binary.LittleEndian.PutUint32(dst[element*PackedElementSize+lane*LaneSize:], idx)
	}
	// zero-fill unused lanes of the last element
	for i := len(indices); i < PackedElementCount(len(indices))*LanesPerElement; i++ {
		element, lane := PackedLocation(i)
		binary.LittleEndian.PutUint32(dst[element*PackedElementSize+lane*LaneSize:], 0)
	}
}
