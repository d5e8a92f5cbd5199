package tile_grid

import "errors"

var (
	// ErrGridSizeMismatch is returned when a cell index sequence does not hold exactly width*height entries,
	// or when a packed buffer is too small for the cell count it claims to describe.
	ErrGridSizeMismatch = errors.New("grid size mismatch")

	// ErrIndexOutOfRange is returned when a cell references a texture index >= the texture count.
	// Indices are never clamped or wrapped.
	ErrIndexOutOfRange = errors.New("texture index out of range")

	// ErrCellOutOfBounds is returned when a cell coordinate lies outside the grid.
	ErrCellOutOfBounds = errors.New("cell coordinate out of bounds")
)
