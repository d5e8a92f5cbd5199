package tile_grid

import "fmt"

// GridBuilderOption is a functional option applied to a grid during construction via NewGrid.
// Options may fail; NewGrid returns the first error.
type GridBuilderOption func(*grid) error

// WithTextureCount sets the number of textures cells may reference.
//
// Parameters:
//   - count: the texture count, must be > 0
//
// Returns:
//   - GridBuilderOption: a function that applies the texture count to a grid
func WithTextureCount(count uint32) GridBuilderOption {
	return func(g *grid) error {
		if count == 0 {
			return fmt.Errorf("%w: texture count must be at least 1", ErrIndexOutOfRange)
		}
		g.textureCount = count
		return nil
	}
}

// WithIndices sets the initial cell contents. The slice is copied.
// Validation against the texture count happens after all options are applied.
//
// Parameters:
//   - indices: width*height texture indices in row-major order
//
// Returns:
//   - GridBuilderOption: a function that applies the initial indices to a grid
func WithIndices(indices []uint32) GridBuilderOption {
	return func(g *grid) error {
		if len(indices) != g.width*g.height {
			return fmt.Errorf("%w: got %d indices for a %dx%d grid", ErrGridSizeMismatch, len(indices), g.width, g.height)
		}
		copy(g.indices, indices)
		return nil
	}
}
