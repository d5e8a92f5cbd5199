package tile_grid

import (
	"fmt"
	"slices"
	"sync"
)

// grid is the implementation of the Grid interface.
type grid struct {
	mu *sync.RWMutex

	width, height int
	textureCount  uint32
	indices       []uint32
	version       uint64
}

// Snapshot is a copy-on-read view of a Grid at a specific version.
// The renderer only ever reads snapshots, never the live grid.
type Snapshot struct {
	// Indices holds Width*Height texture indices in row-major order.
	Indices []uint32
	// Width is the grid width in cells.
	Width int
	// Height is the grid height in cells.
	Height int
	// TextureCount is the number of valid texture indices, [0, TextureCount).
	TextureCount uint32
	// Version increases every time the grid contents change.
	Version uint64
}

// Grid defines a fixed-size 2D array of cells, each holding the index of the texture drawn in that cell.
// Grids are written by simulation logic and read by renderers through Snapshot.
type Grid interface {
	// Width returns the grid width in cells.
	//
	// Returns:
	//   - int: the number of columns
	Width() int

	// Height returns the grid height in cells.
	//
	// Returns:
	//   - int: the number of rows
	Height() int

	// CellCount returns width*height.
	//
	// Returns:
	//   - int: the total number of cells
	CellCount() int

	// TextureCount returns the number of textures a cell may reference.
	//
	// Returns:
	//   - uint32: the exclusive upper bound for cell texture indices
	TextureCount() uint32

	// SetTextureCount changes the texture count. Fails with ErrIndexOutOfRange if any
	// existing cell would reference a texture past the new count.
	//
	// Parameters:
	//   - count: the new texture count
	//
	// Returns:
	//   - error: ErrIndexOutOfRange (wrapped) if a cell is no longer valid
	SetTextureCount(count uint32) error

	// Cell returns the texture index of the cell at (x, y).
	//
	// Parameters:
	//   - x, y: the cell coordinate
	//
	// Returns:
	//   - uint32: the texture index
	//   - error: ErrCellOutOfBounds (wrapped) if the coordinate is outside the grid
	Cell(x, y int) (uint32, error)

	// SetCell sets the texture index of the cell at (x, y).
	//
	// Parameters:
	//   - x, y: the cell coordinate
	//   - index: the texture index, must be < TextureCount
	//
	// Returns:
	//   - error: ErrCellOutOfBounds or ErrIndexOutOfRange (wrapped)
	SetCell(x, y int, index uint32) error

	// SetCells replaces every cell. The update is all or nothing.
	//
	// Parameters:
	//   - indices: width*height texture indices in row-major order
	//
	// Returns:
	//   - error: ErrGridSizeMismatch or ErrIndexOutOfRange (wrapped)
	SetCells(indices []uint32) error

	// Fill sets every cell to the same texture index.
	//
	// Parameters:
	//   - index: the texture index, must be < TextureCount
	//
	// Returns:
	//   - error: ErrIndexOutOfRange (wrapped)
	Fill(index uint32) error

	// Version returns the current content version. It only changes when a write alters a cell.
	//
	// Returns:
	//   - uint64: the version counter
	Version() uint64

	// Snapshot returns a copy of the grid contents tagged with the current version.
	//
	// Returns:
	//   - Snapshot: the copied state
	Snapshot() Snapshot
}

var _ Grid = &grid{}

// NewGrid creates a new Grid of width x height cells, all referencing texture 0.
// The texture count defaults to 1 so that the zero-filled grid is valid.
//
// Parameters:
//   - width: the number of columns, must be > 0
//   - height: the number of rows, must be > 0
//   - options: functional options to configure the grid
//
// Returns:
//   - Grid: the new grid
//   - error: ErrGridSizeMismatch or ErrIndexOutOfRange if the options describe an invalid grid
func NewGrid(width, height int, options ...GridBuilderOption) (Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d is not a valid grid size", ErrGridSizeMismatch, width, height)
	}
	g := &grid{
		mu:           &sync.RWMutex{},
		width:        width,
		height:       height,
		textureCount: 1,
		indices:      make([]uint32, width*height),
	}
	for _, opt := range options {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if err := validate(g.indices, g.width, g.height, g.textureCount); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *grid) Width() int {
	return g.width
}

func (g *grid) Height() int {
	return g.height
}

func (g *grid) CellCount() int {
	return g.width * g.height
}

func (g *grid) TextureCount() uint32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.textureCount
}

func (g *grid) SetTextureCount(count uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := validate(g.indices, g.width, g.height, count); err != nil {
		return err
	}
	if count != g.textureCount {
		g.textureCount = count
		g.version++
	}
	return nil
}

func (g *grid) Cell(x, y int) (uint32, error) {
	if err := g.checkBounds(x, y); err != nil {
		return 0, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.indices[CellIndex(x, y, g.width)], nil
}

func (g *grid) SetCell(x, y int, index uint32) error {
	if err := g.checkBounds(x, y); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if index >= g.textureCount {
		return fmt.Errorf("%w: cell (%d, %d) set to texture %d, texture count is %d", ErrIndexOutOfRange, x, y, index, g.textureCount)
	}
	i := CellIndex(x, y, g.width)
	if g.indices[i] == index {
		return nil
	}
	g.indices[i] = index
	g.version++
	return nil
}

func (g *grid) SetCells(indices []uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := validate(indices, g.width, g.height, g.textureCount); err != nil {
		return err
	}
	if slices.Equal(g.indices, indices) {
		return nil
	}
	copy(g.indices, indices)
	g.version++
	return nil
}

func (g *grid) Fill(index uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if index >= g.textureCount {
		return fmt.Errorf("%w: fill with texture %d, texture count is %d", ErrIndexOutOfRange, index, g.textureCount)
	}
	changed := false
	for i := range g.indices {
		if g.indices[i] != index {
			g.indices[i] = index
			changed = true
		}
	}
	if changed {
		g.version++
	}
	return nil
}

func (g *grid) Version() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.version
}

func (g *grid) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Snapshot{
		Indices:      slices.Clone(g.indices),
		Width:        g.width,
		Height:       g.height,
		TextureCount: g.textureCount,
		Version:      g.version,
	}
}

func (g *grid) checkBounds(x, y int) error {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return fmt.Errorf("%w: (%d, %d) in a %dx%d grid", ErrCellOutOfBounds, x, y, g.width, g.height)
	}
	return nil
}
