package tile_grid

import "github.com/chewxy/math32"

// CellCoord derives the cell a normalized grid position falls in, and the position within that cell.
// Positions on a cell boundary belong to the cell on their high side, matching the shader's floor.
//
// Parameters:
//   - pos: the position in [0, 1) across the whole grid
//   - gridLength: the number of cells along each axis
//
// Returns:
//   - [2]int: the cell coordinate floor(pos * gridLength)
//   - [2]float32: the fractional position inside the cell, used as the texture sample coordinate
func CellCoord(pos [2]float32, gridLength int) ([2]int, [2]float32) {
	n := float32(gridLength)
	u, v := pos[0]*n, pos[1]*n
	fu, fv := math32.Floor(u), math32.Floor(v)
	return [2]int{int(fu), int(fv)}, [2]float32{u - fu, v - fv}
}

// FragCoordToNormalized converts a fragment position in pixels to a normalized grid position.
func FragCoordToNormalized(fragCoord, viewport [2]float32) [2]float32 {
	if viewport[0] <= 0 || viewport[1] <= 0 {
		return [2]float32{}
	}
	return [2]float32{fragCoord[0] / viewport[0], fragCoord[1] / viewport[1]}
}

// PickCell maps a world position to the grid cell beneath it.
// The grid covers [origin, origin + cellSize*gridLength) on both axes with row 0 at origin.
//
// Parameters:
//   - world: the world position, usually from a camera's screen-to-world conversion
//   - origin: the world position of the grid's first corner
//   - cellSize: the world size of one cell
//   - gridLength: the number of cells along each axis
//
// Returns:
//   - x, y: the cell coordinate
//   - ok: false if the position is outside the grid
func PickCell(world, origin [2]float32, cellSize float32, gridLength int) (x, y int, ok bool) {
	if cellSize <= 0 || gridLength <= 0 {
		return 0, 0, false
	}
	extent := cellSize * float32(gridLength)
	pos := [2]float32{(world[0] - origin[0]) / extent, (world[1] - origin[1]) / extent}
	if pos[0] < 0 || pos[1] < 0 || pos[0] >= 1 || pos[1] >= 1 {
		return 0, 0, false
	}
	cell, _ := CellCoord(pos, gridLength)
	// float rounding can push a position just under 1 onto gridLength
	x, y = min(cell[0], gridLength-1), min(cell[1], gridLength-1)
	return x, y, true
}

// PickFragCoord maps a pixel position to the cell a screen-space grid draws there. The grid spans
// the whole viewport with row 0 at the top, matching frag_coord.
//
// Parameters:
//   - fragCoord: the position in pixels from the top left corner
//   - viewport: the framebuffer size in pixels
//   - gridLength: the number of cells along each axis
//
// Returns:
//   - x, y: the cell coordinate
//   - ok: false if the position is outside the viewport
func PickFragCoord(fragCoord, viewport [2]float32, gridLength int) (x, y int, ok bool) {
	if gridLength <= 0 || viewport[0] <= 0 || viewport[1] <= 0 {
		return 0, 0, false
	}
	pos := FragCoordToNormalized(fragCoord, viewport)
	if pos[0] < 0 || pos[1] < 0 || pos[0] >= 1 || pos[1] >= 1 {
		return 0, 0, false
	}
	cell, _ := CellCoord(pos, gridLength)
	return min(cell[0], gridLength-1), min(cell[1], gridLength-1), true
}
