package tile_grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellCoord(t *testing.T) {
	tests := []struct {
		name string
		pos  [2]float32
		cell [2]int
	}{
		{"origin", [2]float32{0, 0}, [2]int{0, 0}},
		{"upper edge", [2]float32{0.999, 0.999}, [2]int{7, 7}},
		{"center boundary", [2]float32{0.5, 0.5}, [2]int{4, 4}},
		{"mixed", [2]float32{0.1, 0.9}, [2]int{0, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell, frac := CellCoord(tt.pos, 8)
			assert.Equal(t, tt.cell, cell)
			assert.GreaterOrEqual(t, frac[0], float32(0))
			assert.Less(t, frac[0], float32(1))
			assert.GreaterOrEqual(t, frac[1], float32(0))
			assert.Less(t, frac[1], float32(1))
		})
	}
}

func TestCellCoordFraction(t *testing.T) {
	_, frac := CellCoord([2]float32{0.5625, 0.25}, 8)
	assert.InDelta(t, 0.5, frac[0], 1e-5)
	assert.InDelta(t, 0.0, frac[1], 1e-5)
}

func TestFragCoordToNormalized(t *testing.T) {
	assert.Equal(t, [2]float32{0.5, 0.25}, FragCoordToNormalized([2]float32{400, 150}, [2]float32{800, 600}))
	assert.Equal(t, [2]float32{}, FragCoordToNormalized([2]float32{1, 1}, [2]float32{0, 600}))
}

func TestPickCell(t *testing.T) {
	x, y, ok := PickCell([2]float32{2.5, 7.9}, [2]float32{0, 0}, 1, 8)
	assert.True(t, ok)
	assert.Equal(t, 2, x)
	assert.Equal(t, 7, y)

	x, y, ok = PickCell([2]float32{-3, -3}, [2]float32{-4, -4}, 2, 4)
	assert.True(t, ok)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	_, _, ok = PickCell([2]float32{8, 0}, [2]float32{0, 0}, 1, 8)
	assert.False(t, ok)
	_, _, ok = PickCell([2]float32{-0.1, 0}, [2]float32{0, 0}, 1, 8)
	assert.False(t, ok)
}

func TestPickFragCoord(t *testing.T) {
	cases := []struct {
		name string
		frag [2]float32
		x, y int
		ok   bool
	}{
		{"top left", [2]float32{0, 0}, 0, 0, true},
		{"row 0 is at the top", [2]float32{799, 10}, 3, 0, true},
		{"bottom right", [2]float32{799.9, 599.9}, 3, 3, true},
		{"cell boundary goes high", [2]float32{200, 300}, 1, 2, true},
		{"past the right edge", [2]float32{800, 10}, 0, 0, false},
		{"negative", [2]float32{-1, 10}, 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, y, ok := PickFragCoord(tc.frag, [2]float32{800, 600}, 4)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.x, x)
				assert.Equal(t, tc.y, y)
			}
		})
	}

	_, _, ok := PickFragCoord([2]float32{1, 1}, [2]float32{0, 0}, 4)
	assert.False(t, ok)
}
