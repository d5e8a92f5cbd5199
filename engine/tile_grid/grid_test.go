package tile_grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(8, 8, WithTextureCount(4))
	require.NoError(t, err)
	assert.Equal(t, 64, g.CellCount())
	assert.Equal(t, uint32(4), g.TextureCount())
	assert.Equal(t, uint64(0), g.Version())

	_, err = NewGrid(0, 8)
	assert.ErrorIs(t, err, ErrGridSizeMismatch)

	_, err = NewGrid(2, 2, WithIndices([]uint32{0, 1, 2, 3}))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = NewGrid(2, 2, WithIndices([]uint32{0, 1}))
	assert.ErrorIs(t, err, ErrGridSizeMismatch)

	_, err = NewGrid(2, 2, WithTextureCount(0))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestGridSetCellBumpsVersionOnChange(t *testing.T) {
	g, err := NewGrid(4, 4, WithTextureCount(3))
	require.NoError(t, err)

	require.NoError(t, g.SetCell(1, 2, 2))
	assert.Equal(t, uint64(1), g.Version())

	// same value, no change
	require.NoError(t, g.SetCell(1, 2, 2))
	assert.Equal(t, uint64(1), g.Version())

	idx, err := g.Cell(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), idx)

	assert.ErrorIs(t, g.SetCell(4, 0, 1), ErrCellOutOfBounds)
	assert.ErrorIs(t, g.SetCell(0, 0, 3), ErrIndexOutOfRange)
	assert.Equal(t, uint64(1), g.Version())
}

func TestGridSetCellsIsAllOrNothing(t *testing.T) {
	g, err := NewGrid(2, 2, WithTextureCount(4))
	require.NoError(t, err)

	require.ErrorIs(t, g.SetCells([]uint32{1, 1, 1, 7}), ErrIndexOutOfRange)
	assert.Equal(t, []uint32{0, 0, 0, 0}, g.Snapshot().Indices)

	require.NoError(t, g.SetCells([]uint32{0, 1, 2, 3}))
	assert.Equal(t, uint64(1), g.Version())
	require.NoError(t, g.SetCells([]uint32{0, 1, 2, 3}))
	assert.Equal(t, uint64(1), g.Version())
}

func TestGridFillAndTextureCount(t *testing.T) {
	g, err := NewGrid(3, 3, WithTextureCount(5))
	require.NoError(t, err)

	require.NoError(t, g.Fill(4))
	assert.ErrorIs(t, g.SetTextureCount(4), ErrIndexOutOfRange)
	assert.Equal(t, uint32(5), g.TextureCount())

	require.NoError(t, g.Fill(1))
	require.NoError(t, g.SetTextureCount(2))
	assert.Equal(t, uint32(2), g.TextureCount())
}

func TestSnapshotIsACopy(t *testing.T) {
	g, err := NewGrid(2, 2, WithTextureCount(2))
	require.NoError(t, err)

	s := g.Snapshot()
	s.Indices[0] = 1
	idx, err := g.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)
}

func TestIndexPackerCachesByVersion(t *testing.T) {
	g, err := NewGrid(2, 2, WithTextureCount(4))
	require.NoError(t, err)
	p := NewIndexPacker()

	pack, changed, err := p.Pack(g.Snapshot())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, pack, 16)

	_, changed, err = p.Pack(g.Snapshot())
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, g.SetCell(1, 1, 3))
	pack, changed, err = p.Pack(g.Snapshot())
	require.NoError(t, err)
	assert.True(t, changed)
	idx, err := Resolve(pack, 2, 2, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), idx)

	p.Invalidate()
	_, changed, err = p.Pack(g.Snapshot())
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestIndexPackerErrorKeepsCache(t *testing.T) {
	p := NewIndexPacker()
	good := Snapshot{Indices: []uint32{1, 2, 3, 0}, Width: 2, Height: 2, TextureCount: 4, Version: 1}
	_, _, err := p.Pack(good)
	require.NoError(t, err)

	bad := Snapshot{Indices: []uint32{1, 2, 3, 9}, Width: 2, Height: 2, TextureCount: 4, Version: 2}
	_, _, err = p.Pack(bad)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	pack, changed, err := p.Pack(good)
	require.NoError(t, err)
	assert.False(t, changed)
	decoded, err := Decode(pack, 4)
	require.NoError(t, err)
	assert.Equal(t, good.Indices, decoded)
}
