package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrthographicMapsBoundsToClipSpace(t *testing.T) {
	m := make([]float32, 16)
	Orthographic(m, -4, 4, -2, 2, 0.01, 1000)

	lowLeftNear := MulVec4(m, [4]float32{-4, -2, -0.01, 1})
	assert.InDelta(t, -1, lowLeftNear[0], 1e-5)
	assert.InDelta(t, -1, lowLeftNear[1], 1e-5)
	assert.InDelta(t, 0, lowLeftNear[2], 1e-5)

	upRightFar := MulVec4(m, [4]float32{4, 2, -1000, 1})
	assert.InDelta(t, 1, upRightFar[0], 1e-5)
	assert.InDelta(t, 1, upRightFar[1], 1e-5)
	assert.InDelta(t, 1, upRightFar[2], 1e-4)
}

func TestInvert4(t *testing.T) {
	m := make([]float32, 16)
	BuildModelMatrix2D(m, 3, -2, 0.5, 2, 4)

	inv := make([]float32, 16)
	require.True(t, Invert4(inv, m))

	out := make([]float32, 16)
	Mul4(out, m, inv)
	id := make([]float32, 16)
	Identity(id)
	assert.InDeltaSlice(t, id, out, 1e-5)

	singular := make([]float32, 16)
	assert.False(t, Invert4(inv, singular))
}

func TestTranslateAndMul(t *testing.T) {
	a := make([]float32, 16)
	b := make([]float32, 16)
	Translate(a, 1, 2, 0)
	Translate(b, 3, 4, 0)
	Mul4(a, a, b)

	p := MulVec4(a, [4]float32{0, 0, 0, 1})
	assert.Equal(t, [4]float32{4, 6, 0, 1}, p)
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes[float32](nil))
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
}
