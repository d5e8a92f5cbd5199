package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrustumIntersectsBox(t *testing.T) {
	proj := make([]float32, 16)
	Orthographic(proj, -4, 4, -3, 3, 0.01, 1000)
	view := make([]float32, 16)
	Translate(view, 0, 0, -10)
	vp := make([]float32, 16)
	Mul4(vp, proj, view)

	f := ExtractFrustumFromMatrix(vp)

	tests := []struct {
		name   string
		lo, hi [3]float32
		want   bool
	}{
		{"inside", [3]float32{-1, -1, 0}, [3]float32{1, 1, 0}, true},
		{"straddles right edge", [3]float32{3, 0, 0}, [3]float32{5, 1, 0}, true},
		{"covers view", [3]float32{-100, -100, 0}, [3]float32{100, 100, 0}, true},
		{"left of view", [3]float32{-9, 0, 0}, [3]float32{-5, 1, 0}, false},
		{"above view", [3]float32{0, 3.5, 0}, [3]float32{1, 4, 0}, false},
		{"behind camera", [3]float32{-1, -1, 20}, [3]float32{1, 1, 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IntersectsBox(tt.lo, tt.hi))
		})
	}
}

func TestFrustumPlanesAreNormalized(t *testing.T) {
	m := make([]float32, 16)
	Orthographic(m, -2, 6, -1, 1, 0.1, 50)
	f := ExtractFrustumFromMatrix(m)
	for i, p := range f.Planes {
		l := p.Normal[0]*p.Normal[0] + p.Normal[1]*p.Normal[1] + p.Normal[2]*p.Normal[2]
		assert.InDelta(t, 1, l, 1e-5, "plane %d", i)
	}
}
