package common

import (
	"github.com/chewxy/math32"
)

// Plane is ax + by + cz + d = 0 with Normal = (a, b, c) and Distance = d.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum holds the six clip planes of a transform, oriented so the positive half-space is inside.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts the clip planes of a column-major transform with the
// Gribb/Hartmann method, for WebGPU clip space (0 <= z <= w). Passing a model-view-projection
// yields planes in model space.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - m: 16 float32 values (column-major)
//
// Returns:
//   - Frustum: the frustum with normalized planes
func ExtractFrustumFromMatrix(m []float32) Frustum {
	// row i of a column-major matrix is (m[i], m[4+i], m[8+i], m[12+i])
	row := func(i int) [4]float32 {
		return [4]float32{m[i], m[4+i], m[8+i], m[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	var f Frustum
	set := func(index int, sign float32, r [4]float32) {
		p := &f.Planes[index]
		for i := range 3 {
			p.Normal[i] = r3[i] + sign*r[i]
		}
		p.Distance = r3[3] + sign*r[3]
	}
	set(FrustumLeft, 1, r0)
	set(FrustumRight, -1, r0)
	set(FrustumBottom, 1, r1)
	set(FrustumTop, -1, r1)
	// z >= 0 alone, not z >= -w
	f.Planes[FrustumNear] = Plane{Normal: [3]float32{r2[0], r2[1], r2[2]}, Distance: r2[3]}
	set(FrustumFar, -1, r2)

	for i := range f.Planes {
		f.Planes[i].normalize()
	}
	return f
}

func (p *Plane) normalize() {
	length := math32.Sqrt(p.Normal[0]*p.Normal[0] + p.Normal[1]*p.Normal[1] + p.Normal[2]*p.Normal[2])
	if length > 0 {
		inv := 1 / length
		p.Normal[0] *= inv
		p.Normal[1] *= inv
		p.Normal[2] *= inv
		p.Distance *= inv
	}
}

// IntersectsBox reports whether an axis-aligned box is at least partly inside the frustum.
// Boxes near a corner may be reported as intersecting when they are not.
//
// Parameters:
//   - lo: the minimum corner
//   - hi: the maximum corner
//
// Returns:
//   - bool: false only if the box is entirely outside one plane
func (f Frustum) IntersectsBox(lo, hi [3]float32) bool {
	for _, p := range f.Planes {
		// the corner furthest along the plane normal
		var v [3]float32
		for i := range 3 {
			if p.Normal[i] >= 0 {
				v[i] = hi[i]
			} else {
				v[i] = lo[i]
			}
		}
		if p.Normal[0]*v[0]+p.Normal[1]*v[1]+p.Normal[2]*v[2]+p.Distance < 0 {
			return false
		}
	}
	return true
}
