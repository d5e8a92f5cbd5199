package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// The returned slice shares memory with the input and must not be modified.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(unsafe.Sizeof(zero))*len(data))
}

// Mul4 multiplies two 4x4 column-major matrices: out = a * b.
// out may alias a or b.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			buf[col*4+row] = sum
		}
	}
	copy(out, buf[:])
}

// MulVec4 transforms the column vector v by the column-major matrix m.
func MulVec4(m []float32, v [4]float32) [4]float32 {
	var out [4]float32
	for row := 0; row < 4; row++ {
		out[row] = m[row]*v[0] + m[4+row]*v[1] + m[8+row]*v[2] + m[12+row]*v[3]
	}
	return out
}

// Orthographic creates an orthographic projection matrix mapping z in [near, far] to the WebGPU clip range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right: the horizontal view bounds
//   - bottom, top: the vertical view bounds
//   - near, far: the depth bounds
func Orthographic(out []float32, left, right, bottom, top, near, far float32) {
	Identity(out)
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 1 / (near - far)
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
	out[14] = near / (near - far)
}

// Translate creates a translation matrix.
func Translate(out []float32, x, y, z float32) {
	Identity(out)
	out[12], out[13], out[14] = x, y, z
}

// BuildModelMatrix2D constructs a model matrix for a flat quad: scale, then rotation about z, then translation.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - posX, posY: translation in world space
//   - rot: rotation about the z axis in radians
//   - scaleX, scaleY: scale factors
func BuildModelMatrix2D(out []float32, posX, posY, rot, scaleX, scaleY float32) {
	s, c := math32.Sincos(rot)
	Identity(out)
	out[0] = c * scaleX
	out[1] = s * scaleX
	out[4] = -s * scaleY
	out[5] = c * scaleY
	out[12] = posX
	out[13] = posY
}

// Invert4 computes the inverse of a 4x4 column-major matrix by cofactor expansion.
// If the matrix is singular the output is left unchanged and false is returned.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements, column-major)
//
// Returns:
//   - bool: true if the matrix was inverted
func Invert4(out, m []float32) bool {
	a0 := m[0]*m[5] - m[4]*m[1]
	a1 := m[0]*m[6] - m[4]*m[2]
	a2 := m[0]*m[7] - m[4]*m[3]
	a3 := m[1]*m[6] - m[5]*m[2]
	a4 := m[1]*m[7] - m[5]*m[3]
	a5 := m[2]*m[7] - m[6]*m[3]

	b5 := m[10]*m[15] - m[14]*m[11]
	b4 := m[9]*m[15] - m[13]*m[11]
	b3 := m[9]*m[14] - m[13]*m[10]
	b2 := m[8]*m[15] - m[12]*m[11]
	b1 := m[8]*m[14] - m[12]*m[10]
	b0 := m[8]*m[13] - m[12]*m[9]

	det := a0*b5 - a1*b4 + a2*b3 + a3*b2 - a4*b1 + a5*b0
	if math32.Abs(det) < 1e-12 {
		return false
	}
	inv := 1 / det

	var r [16]float32
	r[0] = (m[5]*b5 - m[6]*b4 + m[7]*b3) * inv
	r[1] = (-m[1]*b5 + m[2]*b4 - m[3]*b3) * inv
	r[2] = (m[13]*a5 - m[14]*a4 + m[15]*a3) * inv
	r[3] = (-m[9]*a5 + m[10]*a4 - m[11]*a3) * inv
	r[4] = (-m[4]*b5 + m[6]*b2 - m[7]*b1) * inv
	r[5] = (m[0]*b5 - m[2]*b2 + m[3]*b1) * inv
	r[6] = (-m[12]*a5 + m[14]*a2 - m[15]*a1) * inv
	r[7] = (m[8]*a5 - m[10]*a2 + m[11]*a1) * inv
	r[8] = (m[4]*b4 - m[5]*b2 + m[7]*b0) * inv
	r[9] = (-m[0]*b4 + m[1]*b2 - m[3]*b0) * inv
	r[10] = (m[12]*a4 - m[13]*a2 + m[15]*a0) * inv
	r[11] = (-m[8]*a4 + m[9]*a2 - m[11]*a0) * inv
	r[12] = (-m[4]*b3 + m[5]*b1 - m[6]*b0) * inv
	r[13] = (m[0]*b3 - m[1]*b1 + m[2]*b0) * inv
	r[14] = (-m[12]*a3 + m[13]*a1 - m[14]*a0) * inv
	r[15] = (m[8]*a3 - m[9]*a1 + m[10]*a0) * inv
	copy(out, r[:])
	return true
}
