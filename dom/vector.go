package dom

import "math"

// Vector3 is a point or direction in LDraw units.
type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Matrix is an affine transformation: rotation/scale part R applied first,
// then translation T. Row i of R holds coefficients producing coordinate i.
type Matrix struct {
	R [3][3]float64
	T Vector3
}

// Identity returns identity transformation.
func Identity() Matrix {
	return Matrix{R: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// Translation returns transformation moving points by t.
func Translation(t Vector3) Matrix {
	m := Identity()
	m.T = t
	return m
}

// Apply transforms point v.
func (m Matrix) Apply(v Vector3) Vector3 {
	return Vector3{
		m.R[0][0]*v.X + m.R[0][1]*v.Y + m.R[0][2]*v.Z + m.T.X,
		m.R[1][0]*v.X + m.R[1][1]*v.Y + m.R[1][2]*v.Z + m.T.Y,
		m.R[2][0]*v.X + m.R[2][1]*v.Y + m.R[2][2]*v.Z + m.T.Z,
	}
}

// Mul returns composition m∘n: n is applied first.
func (m Matrix) Mul(n Matrix) Matrix {
	var out Matrix
	for i := range 3 {
		for j := range 3 {
			out.R[i][j] = m.R[i][0]*n.R[0][j] + m.R[i][1]*n.R[1][j] + m.R[i][2]*n.R[2][j]
		}
	}
	out.T = m.Apply(n.T)
	return out
}

// Det returns determinant of the rotation/scale part. Negative determinant
// mirrors geometry and flips its winding.
func (m Matrix) Det() float64 {
	r := m.R
	return r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
}

// IsSingular reports whether the matrix collapses space.
func (m Matrix) IsSingular() bool {
	return math.Abs(m.Det()) < 1e-12
}
