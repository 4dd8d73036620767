// Package mathutil provides the float32-only 3-vector and 3x3-matrix
// primitives the physics and protocol layers build on. Everything here is
// deliberately float32: the wire format and the replay format are only
// byte-identical across builds if the simulation never promotes to float64.
package mathutil

import "math"

// Vec3 is a column vector in R3.
type Vec3 struct {
	X, Y, Z float32
}

func NewVec3(x, y, z float32) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float32) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Neg() Vec3 { return Vec3{-a.X, -a.Y, -a.Z} }

func (a Vec3) Dot(b Vec3) float32 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) LengthSq() float32 { return a.Dot(a) }

func (a Vec3) Length() float32 { return float32(math.Sqrt(float64(a.LengthSq()))) }

// Normalize returns the zero vector if a is (numerically) zero-length,
// matching the source's normal_or_zero degrade-to-identity behavior (spec §7).
func (a Vec3) Normalize() Vec3 {
	l := a.Length()
	if l < 1e-9 || math.IsNaN(float64(l)) {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

func UnitX() Vec3 { return Vec3{1, 0, 0} }
func UnitY() Vec3 { return Vec3{0, 1, 0} }
func UnitZ() Vec3 { return Vec3{0, 0, 1} }

// Mat3 stores three column vectors, matching the body-frame convention used
// throughout the rigid body simulation (column i is the direction of local
// axis i expressed in world space).
type Mat3 struct {
	Col [3]Vec3
}

func Identity3() Mat3 {
	return Mat3{[3]Vec3{UnitX(), UnitY(), UnitZ()}}
}

func Mat3FromColumns(c0, c1, c2 Vec3) Mat3 {
	return Mat3{[3]Vec3{c0, c1, c2}}
}

// MulVec3 applies the matrix to a vector (treating columns as the image of
// the standard basis), i.e. world = rot * local.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m.Col[0].X*v.X + m.Col[1].X*v.Y + m.Col[2].X*v.Z,
		m.Col[0].Y*v.X + m.Col[1].Y*v.Y + m.Col[2].Y*v.Z,
		m.Col[0].Z*v.X + m.Col[1].Z*v.Y + m.Col[2].Z*v.Z,
	}
}

func (m Mat3) Mul(o Mat3) Mat3 {
	return Mat3FromColumns(m.MulVec3(o.Col[0]), m.MulVec3(o.Col[1]), m.MulVec3(o.Col[2]))
}

// Transpose is the inverse for an orthonormal rotation matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{[3]Vec3{
		{m.Col[0].X, m.Col[1].X, m.Col[2].X},
		{m.Col[0].Y, m.Col[1].Y, m.Col[2].Y},
		{m.Col[0].Z, m.Col[1].Z, m.Col[2].Z},
	}}
}

// RotateAroundAxis returns the matrix that rotates by angle radians about
// axis (assumed unit length), matching rotate_matrix_around_axis in the
// simulation source.
func RotateAroundAxis(axis Vec3, angle float32) Mat3 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z
	return Mat3FromColumns(
		Vec3{t*x*x + c, t*x*y + s*z, t*x*z - s*y},
		Vec3{t*x*y - s*z, t*y*y + c, t*y*z + s*x},
		Vec3{t*x*z + s*y, t*y*z - s*x, t*z*z + c},
	)
}

// RotateVectorAroundAxis mirrors rotate_vector_around_axis: rotating a
// single vector is cheaper than building the full matrix when only the
// vector is needed.
func RotateVectorAroundAxis(v, axis Vec3, angle float32) Vec3 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))
	return v.Scale(c).Add(axis.Cross(v).Scale(s)).Add(axis.Scale(axis.Dot(v) * (1 - c)))
}

func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LimitVectorLength caps a's length to max, preserving direction.
func LimitVectorLength(a Vec3, max float32) Vec3 {
	l := a.Length()
	if l <= max || l == 0 {
		return a
	}
	return a.Scale(max / l)
}

// LimitRejection bounds the component of v perpendicular to normal (its
// rejection) to at most d times the length of v's component along normal — it stops
// an ice-contact response from injecting more energy than the penetration
// implies (spec §4.2 step 6).
func LimitRejection(v, normal Vec3, d float32) Vec3 {
	proj := normal.Scale(v.Dot(normal))
	rejection := v.Sub(proj)
	maxLen := proj.Length() * d
	return proj.Add(LimitVectorLength(rejection, maxLen))
}

// LimitFriction bounds the tangential (to normal) component of v to mu times
// the magnitude of the normal component, used for ice and rink-plane contact.
func LimitFriction(v, normal Vec3, mu float32) Vec3 {
	normalComp := normal.Scale(v.Dot(normal))
	tangent := v.Sub(normalComp)
	maxLen := normalComp.Length() * mu
	return normalComp.Add(LimitVectorLength(tangent, maxLen))
}
