// Package geom holds the small amount of 2D vector math shared by the
// boundary field, steering and camera code on top of gonum's r2.Vec.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// NormalizeOrZero returns v scaled to unit length, or the zero vector if v has
// no length.
func NormalizeOrZero(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// IsZero reports whether v is exactly the zero vector.
func IsZero(v r2.Vec) bool {
	return v.X == 0 && v.Y == 0
}

// FromAngle returns the unit vector at angle theta (radians, CCW from +X).
func FromAngle(theta float64) r2.Vec {
	s, c := math.Sincos(theta)
	return r2.Vec{X: c, Y: s}
}

// Angle returns the direction of v in radians.
func Angle(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// Lerp interpolates between a and b.
func Lerp(a, b r2.Vec, t float64) r2.Vec {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}

// Reflect mirrors d about the line with unit normal n.
func Reflect(d, n r2.Vec) r2.Vec {
	return r2.Sub(d, r2.Scale(2*r2.Dot(d, n), n))
}

// Rotation is a precomputed 2D rotation.
type Rotation struct {
	Cos, Sin float64
}

// RotationDeg builds a rotation by deg degrees, counter-clockwise for positive
// values.
func RotationDeg(deg float64) Rotation {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Rotation{Cos: c, Sin: s}
}

// Apply rotates v.
func (r Rotation) Apply(v r2.Vec) r2.Vec {
	return r2.Vec{
		X: r.Cos*v.X - r.Sin*v.Y,
		Y: r.Sin*v.X + r.Cos*v.Y,
	}
}
