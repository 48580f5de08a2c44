// Package boundary provides signed-distance fields that describe the traversable
// region of a level. Positive distances are open space, zero is the edge and
// negative distances lie inside a wall.
package boundary

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/geom"
)

// DefaultEpsilon is the central-difference step used to estimate edge normals.
const DefaultEpsilon = 1e-3

// Field answers distance and normal queries over a fixed level boundary.
// Implementations must be safe for concurrent readers and never change once
// built.
type Field interface {
	DistanceToEdge(p r2.Vec) float64
	EdgeNormal(p r2.Vec) r2.Vec
}

// DistanceFunc is a signed distance function over the plane.
type DistanceFunc func(p r2.Vec) float64

// SDF adapts a DistanceFunc into a Field.
type SDF struct {
	fn  DistanceFunc
	eps float64
}

// New wraps fn using DefaultEpsilon for normals.
func New(fn DistanceFunc) *SDF {
	return NewWithEpsilon(fn, DefaultEpsilon)
}

// NewWithEpsilon wraps fn with a custom normal step. Non-positive eps falls back
// to DefaultEpsilon.
func NewWithEpsilon(fn DistanceFunc, eps float64) *SDF {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	return &SDF{fn: fn, eps: eps}
}

// DistanceToEdge returns the signed distance at p.
func (s *SDF) DistanceToEdge(p r2.Vec) float64 {
	return s.fn(p)
}

// EdgeNormal returns the unit gradient of the field at p, pointing toward open
// space. It is zero where the gradient vanishes.
func (s *SDF) EdgeNormal(p r2.Vec) r2.Vec {
	return Normal(s.fn, p, s.eps)
}

// Epsilon returns the normal estimation step.
func (s *SDF) Epsilon() float64 {
	return s.eps
}

// Normal estimates the normal of fn at p by central differences.
func Normal(fn DistanceFunc, p r2.Vec, eps float64) r2.Vec {
	ex := r2.Vec{X: eps}
	ey := r2.Vec{Y: eps}
	g := r2.Vec{
		X: fn(r2.Add(p, ex)) - fn(r2.Sub(p, ex)),
		Y: fn(r2.Add(p, ey)) - fn(r2.Sub(p, ey)),
	}
	return geom.NormalizeOrZero(g)
}

// Open is a field with no walls.
type Open struct{}

// DistanceToEdge always reports open space.
func (Open) DistanceToEdge(r2.Vec) float64 { return math.MaxFloat64 }

// EdgeNormal is always zero.
func (Open) EdgeNormal(r2.Vec) r2.Vec { return r2.Vec{} }
