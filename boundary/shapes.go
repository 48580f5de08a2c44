package boundary

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Box is an axis-aligned rectangle centred on the origin with the given half
// extents. Negative inside.
func Box(half r2.Vec) DistanceFunc {
	return func(p r2.Vec) float64 {
		dx := math.Abs(p.X) - half.X
		dy := math.Abs(p.Y) - half.Y
		outside := math.Hypot(math.Max(dx, 0), math.Max(dy, 0))
		inside := math.Min(math.Max(dx, dy), 0)
		return outside + inside
	}
}

// Circle is a disc of radius r centred on the origin.
func Circle(r float64) DistanceFunc {
	return func(p r2.Vec) float64 {
		return r2.Norm(p) - r
	}
}

// Triangle is the exact signed distance to the triangle abc. Winding does not
// matter.
func Triangle(a, b, c r2.Vec) DistanceFunc {
	e0, e1, e2 := r2.Sub(b, a), r2.Sub(c, b), r2.Sub(a, c)
	s := math.Copysign(1, e0.X*e2.Y-e0.Y*e2.X)
	return func(p r2.Vec) float64 {
		v0, v1, v2 := r2.Sub(p, a), r2.Sub(p, b), r2.Sub(p, c)
		pq0 := r2.Sub(v0, r2.Scale(clamp01(r2.Dot(v0, e0)/r2.Dot(e0, e0)), e0))
		pq1 := r2.Sub(v1, r2.Scale(clamp01(r2.Dot(v1, e1)/r2.Dot(e1, e1)), e1))
		pq2 := r2.Sub(v2, r2.Scale(clamp01(r2.Dot(v2, e2)/r2.Dot(e2, e2)), e2))

		d := math.Min(math.Min(r2.Norm2(pq0), r2.Norm2(pq1)), r2.Norm2(pq2))
		o := math.Min(math.Min(
			s*(v0.X*e0.Y-v0.Y*e0.X),
			s*(v1.X*e1.Y-v1.Y*e1.X)),
			s*(v2.X*e2.Y-v2.Y*e2.X))
		return -math.Sqrt(d) * math.Copysign(1, o)
	}
}

// Translate moves shape so its origin sits at offset.
func Translate(shape DistanceFunc, offset r2.Vec) DistanceFunc {
	return func(p r2.Vec) float64 {
		return shape(r2.Sub(p, offset))
	}
}

// Union merges shapes. An empty union is open everywhere.
func Union(shapes ...DistanceFunc) DistanceFunc {
	return func(p r2.Vec) float64 {
		d := math.MaxFloat64
		for _, s := range shapes {
			d = math.Min(d, s(p))
		}
		return d
	}
}

// Subtract carves cut out of shape.
func Subtract(shape, cut DistanceFunc) DistanceFunc {
	return func(p r2.Vec) float64 {
		return math.Max(shape(p), -cut(p))
	}
}

// Flip mirrors shape through the origin.
func Flip(shape DistanceFunc) DistanceFunc {
	return func(p r2.Vec) float64 {
		return shape(r2.Scale(-1, p))
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
