package boundary

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Grid is a field sampled once over a rectangle and read back with bilinear
// interpolation. Points outside the rectangle extrapolate from the nearest
// border sample.
type Grid struct {
	min    r2.Vec
	cell   float64
	cols   int
	rows   int
	values []float64
	eps    float64
}

// NewGrid samples fn over [min, max] at the given cell size.
func NewGrid(fn DistanceFunc, min, max r2.Vec, cell float64) *Grid {
	if cell <= 0 {
		cell = 1
	}
	cols := int(math.Ceil((max.X-min.X)/cell)) + 1
	rows := int(math.Ceil((max.Y-min.Y)/cell)) + 1
	if cols < 2 {
		cols = 2
	}
	if rows < 2 {
		rows = 2
	}

	g := &Grid{
		min:    min,
		cell:   cell,
		cols:   cols,
		rows:   rows,
		values: make([]float64, cols*rows),
		// Bilinear cells are flat at the 1e-3 scale; sample normals at a fraction of a cell.
		eps: cell * 0.25,
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p := r2.Vec{X: min.X + float64(x)*cell, Y: min.Y + float64(y)*cell}
			g.values[y*cols+x] = fn(p)
		}
	}
	return g
}

// Size returns the sample dimensions.
func (g *Grid) Size() (cols, rows int) {
	return g.cols, g.rows
}

// DistanceToEdge interpolates the sampled distance at p.
func (g *Grid) DistanceToEdge(p r2.Vec) float64 {
	maxX := g.min.X + float64(g.cols-1)*g.cell
	maxY := g.min.Y + float64(g.rows-1)*g.cell
	c := r2.Vec{
		X: math.Max(g.min.X, math.Min(p.X, maxX)),
		Y: math.Max(g.min.Y, math.Min(p.Y, maxY)),
	}
	d := g.sample(c)
	if c != p {
		d += r2.Norm(r2.Sub(p, c))
	}
	return d
}

// EdgeNormal estimates the normal from the interpolated field.
func (g *Grid) EdgeNormal(p r2.Vec) r2.Vec {
	return Normal(g.DistanceToEdge, p, g.eps)
}

func (g *Grid) sample(p r2.Vec) float64 {
	fx := (p.X - g.min.X) / g.cell
	fy := (p.Y - g.min.Y) / g.cell
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	if x0 >= g.cols-1 {
		x0 = g.cols - 2
	}
	if y0 >= g.rows-1 {
		y0 = g.rows - 2
	}
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	v00 := g.values[y0*g.cols+x0]
	v10 := g.values[y0*g.cols+x0+1]
	v01 := g.values[(y0+1)*g.cols+x0]
	v11 := g.values[(y0+1)*g.cols+x0+1]

	top := v00 + (v10-v00)*tx
	bottom := v01 + (v11-v01)*tx
	return top + (bottom-top)*ty
}
