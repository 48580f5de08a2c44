package systems

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// maxGridCells bounds the grid allocation; sparse, spread-out flocks get
// coarser cells instead of more of them.
const maxGridCells = 4096

// SpatialGrid buckets snapshot indices by cell for neighbor lookups. It is
// rebuilt from the snapshot every tick and covers exactly the snapshot's
// bounding box.
type SpatialGrid struct {
	cellSize float64
	min      r2.Vec
	cols     int
	rows     int
	cells    [][]int
}

// NewSpatialGrid creates an empty grid.
func NewSpatialGrid() *SpatialGrid {
	return &SpatialGrid{}
}

// Rebuild buckets agents into cells at least cellSize wide.
func (g *SpatialGrid) Rebuild(agents []Agent, cellSize float64) {
	if len(agents) == 0 || cellSize <= 0 {
		g.cols, g.rows = 0, 0
		return
	}

	lo, hi := agents[0].Pos, agents[0].Pos
	for _, a := range agents[1:] {
		lo.X, lo.Y = min(lo.X, a.Pos.X), min(lo.Y, a.Pos.Y)
		hi.X, hi.Y = max(hi.X, a.Pos.X), max(hi.Y, a.Pos.Y)
	}

	cols := int((hi.X-lo.X)/cellSize) + 1
	rows := int((hi.Y-lo.Y)/cellSize) + 1
	for cols*rows > maxGridCells {
		cellSize *= 2
		cols = int((hi.X-lo.X)/cellSize) + 1
		rows = int((hi.Y-lo.Y)/cellSize) + 1
	}

	g.cellSize = cellSize
	g.min = lo
	g.cols = cols
	g.rows = rows

	n := cols * rows
	if cap(g.cells) < n {
		g.cells = make([][]int, n)
	}
	g.cells = g.cells[:n]
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}

	for i, a := range agents {
		col, row := g.cellCoords(a.Pos)
		idx := row*g.cols + col
		g.cells[idx] = append(g.cells[idx], i)
	}
}

// QueryInto appends to dst the indices of every agent in cells that could lie
// within radius of p. Callers still check the exact distance.
func (g *SpatialGrid) QueryInto(dst []int, p r2.Vec, radius float64) []int {
	if g.cols == 0 {
		return dst
	}

	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cellCoords(p)

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}
			dst = append(dst, g.cells[row*g.cols+col]...)
		}
	}
	return dst
}

// cellCoords returns the clamped cell for a world position.
func (g *SpatialGrid) cellCoords(p r2.Vec) (col, row int) {
	col = int((p.X - g.min.X) / g.cellSize)
	row = int((p.Y - g.min.Y) / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}
