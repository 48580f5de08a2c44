package level

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/boundary"
)

// Vec is a JSON [x, y] pair.
type Vec [2]float64

// R2 converts to a gonum vector.
func (v Vec) R2() r2.Vec {
	return r2.Vec{X: v[0], Y: v[1]}
}

// Shape is a node in a level's geometry tree. Leaves are primitives; inner
// nodes combine or move their children.
type Shape struct {
	Type   string  `json:"type"`
	Half   Vec     `json:"half,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	Points []Vec   `json:"points,omitempty"`
	Offset Vec     `json:"offset,omitempty"`
	Shape  *Shape  `json:"shape,omitempty"`
	Cut    *Shape  `json:"cut,omitempty"`
	Shapes []Shape `json:"shapes,omitempty"`
}

// Build compiles the tree into a distance function.
func (s *Shape) Build() (boundary.DistanceFunc, error) {
	switch s.Type {
	case "box":
		return boundary.Box(s.Half.R2()), nil
	case "circle":
		return boundary.Circle(s.Radius), nil
	case "triangle":
		if len(s.Points) != 3 {
			return nil, fmt.Errorf("triangle needs 3 points, got %d", len(s.Points))
		}
		return boundary.Triangle(s.Points[0].R2(), s.Points[1].R2(), s.Points[2].R2()), nil
	case "translate":
		child, err := s.child(s.Shape, "shape")
		if err != nil {
			return nil, err
		}
		return boundary.Translate(child, s.Offset.R2()), nil
	case "flip":
		child, err := s.child(s.Shape, "shape")
		if err != nil {
			return nil, err
		}
		return boundary.Flip(child), nil
	case "subtract":
		base, err := s.child(s.Shape, "shape")
		if err != nil {
			return nil, err
		}
		cut, err := s.child(s.Cut, "cut")
		if err != nil {
			return nil, err
		}
		return boundary.Subtract(base, cut), nil
	case "union":
		parts := make([]boundary.DistanceFunc, 0, len(s.Shapes))
		for i := range s.Shapes {
			fn, err := s.Shapes[i].Build()
			if err != nil {
				return nil, fmt.Errorf("union[%d]: %w", i, err)
			}
			parts = append(parts, fn)
		}
		return boundary.Union(parts...), nil
	}
	return nil, fmt.Errorf("unknown shape type %q", s.Type)
}

func (s *Shape) child(c *Shape, field string) (boundary.DistanceFunc, error) {
	if c == nil {
		return nil, fmt.Errorf("%s: missing %q", s.Type, field)
	}
	fn, err := c.Build()
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", s.Type, field, err)
	}
	return fn, nil
}
