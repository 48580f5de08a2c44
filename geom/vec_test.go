package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestNormalizeOrZero(t *testing.T) {
	tests := []struct {
		name string
		in   r2.Vec
		want r2.Vec
	}{
		{"zero stays zero", r2.Vec{}, r2.Vec{}},
		{"axis", r2.Vec{X: 5}, r2.Vec{X: 1}},
		{"diagonal", r2.Vec{X: 3, Y: 4}, r2.Vec{X: 0.6, Y: 0.8}},
		{"tiny", r2.Vec{X: 1e-12, Y: 0}, r2.Vec{X: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeOrZero(tt.in)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("NormalizeOrZero(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRotationMatchesGonum(t *testing.T) {
	v := r2.Vec{X: 2, Y: -1}
	for _, deg := range []float64{-90, -45, 0, 30, 45, 90, 180} {
		got := RotationDeg(deg).Apply(v)
		want := r2.Rotate(v, deg*math.Pi/180, r2.Vec{})
		if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
			t.Errorf("RotationDeg(%v).Apply(%v) = %v, want %v", deg, v, got, want)
		}
	}
}

func TestRotationDirection(t *testing.T) {
	up := RotationDeg(90).Apply(r2.Vec{X: 1})
	if math.Abs(up.Y-1) > 1e-9 {
		t.Errorf("+90 should turn +X to +Y, got %v", up)
	}
	down := RotationDeg(-90).Apply(r2.Vec{X: 1})
	if math.Abs(down.Y+1) > 1e-9 {
		t.Errorf("-90 should turn +X to -Y, got %v", down)
	}
}

func TestReflect(t *testing.T) {
	got := Reflect(r2.Vec{X: 1, Y: -1}, r2.Vec{Y: 1})
	if math.Abs(got.X-1) > 1e-9 || math.Abs(got.Y-1) > 1e-9 {
		t.Errorf("Reflect = %v, want (1, 1)", got)
	}
}
