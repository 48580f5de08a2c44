package components

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestBoidVelocity(t *testing.T) {
	b := Boid{Heading: r2.Vec{X: 0.6, Y: 0.8}, Speed: 500}
	v := b.Velocity()
	if math.Abs(v.X-300) > 1e-9 || math.Abs(v.Y-400) > 1e-9 {
		t.Errorf("Velocity() = %v, want (300, 400)", v)
	}
}

func TestCosmeticModeString(t *testing.T) {
	tests := []struct {
		mode CosmeticMode
		want string
	}{
		{CosmeticWild, "Wild"},
		{CosmeticTamed, "Tamed"},
		{CosmeticPlayer, "Player"},
		{CosmeticMode(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("CosmeticMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestSteeringClear(t *testing.T) {
	s := Steering{Force: r2.Vec{X: 1}, Speed: 3, HasSpeed: true, Avoiding: true}
	s.Clear()
	if s != (Steering{}) {
		t.Errorf("Clear() left %+v", s)
	}
}
