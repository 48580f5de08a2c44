package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/boundary"
	"github.com/pthm-cable/herd/config"
)

func TestIntegrateHeadingStaysUnit(t *testing.T) {
	heading := r2.Vec{X: 1}
	pos := r2.Vec{}
	forces := []r2.Vec{{Y: 1}, {X: -1}, {X: 0.6, Y: -0.8}, {}, {X: -0.6, Y: 0.8}}
	for i := 0; i < 200; i++ {
		f := forces[i%len(forces)]
		m := Integrate(pos, heading, f, 500, 10, 1.0/60, boundary.Open{}, CollisionFreeze)
		pos, heading = m.Pos, m.Heading
		assertUnit(t, heading)
	}
}

func TestIntegrateZeroInputIsIdentity(t *testing.T) {
	pos := r2.Vec{X: 12.5, Y: -3}
	heading := r2.Vec{X: 0.6, Y: 0.8}
	m := Integrate(pos, heading, r2.Vec{}, 500, 10, 0, halfPlane(100), CollisionFreeze)
	if m.Pos != pos {
		t.Errorf("position changed: %v -> %v", pos, m.Pos)
	}
	if m.Heading != heading {
		t.Errorf("heading changed: %v -> %v", heading, m.Heading)
	}
	if m.Collided {
		t.Error("zero move must not collide")
	}
}

func TestIntegrateOpposingForceKeepsHeading(t *testing.T) {
	// heading + force*dt*turning == 0
	m := Integrate(r2.Vec{}, r2.Vec{X: 1}, r2.Vec{X: -1}, 0, 1, 1, boundary.Open{}, CollisionFreeze)
	if m.Heading != (r2.Vec{X: 1}) {
		t.Errorf("heading = %v, want previous (1, 0)", m.Heading)
	}
}

func TestIntegrateAcceptsOpenMove(t *testing.T) {
	m := Integrate(r2.Vec{}, r2.Vec{X: 1}, r2.Vec{}, 500, 10, 0.1, halfPlane(100), CollisionFreeze)
	if !vecNear(m.Pos, r2.Vec{X: 50}, 1e-9) {
		t.Errorf("pos = %v, want (50, 0)", m.Pos)
	}
	if m.Collided {
		t.Error("open move flagged as collision")
	}
}

func TestIntegrateFreezeOnWall(t *testing.T) {
	m := Integrate(r2.Vec{}, r2.Vec{X: 1}, r2.Vec{}, 500, 10, 0.1, halfPlane(30), CollisionFreeze)
	if m.Pos != (r2.Vec{}) {
		t.Errorf("pos = %v, want unchanged", m.Pos)
	}
	if !m.Collided {
		t.Error("expected collision")
	}
}

func TestIntegrateEdgeIsNotOpen(t *testing.T) {
	// Landing exactly on the edge (distance 0) is rejected.
	m := Integrate(r2.Vec{}, r2.Vec{X: 1}, r2.Vec{}, 400, 10, 0.125, halfPlane(50), CollisionFreeze)
	if !m.Collided || m.Pos != (r2.Vec{}) {
		t.Errorf("move onto edge = %+v, want rejected", m)
	}
}

func TestIntegrateReflect(t *testing.T) {
	heading := r2.Vec{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2}
	m := Integrate(r2.Vec{}, heading, r2.Vec{}, 500, 10, 0.1, halfPlane(30), CollisionReflect)

	if m.Collided {
		t.Error("successful reflection should not flag a collision")
	}
	if !m.Reflected {
		t.Error("expected Reflected")
	}
	want := r2.Vec{X: -50 * math.Sqrt2 / 2, Y: 50 * math.Sqrt2 / 2}
	if !vecNear(m.Pos, want, 1e-6) {
		t.Errorf("pos = %v, want %v", m.Pos, want)
	}
	if !vecNear(m.Heading, r2.Vec{X: -math.Sqrt2 / 2, Y: math.Sqrt2 / 2}, 1e-6) {
		t.Errorf("heading = %v, want mirrored", m.Heading)
	}
	assertUnit(t, m.Heading)
}

func TestIntegrateReflectRevalidates(t *testing.T) {
	// A corridor narrower than the move: the reflected point is also in a wall.
	field := boundary.New(func(p r2.Vec) float64 { return 10 - math.Abs(p.X) })
	m := Integrate(r2.Vec{}, r2.Vec{X: 1}, r2.Vec{}, 500, 10, 0.1, field, CollisionReflect)
	if !m.Collided || m.Pos != (r2.Vec{}) {
		t.Errorf("got %+v, want frozen and collided", m)
	}
}

func TestMotionSystemCollisionFlagIsOneShot(t *testing.T) {
	cfg := config.Default()
	tw := newTestWorld()
	e := tw.spawn(r2.Vec{}, r2.Vec{X: 1}, cfg.Boids.MinSpeed, cfg.Boids.WildTurnSpeed, cfg)
	sys := NewMotionSystem(tw.w)
	field := halfPlane(5)

	flagged := sys.Update(tw.w, field, cfg, cfg.Physics.DT)
	if len(flagged) != 1 || flagged[0] != e {
		t.Fatalf("flagged = %v, want [%v]", flagged, e)
	}
	if !tw.collided.Has(e) {
		t.Fatal("expected Collided tag after blocked move")
	}
	if p := tw.transform.Get(e).Pos; p != (r2.Vec{}) {
		t.Errorf("pos = %v, want unchanged", p)
	}

	// Same heading, same wall: flag raised again.
	flagged = sys.Update(tw.w, field, cfg, cfg.Physics.DT)
	if len(flagged) != 1 || !tw.collided.Has(e) {
		t.Errorf("second blocked tick should re-raise the flag, got %v", flagged)
	}

	// Turn away: flag cleared.
	tw.boids.Get(e).Heading = r2.Vec{X: -1}
	flagged = sys.Update(tw.w, field, cfg, cfg.Physics.DT)
	if len(flagged) != 0 || tw.collided.Has(e) {
		t.Errorf("flag should clear once the move succeeds, got %v", flagged)
	}
}

func TestMotionSystemSpeedBounds(t *testing.T) {
	cfg := config.Default()
	tw := newTestWorld()
	fast := tw.spawn(r2.Vec{}, r2.Vec{X: 1}, 10*cfg.Boids.MaxSpeed, 10, cfg)
	slow := tw.spawn(r2.Vec{Y: 1000}, r2.Vec{X: 1}, 1, 10, cfg)
	requested := tw.spawn(r2.Vec{Y: 2000}, r2.Vec{X: 1}, cfg.Boids.MinSpeed, 10, cfg)
	st := tw.steering.Get(requested)
	st.Speed, st.HasSpeed = cfg.Boids.MaxSpeed, true

	sys := NewMotionSystem(tw.w)
	sys.Update(tw.w, boundary.Open{}, cfg, cfg.Physics.DT)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"clamped down", tw.boids.Get(fast).Speed, cfg.Boids.MaxSpeed},
		{"clamped up", tw.boids.Get(slow).Speed, cfg.Boids.MinSpeed},
		{"request applied", tw.boids.Get(requested).Speed, cfg.Boids.MaxSpeed},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: speed = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestMotionSystemSafeTurnSpeed(t *testing.T) {
	cfg := config.Default()
	tw := newTestWorld()
	gentle := tw.spawn(r2.Vec{}, r2.Vec{X: 1}, cfg.Boids.MinSpeed, cfg.Boids.MinTurnSpeed, cfg)
	st := tw.steering.Get(gentle)
	st.Force, st.Avoiding = r2.Vec{Y: 1}, true

	sys := NewMotionSystem(tw.w)
	sys.Update(tw.w, boundary.Open{}, cfg, cfg.Physics.DT)

	want := BlendHeading(r2.Vec{X: 1}, r2.Vec{Y: 1}, cfg.Physics.DT, cfg.Boids.SafeTurnSpeed)
	if got := tw.boids.Get(gentle).Heading; !vecNear(got, want, 1e-12) {
		t.Errorf("heading = %v, want %v (turned at safe speed)", got, want)
	}
	if tw.boids.Get(gentle).TurningSpeed != cfg.Boids.MinTurnSpeed {
		t.Error("safe turn speed must not overwrite the stored turning speed")
	}
}

func TestMotionSystemPlayerSpeedUnclamped(t *testing.T) {
	cfg := config.Default()
	tw := newTestWorld()
	p := tw.spawnPlayer(r2.Vec{}, r2.Vec{X: 1}, cfg)
	tw.boids.Get(p).Speed = 2 * cfg.Boids.MaxSpeed

	NewMotionSystem(tw.w).Update(tw.w, boundary.Open{}, cfg, cfg.Physics.DT)
	if s := tw.boids.Get(p).Speed; s != 2*cfg.Boids.MaxSpeed {
		t.Errorf("player speed = %v, want untouched", s)
	}
}
