package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/boundary"
	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/config"
)

// testWorld bundles a world with the mappers the systems need.
type testWorld struct {
	w         *ecs.World
	agents    *ecs.Map4[components.Transform, components.Boid, components.Steering, components.Cosmetic]
	players   *ecs.Map[components.Player]
	tamed     *ecs.Map[components.Tamed]
	collided  *ecs.Map[components.Collided]
	transform *ecs.Map[components.Transform]
	boids     *ecs.Map[components.Boid]
	steering  *ecs.Map[components.Steering]
	cosmetic  *ecs.Map[components.Cosmetic]
}

func newTestWorld() *testWorld {
	w := ecs.NewWorld()
	return &testWorld{
		w:         w,
		agents:    ecs.NewMap4[components.Transform, components.Boid, components.Steering, components.Cosmetic](w),
		players:   ecs.NewMap[components.Player](w),
		tamed:     ecs.NewMap[components.Tamed](w),
		collided:  ecs.NewMap[components.Collided](w),
		transform: ecs.NewMap[components.Transform](w),
		boids:     ecs.NewMap[components.Boid](w),
		steering:  ecs.NewMap[components.Steering](w),
		cosmetic:  ecs.NewMap[components.Cosmetic](w),
	}
}

func (tw *testWorld) spawn(pos, heading r2.Vec, speed, turning float64, cfg *config.Config) ecs.Entity {
	return tw.agents.NewEntity(
		&components.Transform{Pos: pos},
		&components.Boid{
			Heading:       heading,
			Speed:         speed,
			TurningSpeed:  turning,
			Vision:        cfg.Agents.Vision,
			PersonalSpace: cfg.Agents.PersonalSpace,
		},
		&components.Steering{},
		&components.Cosmetic{},
	)
}

func (tw *testWorld) spawnPlayer(pos, heading r2.Vec, cfg *config.Config) ecs.Entity {
	e := tw.agents.NewEntity(
		&components.Transform{Pos: pos},
		&components.Boid{
			Heading:       heading,
			Speed:         cfg.Boids.MinSpeed,
			TurningSpeed:  cfg.Boids.MaxTurnSpeed,
			Vision:        cfg.Agents.PlayerVision,
			PersonalSpace: cfg.Agents.PlayerPersonalSpace,
		},
		&components.Steering{},
		&components.Cosmetic{Mode: components.CosmeticPlayer},
	)
	tw.players.Add(e, &components.Player{})
	return e
}

// halfPlane is open for x < wall.
func halfPlane(wall float64) boundary.Field {
	return boundary.New(func(p r2.Vec) float64 { return wall - p.X })
}

func vecNear(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func assertUnit(t *testing.T, v r2.Vec) {
	t.Helper()
	if n := r2.Norm(v); math.Abs(n-1) > 1e-9 {
		t.Errorf("|%v| = %v, want 1", v, n)
	}
}

var (
	idWorld = ecs.NewWorld()
	idMap   = ecs.NewMap1[components.Transform](idWorld)
	ids     = map[int]ecs.Entity{}
)

// entityAt returns a distinct, stable entity handle for pure-function tests.
func entityAt(i int) ecs.Entity {
	if e, ok := ids[i]; ok {
		return e
	}
	e := idMap.NewEntity(&components.Transform{})
	ids[i] = e
	return e
}
