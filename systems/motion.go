package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/boundary"
	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/geom"
)

// CollisionPolicy selects what happens when a move would end inside a wall.
type CollisionPolicy uint8

const (
	// CollisionFreeze keeps the agent at its last valid position.
	CollisionFreeze CollisionPolicy = iota
	// CollisionReflect mirrors the displacement about the edge normal and takes
	// the reflected move if it lands in open space.
	CollisionReflect
)

// PolicyFromConfig maps the configured policy name.
func PolicyFromConfig(cfg *config.Config) CollisionPolicy {
	if cfg.Derived.Reflect {
		return CollisionReflect
	}
	return CollisionFreeze
}

// Move is the outcome of integrating one agent for one tick.
type Move struct {
	Pos       r2.Vec
	Heading   r2.Vec
	Collided  bool
	Reflected bool
}

// BlendHeading turns heading toward force by dt*turning and renormalizes.
// A zero turn leaves heading untouched.
func BlendHeading(heading, force r2.Vec, dt, turning float64) r2.Vec {
	delta := r2.Scale(dt*turning, force)
	if geom.IsZero(delta) {
		return heading
	}
	h := geom.NormalizeOrZero(r2.Add(heading, delta))
	if geom.IsZero(h) {
		return heading
	}
	return h
}

// Integrate advances one agent by one tick and checks the destination against
// the field. A rejected non-zero move reports Collided.
func Integrate(pos, heading, force r2.Vec, speed, turning, dt float64, field boundary.Field, policy CollisionPolicy) Move {
	heading = BlendHeading(heading, force, dt, turning)
	disp := r2.Scale(speed*dt, heading)
	target := r2.Add(pos, disp)

	if field.DistanceToEdge(target) > 0 {
		return Move{Pos: target, Heading: heading}
	}

	moving := !geom.IsZero(disp)
	if policy == CollisionReflect && moving {
		if n := field.EdgeNormal(target); !geom.IsZero(n) {
			r := geom.Reflect(disp, n)
			bounced := r2.Add(pos, r)
			if field.DistanceToEdge(bounced) > 0 {
				if h := geom.NormalizeOrZero(r); !geom.IsZero(h) {
					heading = h
				}
				return Move{Pos: bounced, Heading: heading, Reflected: true}
			}
		}
	}

	return Move{Pos: pos, Heading: heading, Collided: moving}
}

// MotionSystem commits staged steering: it applies speed requests, turns
// headings, moves agents and raises the one-shot Collided tag.
type MotionSystem struct {
	filter         ecs.Filter3[components.Transform, components.Boid, components.Steering]
	collidedFilter ecs.Filter1[components.Collided]
	playerMap      *ecs.Map[components.Player]
	collidedMap    *ecs.Map[components.Collided]

	flagged []ecs.Entity
	stale   []ecs.Entity
}

// NewMotionSystem creates a new motion system.
func NewMotionSystem(w *ecs.World) *MotionSystem {
	return &MotionSystem{
		filter:         *ecs.NewFilter3[components.Transform, components.Boid, components.Steering](w),
		collidedFilter: *ecs.NewFilter1[components.Collided](w),
		playerMap:      ecs.NewMap[components.Player](w),
		collidedMap:    ecs.NewMap[components.Collided](w),
	}
}

// Update runs the motion system and returns the entities that collided this
// tick. The returned slice is reused on the next call.
func (s *MotionSystem) Update(w *ecs.World, field boundary.Field, cfg *config.Config, dt float64) []ecs.Entity {
	s.clearFlags()

	b := &cfg.Boids
	policy := PolicyFromConfig(cfg)
	s.flagged = s.flagged[:0]

	query := s.filter.Query()
	for query.Next() {
		e := query.Entity()
		tr, boid, st := query.Get()
		player := s.playerMap.Has(e)

		if st.HasSpeed {
			boid.Speed = st.Speed
		}
		turning := boid.TurningSpeed
		if !player {
			boid.Speed = clamp(boid.Speed, b.MinSpeed, b.MaxSpeed)
			if st.Avoiding && turning < b.SafeTurnSpeed {
				turning = b.SafeTurnSpeed
			}
		}

		m := Integrate(tr.Pos, boid.Heading, st.Force, boid.Speed, turning, dt, field, policy)
		tr.Pos = m.Pos
		boid.Heading = m.Heading
		if m.Collided {
			s.flagged = append(s.flagged, e)
		}
	}

	// Tags are structural changes, so they wait for the query to finish.
	for _, e := range s.flagged {
		s.collidedMap.Add(e, &components.Collided{})
	}
	return s.flagged
}

// clearFlags drops last tick's Collided tags.
func (s *MotionSystem) clearFlags() {
	s.stale = s.stale[:0]
	query := s.collidedFilter.Query()
	for query.Next() {
		s.stale = append(s.stale, query.Entity())
	}
	for _, e := range s.stale {
		s.collidedMap.Remove(e)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
