package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/config"
)

// TamingState is an agent's proximity-driven behaviour mode.
type TamingState uint8

const (
	Wild TamingState = iota
	Tamed
)

func (s TamingState) String() string {
	if s == Tamed {
		return "tamed"
	}
	return "wild"
}

// Transition records an agent changing state this tick.
type Transition struct {
	Entity ecs.Entity
	To     TamingState
}

// InInfluence reports whether p lies within radius of the player position.
func InInfluence(player, p r2.Vec, radius float64) bool {
	return r2.Norm2(r2.Sub(p, player)) <= radius*radius
}

// TamedTurnSpeed returns the turning speed followers use for the given boost
// state.
func TamedTurnSpeed(cfg *config.Config, boosting bool) float64 {
	if boosting {
		return cfg.Boids.MaxTurnSpeed
	}
	return cfg.Boids.MinTurnSpeed
}

// TamingSystem flips agents between Wild and Tamed by distance to the player.
type TamingSystem struct {
	filter       ecs.Filter3[components.Transform, components.Boid, components.Cosmetic]
	playerFilter ecs.Filter2[components.Transform, components.Boid]
	tamedMap     *ecs.Map[components.Tamed]

	transitions []Transition
}

// NewTamingSystem creates a new taming system.
func NewTamingSystem(w *ecs.World) *TamingSystem {
	return &TamingSystem{
		filter: *ecs.NewFilter3[components.Transform, components.Boid, components.Cosmetic](w).
			Without(ecs.C[components.Player]()),
		playerFilter: *ecs.NewFilter2[components.Transform, components.Boid](w).
			With(ecs.C[components.Player]()),
		tamedMap: ecs.NewMap[components.Tamed](w),
	}
}

// Update runs the taming system and returns this tick's transitions. The
// returned slice is reused on the next call.
func (s *TamingSystem) Update(w *ecs.World, cfg *config.Config, boosting bool) []Transition {
	s.transitions = s.transitions[:0]

	var playerPos r2.Vec
	var radius float64
	hasPlayer := false
	pq := s.playerFilter.Query()
	for pq.Next() {
		tr, boid := pq.Get()
		if !hasPlayer {
			playerPos, radius, hasPlayer = tr.Pos, boid.Vision, true
		}
	}

	tamedTurn := TamedTurnSpeed(cfg, boosting)

	query := s.filter.Query()
	for query.Next() {
		e := query.Entity()
		tr, boid, cosmetic := query.Get()

		inside := hasPlayer && InInfluence(playerPos, tr.Pos, radius)
		was := s.tamedMap.Has(e)

		switch {
		case inside:
			// Followers track the boost flag every tick, not only on entry.
			boid.TurningSpeed = tamedTurn
			cosmetic.Mode = components.CosmeticTamed
			if !was {
				s.transitions = append(s.transitions, Transition{Entity: e, To: Tamed})
			}
		case was:
			boid.Speed = cfg.Boids.WildSpeed
			boid.TurningSpeed = cfg.Boids.WildTurnSpeed
			cosmetic.Mode = components.CosmeticWild
			s.transitions = append(s.transitions, Transition{Entity: e, To: Wild})
		}
	}

	for _, t := range s.transitions {
		if t.To == Tamed {
			s.tamedMap.Add(t.Entity, &components.Tamed{})
		} else {
			s.tamedMap.Remove(t.Entity)
		}
	}
	return s.transitions
}
