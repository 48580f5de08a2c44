// Package components defines ECS components for the simulation.
package components

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Transform holds an agent's world position.
type Transform struct {
	Pos r2.Vec `inspect:"vec"`
}

// Boid holds an agent's motion and perception state.
// Heading is kept at unit length by the motion system.
type Boid struct {
	ID            uint32  `inspect:"label"`
	Heading       r2.Vec  `inspect:"vec"`
	Speed         float64 `inspect:"bar,max:1000"`
	TurningSpeed  float64 `inspect:"label,fmt:%.1f"`
	Vision        float64 `inspect:"label,fmt:%.0f"`
	PersonalSpace float64 `inspect:"label,fmt:%.0f"`
}

// Velocity returns heading scaled by speed.
func (b *Boid) Velocity() r2.Vec {
	return r2.Scale(b.Speed, b.Heading)
}

// Steering is the per-tick force staged by the steering system and consumed by
// the motion system.
type Steering struct {
	Force    r2.Vec  `inspect:"vec"`
	Speed    float64 `inspect:"skip"`
	HasSpeed bool    `inspect:"bool"`
	Avoiding bool    `inspect:"bool"` // A boundary probe fired this tick
}

// Clear resets the staged result.
func (s *Steering) Clear() {
	*s = Steering{}
}

// CosmeticMode selects how an agent is drawn.
type CosmeticMode uint8

const (
	CosmeticWild CosmeticMode = iota
	CosmeticTamed
	CosmeticPlayer
)

// Cosmetic holds presentation-only state.
type Cosmetic struct {
	Mode CosmeticMode `inspect:"label"`
}

// Player tags the player-controlled agent.
type Player struct{}

// Tamed tags agents currently inside the player's influence radius.
type Tamed struct{}

// Collided tags agents whose move was rejected this tick. Cleared at the start
// of every motion pass.
type Collided struct{}
