package game

import (
	"github.com/mlange-42/ark/ecs"
)

// Outcome is the state of the current level attempt.
type Outcome uint8

const (
	Running Outcome = iota
	LevelComplete
	GameOver
)

func (o Outcome) String() string {
	switch o {
	case LevelComplete:
		return "level_complete"
	case GameOver:
		return "game_over"
	}
	return "running"
}

// Reason explains a GameOver.
type Reason uint8

const (
	NoReason Reason = iota
	OutOfBounds
	OutOfTime
	OutOfBoids
)

func (r Reason) String() string {
	switch r {
	case OutOfBounds:
		return "out_of_bounds"
	case OutOfTime:
		return "out_of_time"
	case OutOfBoids:
		return "out_of_boids"
	}
	return ""
}

// EventKind identifies a game event.
type EventKind uint8

const (
	EventTamed EventKind = iota
	EventWild
	EventCollided
	EventDespawned
	EventOutcome
)

func (k EventKind) String() string {
	switch k {
	case EventTamed:
		return "tamed"
	case EventWild:
		return "wild"
	case EventCollided:
		return "collided"
	case EventDespawned:
		return "despawned"
	case EventOutcome:
		return "outcome"
	}
	return "unknown"
}

// Event is something presentation layers may react to (sounds, effects,
// screens). Entity is zero for outcome events.
type Event struct {
	Kind    EventKind
	Tick    int32
	Entity  ecs.Entity
	Outcome Outcome
	Reason  Reason
}
