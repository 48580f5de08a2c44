// Package game runs levels: it owns the ECS world, steps the simulation in a
// fixed order, applies player input and decides level outcomes.
package game

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/level"
	"github.com/pthm-cable/herd/systems"
	"github.com/pthm-cable/herd/telemetry"
)

var (
	// ErrGameComplete is returned by Advance after the last level.
	ErrGameComplete = errors.New("game complete")
	// ErrNotComplete is returned by Advance while the level is unfinished.
	ErrNotComplete = errors.New("level not complete")
)

// Game holds the complete game state.
type Game struct {
	world *ecs.World

	// Entity mappers
	agentMapper *ecs.Map4[
		components.Transform,
		components.Boid,
		components.Steering,
		components.Cosmetic,
	]
	agentFilter ecs.Filter2[components.Transform, components.Boid]
	allFilter   ecs.Filter1[components.Transform]

	// Individual component mappers for lookups
	transformMap *ecs.Map[components.Transform]
	boidMap      *ecs.Map[components.Boid]
	steerMap     *ecs.Map[components.Steering]
	playerMap    *ecs.Map[components.Player]
	tamedMap     *ecs.Map[components.Tamed]

	// Systems
	taming   *systems.TamingSystem
	steering *systems.SteeringSystem
	motion   *systems.MotionSystem

	// Levels
	registry *level.Registry
	level    *level.Level
	attempt  int

	// tuning is edited live; cfg is the copy used for the current tick.
	tuning *config.Config
	cfg    config.Config

	// Player
	player   ecs.Entity
	turn     int
	boosting bool

	// State
	tick     int32
	elapsed  float64
	outcome  Outcome
	reason   Reason
	score    int
	nextID   uint32
	events   []Event
	despawns []ecs.Entity

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// NewGame creates a game and loads the starting level.
func NewGame(opts Options) (*Game, error) {
	tuning := opts.Config
	if tuning == nil {
		tuning = config.Cfg()
	}

	registry := opts.Registry
	if registry == nil {
		var err error
		registry, err = level.Builtin()
		if err != nil {
			return nil, fmt.Errorf("loading built-in levels: %w", err)
		}
	}

	world := ecs.NewWorld()
	g := &Game{
		world: world,
		agentMapper: ecs.NewMap4[
			components.Transform,
			components.Boid,
			components.Steering,
			components.Cosmetic,
		](world),
		agentFilter:  *ecs.NewFilter2[components.Transform, components.Boid](world),
		allFilter:    *ecs.NewFilter1[components.Transform](world),
		transformMap: ecs.NewMap[components.Transform](world),
		boidMap:      ecs.NewMap[components.Boid](world),
		steerMap:     ecs.NewMap[components.Steering](world),
		playerMap:    ecs.NewMap[components.Player](world),
		tamedMap:     ecs.NewMap[components.Tamed](world),
		taming:       systems.NewTamingSystem(world),
		steering:     systems.NewSteeringSystem(world),
		motion:       systems.NewMotionSystem(world),
		registry:     registry,
		tuning:       tuning,
		cfg:          tuning.Snapshot(),
		logStats:     opts.LogStats,
	}
	g.statsCallback = opts.StatsCallback

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = tuning.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow, tuning.Physics.DT)
	g.perfCollector = telemetry.NewPerfCollector(tuning.Telemetry.PerfWindow)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(tuning); err != nil {
		om.Close()
		return nil, err
	}

	start := opts.Level
	if start == "" {
		start = tuning.Game.StartLevel
	}
	if err := g.LoadLevel(start); err != nil {
		om.Close()
		return nil, err
	}
	return g, nil
}

// World returns the ECS world. Callers must not add or remove entities.
func (g *Game) World() *ecs.World { return g.world }

// Level returns the current level.
func (g *Game) Level() *level.Level { return g.level }

// Registry returns the level registry.
func (g *Game) Registry() *level.Registry { return g.registry }

// Config returns the live tuning config. Edits take effect on the next tick;
// call Refresh on it after changing angles or the collision policy.
func (g *Game) Config() *config.Config { return g.tuning }

// TickConfig returns the config snapshot used by the last tick.
func (g *Game) TickConfig() *config.Config { return &g.cfg }

// Player returns the player entity.
func (g *Game) Player() ecs.Entity { return g.player }

// PlayerState returns the player's position, heading and speed.
func (g *Game) PlayerState() (pos, heading r2.Vec, speed float64) {
	if !g.world.Alive(g.player) {
		return r2.Vec{}, r2.Vec{Y: 1}, 0
	}
	tr := g.transformMap.Get(g.player)
	boid := g.boidMap.Get(g.player)
	return tr.Pos, boid.Heading, boid.Speed
}

// Agents returns the snapshot and steering results from the last tick, aligned
// by index.
func (g *Game) Agents() ([]systems.Agent, []systems.SteeringResult) {
	return g.steering.Snapshot(), g.steering.Results()
}

// Counts returns the number of tamed and wild agents, excluding the player.
func (g *Game) Counts() (tamed, wild int) {
	query := g.agentFilter.Query()
	for query.Next() {
		e := query.Entity()
		if g.playerMap.Has(e) {
			continue
		}
		if g.tamedMap.Has(e) {
			tamed++
		} else {
			wild++
		}
	}
	return tamed, wild
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 { return g.tick }

// Elapsed returns seconds spent in the current attempt.
func (g *Game) Elapsed() float64 { return g.elapsed }

// Outcome returns the state of the current attempt and, for GameOver, why.
func (g *Game) Outcome() (Outcome, Reason) { return g.outcome, g.reason }

// Score returns the total agents rescued across completed levels.
func (g *Game) Score() int { return g.score }

// Attempt returns the attempt number for the current level, starting at 1.
func (g *Game) Attempt() int { return g.attempt }

// Boosting reports whether the player is boosting.
func (g *Game) Boosting() bool { return g.boosting }

// PerfStats returns the rolling performance statistics.
func (g *Game) PerfStats() telemetry.PerfStats { return g.perfCollector.Stats() }

// RecordFrame records frame timing for the windowed viewer.
func (g *Game) RecordFrame() { g.perfCollector.RecordFrame() }

// DrainEvents returns queued events and empties the queue.
func (g *Game) DrainEvents() []Event {
	out := g.events
	g.events = nil
	return out
}

func (g *Game) emit(ev Event) {
	ev.Tick = g.tick
	g.events = append(g.events, ev)
}

// Unload releases output files.
func (g *Game) Unload() error {
	return g.outputManager.Close()
}
