package main

import (
	"fmt"
	"sync"

	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/game"
	"github.com/pthm-cable/herd/level"
	"github.com/pthm-cable/herd/systems"
	"github.com/pthm-cable/herd/telemetry"
)

// Fitness weights. Lower fitness is better.
const (
	crashWeight        = 0.5
	polarizationWeight = 0.25
)

// Evaluation is the aggregate of one parameter vector over every level.
type Evaluation struct {
	Fitness      float64
	DespawnRate  float64 // Despawned agents per spawned agent
	CrashRate    float64 // Player wall hits per attempt
	Polarization float64 // Mean over all telemetry windows
	Rescued      int     // Agents tamed at completed finishes
	Err          error
}

// levelRun holds the raw counts from one level.
type levelRun struct {
	spawned   int
	despawns  int
	attempts  int
	crashes   int
	rescued   int
	polSum    float64
	polWindow int
	err       error
}

// FitnessEvaluator runs headless games and scores steering weights.
type FitnessEvaluator struct {
	params   *ParamVector
	base     *config.Config
	registry *level.Registry
	levels   []string
	ticks    int

	mu   sync.Mutex
	last Evaluation
}

// NewFitnessEvaluator creates an evaluator over the named levels. Levels are
// resolved up front so concurrent runs only read the registry.
func NewFitnessEvaluator(params *ParamVector, base *config.Config, registry *level.Registry, levels []string, ticks int) (*FitnessEvaluator, error) {
	names := make([]string, 0, len(levels))
	for _, l := range levels {
		def, err := registry.Resolve(l)
		if err != nil {
			return nil, err
		}
		names = append(names, def.Name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no levels to evaluate")
	}
	return &FitnessEvaluator{
		params:   params,
		base:     base,
		registry: registry,
		levels:   names,
		ticks:    ticks,
	}, nil
}

// LastEvaluation returns the breakdown of the most recent Evaluate call.
func (fe *FitnessEvaluator) LastEvaluation() Evaluation {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate computes fitness for raw parameter values (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.base.Snapshot()
	fe.params.ApplyToConfig(&cfg, x)

	// Run all levels in parallel
	runs := make([]levelRun, len(fe.levels))
	var wg sync.WaitGroup
	for i, name := range fe.levels {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			runs[idx] = fe.runLevel(cfg.Snapshot(), name)
		}(i, name)
	}
	wg.Wait()

	ev := aggregate(runs)

	fe.mu.Lock()
	fe.last = ev
	fe.mu.Unlock()

	return ev.Fitness
}

// aggregate combines level runs into one score. A failed run scores worst.
func aggregate(runs []levelRun) Evaluation {
	var spawned, despawns, attempts, crashes, rescued, windows int
	var polSum float64
	for _, r := range runs {
		if r.err != nil {
			return Evaluation{Fitness: 1e9, Err: r.err}
		}
		spawned += r.spawned
		despawns += r.despawns
		attempts += r.attempts
		crashes += r.crashes
		rescued += r.rescued
		polSum += r.polSum
		windows += r.polWindow
	}

	ev := Evaluation{Rescued: rescued}
	if spawned > 0 {
		ev.DespawnRate = float64(despawns) / float64(spawned)
	}
	if attempts > 0 {
		ev.CrashRate = float64(crashes) / float64(attempts)
	}
	if windows > 0 {
		ev.Polarization = polSum / float64(windows)
	}
	ev.Fitness = ev.DespawnRate + crashWeight*ev.CrashRate - polarizationWeight*ev.Polarization
	return ev
}

// runLevel plays one level for the tick budget with the autopilot at the
// controls, retrying whenever an attempt ends.
func (fe *FitnessEvaluator) runLevel(cfg config.Config, name string) levelRun {
	var run levelRun

	g, err := game.NewGame(game.Options{
		Config:   &cfg,
		Registry: fe.registry,
		Level:    name,
		StatsCallback: func(s telemetry.WindowStats) {
			run.polSum += s.Polarization
			run.polWindow++
		},
	})
	if err != nil {
		run.err = err
		return run
	}
	defer g.Unload()

	tamed, wild := g.Counts()
	run.spawned = tamed + wild
	run.attempts = 1

	dt := cfg.Physics.DT
	for i := 0; i < fe.ticks; i++ {
		g.SetTurn(autopilot(g))
		g.Step(dt)

		for _, ev := range g.DrainEvents() {
			switch {
			case ev.Kind == game.EventDespawned:
				run.despawns++
			case ev.Kind == game.EventOutcome && ev.Reason == game.OutOfBounds:
				run.crashes++
			}
		}

		outcome, _ := g.Outcome()
		if outcome == game.Running {
			continue
		}
		if outcome == game.LevelComplete {
			t, _ := g.Counts()
			run.rescued += t
		}
		if err := g.Retry(); err != nil {
			run.err = err
			return run
		}
		tamed, wild := g.Counts()
		run.spawned += tamed + wild
		run.attempts++
	}
	return run
}

// autopilot returns the turn input that keeps the player off the walls: it
// turns toward the avoidance direction while a probe touches a wall and flies
// straight otherwise.
func autopilot(g *game.Game) int {
	pos, heading, _ := g.PlayerState()
	cfg := g.TickConfig()
	force, avoiding := systems.BoundaryForce(pos, heading, cfg.Agents.PlayerVision, g.Level().Walls, cfg)
	if !avoiding {
		return 0
	}
	if cross := heading.X*force.Y - heading.Y*force.X; cross < 0 {
		return -1
	}
	return 1
}
