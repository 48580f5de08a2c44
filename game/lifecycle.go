package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/components"
)

// LoadLevel replaces the field and the whole population with the named level
// (or level file). It must be called between ticks.
func (g *Game) LoadLevel(nameOrPath string) error {
	def, err := g.registry.Resolve(nameOrPath)
	if err != nil {
		return err
	}
	lvl, err := def.Build(g.tuning.Physics.NormalEpsilon)
	if err != nil {
		return fmt.Errorf("building level: %w", err)
	}

	if g.level != nil && g.level.Def.Name == def.Name {
		g.attempt++
	} else {
		g.attempt = 1
	}

	g.clearPopulation()
	g.level = lvl
	g.cfg = g.tuning.Snapshot()
	g.elapsed = 0
	g.outcome = Running
	g.reason = NoReason
	g.turn = 0
	g.boosting = false

	g.player = g.spawnPlayer(def.Start.R2(), def.Heading())
	spawns := def.Spawns(g.cfg.Agents.SpawnRadius)
	for _, s := range spawns {
		g.spawnAgent(s.Pos, s.Heading)
	}
	g.collector.Reset(g.tick)

	slog.Info("level loaded",
		"level", def.Name,
		"attempt", g.attempt,
		"agents", len(spawns),
		"rescue_goal", def.RescueGoal,
		"time_goal", def.TimeGoal,
	)
	return nil
}

// Retry reloads the current level.
func (g *Game) Retry() error {
	return g.LoadLevel(g.level.Def.Name)
}

// Advance loads the next level after a completed one.
func (g *Game) Advance() error {
	if g.outcome != LevelComplete {
		return ErrNotComplete
	}
	next := g.level.Def.Next
	if next == "" {
		return ErrGameComplete
	}
	return g.LoadLevel(next)
}

// spawnPlayer creates the player, not boosting.
func (g *Game) spawnPlayer(pos, heading r2.Vec) ecs.Entity {
	b := &g.cfg.Boids
	a := &g.cfg.Agents
	e := g.agentMapper.NewEntity(
		&components.Transform{Pos: pos},
		&components.Boid{
			ID:            g.newID(),
			Heading:       heading,
			Speed:         b.MinSpeed,
			TurningSpeed:  b.MaxTurnSpeed,
			Vision:        a.PlayerVision,
			PersonalSpace: a.PlayerPersonalSpace,
		},
		&components.Steering{},
		&components.Cosmetic{Mode: components.CosmeticPlayer},
	)
	g.playerMap.Add(e, &components.Player{})
	return e
}

// spawnAgent creates a wild agent.
func (g *Game) spawnAgent(pos, heading r2.Vec) ecs.Entity {
	b := &g.cfg.Boids
	a := &g.cfg.Agents
	return g.agentMapper.NewEntity(
		&components.Transform{Pos: pos},
		&components.Boid{
			ID:            g.newID(),
			Heading:       heading,
			Speed:         b.WildSpeed,
			TurningSpeed:  b.WildTurnSpeed,
			Vision:        a.Vision,
			PersonalSpace: a.PersonalSpace,
		},
		&components.Steering{},
		&components.Cosmetic{Mode: components.CosmeticWild},
	)
}

func (g *Game) newID() uint32 {
	id := g.nextID
	g.nextID++
	return id
}

// clearPopulation removes every entity from the world.
func (g *Game) clearPopulation() {
	// First pass: collect (must complete before modifying)
	g.despawns = g.despawns[:0]
	query := g.allFilter.Query()
	for query.Next() {
		g.despawns = append(g.despawns, query.Entity())
	}

	// Second pass: remove entities (query iteration complete)
	for _, e := range g.despawns {
		g.world.RemoveEntity(e)
	}
	g.despawns = g.despawns[:0]
}

// consumeCollisions handles this tick's rejected moves: the player ends the
// attempt, everyone else despawns.
func (g *Game) consumeCollisions(collided []ecs.Entity) {
	g.despawns = g.despawns[:0]
	for _, e := range collided {
		g.emit(Event{Kind: EventCollided, Entity: e})
		g.collector.RecordCollision()
		if e == g.player {
			g.finish(GameOver, OutOfBounds)
			continue
		}
		g.despawns = append(g.despawns, e)
	}

	for _, e := range g.despawns {
		g.world.RemoveEntity(e)
		g.emit(Event{Kind: EventDespawned, Entity: e})
		g.collector.RecordDespawn()
	}
}

// finish ends the attempt once and records the result.
func (g *Game) finish(o Outcome, r Reason) {
	if g.outcome != Running {
		return
	}
	g.outcome = o
	g.reason = r

	tamed, wild := g.Counts()
	if o == LevelComplete {
		g.score += tamed
	}
	g.emit(Event{Kind: EventOutcome, Outcome: o, Reason: r})

	def := g.level.Def
	slog.Info("level finished",
		"level", def.Name,
		"outcome", o.String(),
		"reason", r.String(),
		"tamed", tamed,
		"goal", def.RescueGoal,
		"elapsed", g.elapsed,
		"score", g.score,
	)

	result := levelResult(def, g.attempt, o, r, g.tick, g.elapsed, tamed, wild, g.score)
	if err := g.outputManager.WriteLevelResult(result); err != nil {
		slog.Error("failed to write level result", "error", err)
	}
}
