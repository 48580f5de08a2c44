package game

import (
	"github.com/pthm-cable/herd/systems"
	"github.com/pthm-cable/herd/telemetry"
)

// Step advances the simulation by dt seconds. It does nothing once the
// current attempt has ended.
func (g *Game) Step(dt float64) {
	if g.outcome != Running {
		return
	}

	// Pick up live tuning edits
	g.cfg = g.tuning.Snapshot()
	g.cfg.Refresh()
	cfg := &g.cfg
	walls := g.level.Walls

	g.perfCollector.StartTick()

	// 1. Taming
	g.perfCollector.StartPhase(telemetry.PhaseTaming)
	for _, t := range g.taming.Update(g.world, cfg, g.boosting) {
		if t.To == systems.Tamed {
			g.emit(Event{Kind: EventTamed, Entity: t.Entity})
			g.collector.RecordTamed()
		} else {
			g.emit(Event{Kind: EventWild, Entity: t.Entity})
			g.collector.RecordReleased()
		}
	}

	// 2. Steering from the pre-move snapshot, then player input
	g.perfCollector.StartPhase(telemetry.PhaseSteering)
	g.steering.Update(g.world, walls, cfg, g.wander())
	g.applyPlayerInput()

	// 3. Motion
	g.perfCollector.StartPhase(telemetry.PhaseMotion)
	collided := g.motion.Update(g.world, walls, cfg, dt)

	// 4. Collisions
	g.perfCollector.StartPhase(telemetry.PhaseCleanup)
	g.consumeCollisions(collided)

	g.tick++
	g.elapsed += dt

	// 5. Outcome
	g.perfCollector.StartPhase(telemetry.PhaseOutcome)
	g.checkOutcome()

	// 6. Telemetry
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// wander reports whether wild agents align with each other on this level.
func (g *Game) wander() bool {
	return g.cfg.Boids.Wander || g.level.Def.Wander
}

// checkOutcome ends the attempt when the player reaches the finish or runs
// out of time.
func (g *Game) checkOutcome() {
	if g.outcome != Running {
		return
	}
	def := g.level.Def

	pos, _, _ := g.PlayerState()
	if g.level.InFinish(pos) {
		tamed, _ := g.Counts()
		if tamed >= def.RescueGoal {
			g.finish(LevelComplete, NoReason)
		} else {
			g.finish(GameOver, OutOfBoids)
		}
		return
	}

	if def.TimeGoal > 0 && g.elapsed > def.TimeGoal {
		g.finish(GameOver, OutOfTime)
	}
}
