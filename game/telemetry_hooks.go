package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/level"
	"github.com/pthm-cable/herd/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and writes it.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.samplePopulation())
	perfStats := g.perfCollector.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// samplePopulation collects the non-player state a stats window reports.
func (g *Game) samplePopulation() telemetry.Population {
	pop := telemetry.Population{Level: g.level.Def.Name}
	playerPos, _, _ := g.PlayerState()

	query := g.agentFilter.Query()
	for query.Next() {
		e := query.Entity()
		if g.playerMap.Has(e) {
			continue
		}
		tr, boid := query.Get()

		pop.Speeds = append(pop.Speeds, boid.Speed)
		pop.Headings = append(pop.Headings, boid.Heading)
		if g.tamedMap.Has(e) {
			pop.Tamed++
			pop.TamedDistances = append(pop.TamedDistances, r2.Norm(r2.Sub(tr.Pos, playerPos)))
		} else {
			pop.Wild++
		}
	}
	return pop
}

func levelResult(def *level.Def, attempt int, o Outcome, r Reason, tick int32, elapsed float64, tamed, wild, score int) telemetry.LevelResult {
	return telemetry.LevelResult{
		Level:     def.Name,
		Attempt:   attempt,
		Outcome:   o.String(),
		Reason:    r.String(),
		Tick:      tick,
		SimTime:   elapsed,
		Rescued:   tamed,
		Goal:      def.RescueGoal,
		Remaining: tamed + wild,
		Score:     score,
	}
}
