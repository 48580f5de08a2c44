package game

import (
	"errors"
	"log/slog"
)

// RunHeadless plays g without a window until maxTicks pass (0 = no limit),
// the last level is complete, or an attempt fails without retry. Completed
// levels advance; failed attempts are retried when retry is set. g is
// unloaded before returning and a close failure is part of the result.
func RunHeadless(g *Game, maxTicks, stepsPerUpdate int, retry bool) (err error) {
	defer func() {
		if cerr := g.Unload(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}
	dt := g.Config().Physics.DT

	slog.Info("starting headless simulation",
		"level", g.Level().Def.Name,
		"max_ticks", maxTicks,
		"steps_per_update", stepsPerUpdate,
		"collision", g.Config().Physics.Collision,
	)

	for {
		for i := 0; i < stepsPerUpdate; i++ {
			g.Step(dt)
		}

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick(), "score", g.Score())
			return nil
		}

		outcome, _ := g.Outcome()
		switch outcome {
		case Running:
			continue
		case LevelComplete:
			err := g.Advance()
			if errors.Is(err, ErrGameComplete) {
				slog.Info("game complete", "tick", g.Tick(), "score", g.Score())
				return nil
			}
			if err != nil {
				return err
			}
		case GameOver:
			if !retry {
				slog.Info("game over", "tick", g.Tick(), "score", g.Score())
				return nil
			}
			if err := g.Retry(); err != nil {
				return err
			}
		}
	}
}
