package game

import (
	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/level"
	"github.com/pthm-cable/herd/telemetry"
)

// Options configures a new Game.
type Options struct {
	// Config is the live tuning config. Nil uses config.Cfg().
	Config *config.Config
	// Registry resolves level names. Nil uses the built-in levels.
	Registry *level.Registry
	// Level is a level name or JSON path. Empty uses game.start_level.
	Level string

	LogStats       bool
	StatsWindowSec float64 // 0 uses telemetry.stats_window
	OutputDir      string
	StatsCallback  func(telemetry.WindowStats)
}
