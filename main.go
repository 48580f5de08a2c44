package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/game"
	"github.com/pthm-cable/herd/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	levelName := flag.String("level", "", "Starting level name or JSON file (empty = use config)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	collision := flag.String("collision", "", "Wall collision policy: freeze or reflect (empty = use config)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster runs)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *collision != "" {
		cfg.Physics.Collision = *collision
		if err := cfg.Validate(); err != nil {
			slog.Error("invalid -collision", "error", err)
			os.Exit(1)
		}
		cfg.Refresh()
	}

	opts := game.Options{
		Config:         cfg,
		Level:          *levelName,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
	}

	if *headless {
		if err := runHeadless(opts, cfg, *maxTicks, *stepsPerUpdate); err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Herd")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	// Escape deselects in the inspector instead of quitting.
	rl.SetExitKey(0)

	v, err := ui.NewViewer(opts, *stepsPerUpdate)
	if err != nil {
		slog.Error("failed to start game", "error", err)
		return
	}
	defer func() {
		if err := v.Unload(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	v.Run(*maxTicks)
}

// runHeadless plays levels without a window: the player flies straight
// without boosting, which is enough to exercise the flock and produce
// telemetry.
func runHeadless(opts game.Options, cfg *config.Config, maxTicks, stepsPerUpdate int) error {
	g, err := game.NewGame(opts)
	if err != nil {
		return err
	}
	slog.Info("headless telemetry", "stats_window", opts.StatsWindowSec, "output_dir", opts.OutputDir)
	return game.RunHeadless(g, maxTicks, stepsPerUpdate, cfg.Game.RetryOnFailure)
}
