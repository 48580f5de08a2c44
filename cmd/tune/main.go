// Package main searches for steering weights that keep flocks off the walls,
// scoring each candidate with headless games.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/level"
)

// Trial is one row of the trial log.
type Trial struct {
	Eval         int     `csv:"eval"`
	Fitness      float64 `csv:"fitness"`
	Separation   float64 `csv:"separation"`
	Cohesion     float64 `csv:"cohesion"`
	Alignment    float64 `csv:"alignment"`
	Boundary     float64 `csv:"boundary"`
	DespawnRate  float64 `csv:"despawn_rate"`
	CrashRate    float64 `csv:"crash_rate"`
	Polarization float64 `csv:"polarization"`
	Rescued      int     `csv:"rescued"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxEvals := flag.Int("max-evals", 0, "Maximum number of evaluations (0 = use config)")
	ticks := flag.Int("ticks", 0, "Ticks per level per evaluation (0 = use config)")
	levels := flag.String("levels", "", "Comma-separated level names or files (empty = use config)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Games log every level load; keep only problems.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *maxEvals <= 0 {
		*maxEvals = baseCfg.Tune.MaxEvaluations
	}
	if *ticks <= 0 {
		*ticks = baseCfg.Tune.TicksPerEval
	}
	levelNames := baseCfg.Tune.Levels
	if *levels != "" {
		levelNames = strings.Split(*levels, ",")
	}

	registry, err := level.Builtin()
	if err != nil {
		log.Fatalf("failed to load levels: %v", err)
	}

	params := NewParamVector(baseCfg)
	evaluator, err := NewFitnessEvaluator(params, baseCfg, registry, levelNames, *ticks)
	if err != nil {
		log.Fatalf("failed to set up evaluator: %v", err)
	}

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential; each evaluation already runs levels in parallel
	}

	method := &optimize.NelderMead{
		SimplexSize: 0.2,
	}

	logPath := filepath.Join(*outputDir, "trials.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	// Wrap the function to log evaluations
	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		// Log clamped values (these are the values actually used)
		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		ev := evaluator.LastEvaluation()
		if ev.Err != nil {
			log.Printf("eval %d failed: %v", evalCount, ev.Err)
		}
		trial := []Trial{{
			Eval:         evalCount,
			Fitness:      fitness,
			Separation:   clamped[0],
			Cohesion:     clamped[1],
			Alignment:    clamped[2],
			Boundary:     clamped[3],
			DespawnRate:  ev.DespawnRate,
			CrashRate:    ev.CrashRate,
			Polarization: ev.Polarization,
			Rescued:      ev.Rescued,
		}}
		var werr error
		if evalCount == 1 {
			werr = gocsv.Marshal(&trial, logFile)
		} else {
			werr = gocsv.MarshalWithoutHeaders(&trial, logFile)
		}
		if werr != nil {
			log.Printf("failed to write trial: %v", werr)
		}

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		fmt.Printf("Eval %d/%d: fitness=%.4f despawn=%.3f crash=%.3f pol=%.2f (best=%.4f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, fitness, ev.DespawnRate, ev.CrashRate, ev.Polarization, bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting Nelder-Mead search over %d weights, max_evals=%d\n", dim, *maxEvals)
	fmt.Printf("Levels: %s, ticks per level: %d\n", strings.Join(levelNames, ","), *ticks)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.4f\n", spec.Path, bestParams[i])
	}

	bestCfg := baseCfg.Snapshot()
	params.ApplyToConfig(&bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
