package telemetry

import (
	"math"
	"strings"
	"testing"
	"time"
)

type manualClock struct {
	t time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Unix(1_000_000, 0)}
}

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type phaseSpan struct {
	phase string
	dur   time.Duration
}

// runTick times one tick made of the given spans.
func runTick(pc *PerfCollector, clk *manualClock, spans ...phaseSpan) {
	pc.StartTick()
	for _, s := range spans {
		pc.StartPhase(s.phase)
		clk.advance(s.dur)
	}
	pc.EndTick()
}

func TestPerfCollectorPhaseSplit(t *testing.T) {
	tests := []struct {
		name    string
		spans   []phaseSpan
		wantPct map[string]float64
	}{
		{
			name: "steering dominates",
			spans: []phaseSpan{
				{PhaseTaming, time.Millisecond},
				{PhaseSteering, 6 * time.Millisecond},
				{PhaseMotion, 3 * time.Millisecond},
			},
			wantPct: map[string]float64{PhaseTaming: 10, PhaseSteering: 60, PhaseMotion: 30},
		},
		{
			name: "all phases even",
			spans: []phaseSpan{
				{PhaseTaming, time.Millisecond},
				{PhaseSteering, time.Millisecond},
				{PhaseMotion, time.Millisecond},
				{PhaseOutcome, time.Millisecond},
			},
			wantPct: map[string]float64{PhaseTaming: 25, PhaseSteering: 25, PhaseMotion: 25, PhaseOutcome: 25},
		},
		{
			name: "unknown phase is untracked time",
			spans: []phaseSpan{
				{PhaseSteering, 2 * time.Millisecond},
				{"render", 2 * time.Millisecond},
			},
			wantPct: map[string]float64{PhaseSteering: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := newManualClock()
			pc := NewPerfCollectorWithClock(10, clk.now)
			for i := 0; i < 4; i++ {
				runTick(pc, clk, tt.spans...)
			}

			stats := pc.Stats()
			if len(stats.PhasePct) != len(tt.wantPct) {
				t.Errorf("tracked phases = %v, want %v", stats.PhasePct, tt.wantPct)
			}
			for phase, want := range tt.wantPct {
				if got := stats.PhasePct[phase]; math.Abs(got-want) > 1e-9 {
					t.Errorf("%s pct = %v, want %v", phase, got, want)
				}
			}
			for _, s := range tt.spans {
				if _, ok := tt.wantPct[s.phase]; !ok {
					continue
				}
				if got := stats.PhaseAvg[s.phase]; got != s.dur {
					t.Errorf("%s avg = %v, want %v", s.phase, got, s.dur)
				}
			}
		})
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	clk := newManualClock()
	pc := NewPerfCollectorWithClock(3, clk.now)

	for ms := 1; ms <= 5; ms++ {
		runTick(pc, clk, phaseSpan{PhaseMotion, time.Duration(ms) * time.Millisecond})
	}

	stats := pc.Stats()
	if stats.AvgTickDuration != 4*time.Millisecond {
		t.Errorf("avg = %v, want 4ms", stats.AvgTickDuration)
	}
	if stats.MinTickDuration != 3*time.Millisecond || stats.MaxTickDuration != 5*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 3ms/5ms", stats.MinTickDuration, stats.MaxTickDuration)
	}
	if math.Abs(stats.TicksPerSecond-250) > 1e-9 {
		t.Errorf("ticks/sec = %v, want 250", stats.TicksPerSecond)
	}
	if math.Abs(stats.PhasePct[PhaseMotion]-100) > 1e-9 {
		t.Errorf("motion pct = %v, want 100", stats.PhasePct[PhaseMotion])
	}
}

func TestPerfCollectorTickStartsClean(t *testing.T) {
	clk := newManualClock()
	pc := NewPerfCollectorWithClock(1, clk.now)

	runTick(pc, clk, phaseSpan{PhaseTaming, 5 * time.Millisecond})
	// Phase totals from the previous tick must not leak into this one.
	pc.StartTick()
	pc.StartPhase(PhaseSteering)
	clk.advance(2 * time.Millisecond)
	pc.EndTick()

	stats := pc.Stats()
	if _, ok := stats.PhaseAvg[PhaseTaming]; ok {
		t.Errorf("taming carried into the next tick: %v", stats.PhaseAvg)
	}
	if stats.PhaseAvg[PhaseSteering] != 2*time.Millisecond {
		t.Errorf("steering avg = %v, want 2ms", stats.PhaseAvg[PhaseSteering])
	}
}

func TestPerfCollectorEmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("empty stats = %+v, want zero timings", stats)
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollectorNilSafe(t *testing.T) {
	var pc *PerfCollector
	pc.StartTick()
	pc.StartPhase(PhaseMotion)
	pc.EndTick()
	pc.RecordFrame()
}

func TestPerfCollectorFrameTiming(t *testing.T) {
	clk := newManualClock()
	pc := NewPerfCollectorWithClock(10, clk.now)

	pc.RecordFrame()
	if fps := pc.Stats().FPS; fps != 0 {
		t.Errorf("fps after one frame = %v, want 0", fps)
	}

	clk.advance(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration != 16*time.Millisecond {
		t.Errorf("frame = %v, want 16ms", stats.FrameDuration)
	}
	if math.Abs(stats.FPS-62.5) > 1e-9 {
		t.Errorf("fps = %v, want 62.5", stats.FPS)
	}
}

func TestPerfStatsLogValuePhaseOrder(t *testing.T) {
	stats := PerfStats{PhasePct: map[string]float64{}}
	// Insert in reverse so map order cannot line up by accident.
	for i := len(Phases) - 1; i >= 0; i-- {
		stats.PhasePct[Phases[i]] = float64(i + 1)
	}

	var keys []string
	for _, a := range stats.LogValue().Group() {
		if strings.HasSuffix(a.Key, "_pct") {
			keys = append(keys, a.Key)
		}
	}

	if len(keys) != len(Phases) {
		t.Fatalf("pct keys = %v, want one per phase", keys)
	}
	for i, phase := range Phases {
		if keys[i] != phase+"_pct" {
			t.Errorf("key %d = %q, want %q", i, keys[i], phase+"_pct")
		}
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration: 1500 * time.Microsecond,
		PhasePct: map[string]float64{
			PhaseTaming:    5,
			PhaseSteering:  55,
			PhaseMotion:    25,
			PhaseCleanup:   4,
			PhaseOutcome:   1,
			PhaseTelemetry: 10,
		},
	}

	row := stats.ToCSV(600)
	if row.WindowEnd != 600 || row.AvgTickUS != 1500 {
		t.Errorf("row header = %d/%d, want 600/1500", row.WindowEnd, row.AvgTickUS)
	}
	got := []float64{row.TamingPct, row.SteeringPct, row.MotionPct, row.CleanupPct, row.OutcomePct, row.TelemetryPct}
	for i, phase := range Phases {
		if got[i] != stats.PhasePct[phase] {
			t.Errorf("%s column = %v, want %v", phase, got[i], stats.PhasePct[phase])
		}
	}
}
