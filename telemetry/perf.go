package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step.
const (
	PhaseTaming    = "taming"
	PhaseSteering  = "steering"
	PhaseMotion    = "motion"
	PhaseCleanup   = "cleanup"
	PhaseOutcome   = "outcome"
	PhaseTelemetry = "telemetry"
)

// Phases lists the step phases in execution order.
var Phases = []string{PhaseTaming, PhaseSteering, PhaseMotion, PhaseCleanup, PhaseOutcome, PhaseTelemetry}

// phaseIndex maps a phase name to its slot in Phases.
var phaseIndex = func() map[string]int {
	m := make(map[string]int, len(Phases))
	for i, p := range Phases {
		m[p] = i
	}
	return m
}()

// Clock returns the current time. Tests substitute a manual clock.
type Clock func() time.Time

// tickSample is one tick's duration and its per-phase split, aligned with
// Phases.
type tickSample struct {
	total  time.Duration
	phases []time.Duration
}

// PerfCollector times step phases over a ring of recent ticks.
type PerfCollector struct {
	now Clock

	ring  []tickSample
	next  int
	count int

	current    tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      int // Index into Phases, -1 when no phase is open

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks
// (60 when windowSize < 1) using the wall clock.
func NewPerfCollector(windowSize int) *PerfCollector {
	return NewPerfCollectorWithClock(windowSize, time.Now)
}

// NewPerfCollectorWithClock is NewPerfCollector with an explicit clock.
func NewPerfCollectorWithClock(windowSize int, now Clock) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	ring := make([]tickSample, windowSize)
	for i := range ring {
		ring[i].phases = make([]time.Duration, len(Phases))
	}
	return &PerfCollector{
		now:     now,
		ring:    ring,
		current: tickSample{phases: make([]time.Duration, len(Phases))},
		phase:   -1,
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	if p == nil {
		return
	}
	p.tickStart = p.now()
	p.phase = -1
	clear(p.current.phases)
}

// StartPhase closes the open phase and opens the named one. Names outside
// Phases close the open phase without opening a new one.
func (p *PerfCollector) StartPhase(name string) {
	if p == nil {
		return
	}
	now := p.now()
	p.closePhase(now)
	if i, ok := phaseIndex[name]; ok {
		p.phase = i
		p.phaseStart = now
	}
}

// EndTick closes the open phase and stores the tick in the ring.
func (p *PerfCollector) EndTick() {
	if p == nil {
		return
	}
	now := p.now()
	p.closePhase(now)

	slot := &p.ring[p.next]
	slot.total = now.Sub(p.tickStart)
	copy(slot.phases, p.current.phases)

	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase >= 0 {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
		p.phase = -1
	}
}

// RecordFrame marks a rendered frame; the gap since the previous mark is the
// frame duration.
func (p *PerfCollector) RecordFrame() {
	if p == nil {
		return
	}
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Average duration and share of tick time per phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the ticks currently in the ring.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration, len(Phases)),
		PhasePct:      make(map[string]float64, len(Phases)),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	var total time.Duration
	sums := make([]time.Duration, len(Phases))
	for i, smp := range p.ring[:p.count] {
		total += smp.total
		if i == 0 || smp.total < s.MinTickDuration {
			s.MinTickDuration = smp.total
		}
		s.MaxTickDuration = max(s.MaxTickDuration, smp.total)
		for j, d := range smp.phases {
			sums[j] += d
		}
	}

	n := time.Duration(p.count)
	s.AvgTickDuration = total / n
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	for j, name := range Phases {
		if sums[j] == 0 {
			continue
		}
		s.PhaseAvg[name] = sums[j] / n
		if total > 0 {
			s.PhasePct[name] = float64(sums[j]) / float64(total) * 100
		}
	}
	return s
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer. Phases appear in step order.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	TamingPct    float64 `csv:"taming_pct"`
	SteeringPct  float64 `csv:"steering_pct"`
	MotionPct    float64 `csv:"motion_pct"`
	CleanupPct   float64 `csv:"cleanup_pct"`
	OutcomePct   float64 `csv:"outcome_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		TamingPct:    s.PhasePct[PhaseTaming],
		SteeringPct:  s.PhasePct[PhaseSteering],
		MotionPct:    s.PhasePct[PhaseMotion],
		CleanupPct:   s.PhasePct[PhaseCleanup],
		OutcomePct:   s.PhasePct[PhaseOutcome],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
