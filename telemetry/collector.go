// Package telemetry records flock health over time windows, per-phase timing
// and level results, and writes them as CSV.
package telemetry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Population is the state sampled when a window is flushed.
type Population struct {
	Level    string
	Tamed    int
	Wild     int
	Speeds   []float64
	Headings []r2.Vec
	// Distances from each tamed agent to the player
	TamedDistances []float64
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	tamings    int
	releases   int
	collisions int
	despawns   int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordTamed records a wild agent becoming tamed.
func (c *Collector) RecordTamed() {
	c.tamings++
}

// RecordReleased records a tamed agent going wild again.
func (c *Collector) RecordReleased() {
	c.releases++
}

// RecordCollision records a rejected move.
func (c *Collector) RecordCollision() {
	c.collisions++
}

// RecordDespawn records an agent removed after a collision.
func (c *Collector) RecordDespawn() {
	c.despawns++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, pop Population) WindowStats {
	speeds := ComputeDistribution(pop.Speeds)

	var spread float64
	if len(pop.TamedDistances) > 0 {
		spread = ComputeDistribution(pop.TamedDistances).Mean
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		Level:           pop.Level,

		Tamed: pop.Tamed,
		Wild:  pop.Wild,

		Tamings:    c.tamings,
		Releases:   c.releases,
		Collisions: c.collisions,
		Despawns:   c.despawns,

		SpeedMean: speeds.Mean,
		SpeedStd:  speeds.Std,
		SpeedP10:  speeds.P10,
		SpeedP50:  speeds.P50,
		SpeedP90:  speeds.P90,

		Polarization: Polarization(pop.Headings),
		TamedSpread:  spread,
	}

	c.Reset(currentTick)
	return stats
}

// Reset clears the counters and starts a new window at tick.
func (c *Collector) Reset(tick int32) {
	c.windowStartTick = tick
	c.tamings = 0
	c.releases = 0
	c.collisions = 0
	c.despawns = 0
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
