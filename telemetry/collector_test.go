package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestCollectorWindowTicks(t *testing.T) {
	tests := []struct {
		name   string
		window float64
		dt     float64
		want   int32
	}{
		{"five seconds at 60hz", 5, 1.0 / 60, 300},
		{"shorter than a tick", 0.001, 1.0 / 60, 1},
		{"rounds", 1, 0.3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector(tt.window, tt.dt)
			if got := c.WindowDurationTicks(); got != tt.want {
				t.Errorf("WindowDurationTicks() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1, 0.5)

	if c.ShouldFlush(1) {
		t.Fatal("should not flush before the window ends")
	}
	if !c.ShouldFlush(2) {
		t.Fatal("should flush once the window ends")
	}

	c.RecordTamed()
	c.RecordTamed()
	c.RecordReleased()
	c.RecordCollision()
	c.RecordDespawn()

	stats := c.Flush(2, Population{
		Level:          "meadow",
		Tamed:          2,
		Wild:           1,
		Speeds:         []float64{500, 500, 1000},
		Headings:       []r2.Vec{{Y: 1}, {Y: 1}, {Y: 1}},
		TamedDistances: []float64{100, 300},
	})

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 2 {
		t.Errorf("window = [%d, %d], want [0, 2]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if stats.SimTimeSec != 1 {
		t.Errorf("SimTimeSec = %v, want 1", stats.SimTimeSec)
	}
	if stats.Level != "meadow" || stats.Tamed != 2 || stats.Wild != 1 {
		t.Errorf("population = %+v", stats)
	}
	if stats.Tamings != 2 || stats.Releases != 1 || stats.Collisions != 1 || stats.Despawns != 1 {
		t.Errorf("events = %d/%d/%d/%d, want 2/1/1/1",
			stats.Tamings, stats.Releases, stats.Collisions, stats.Despawns)
	}
	if math.Abs(stats.SpeedMean-2000.0/3) > 1e-9 {
		t.Errorf("SpeedMean = %v", stats.SpeedMean)
	}
	if math.Abs(stats.Polarization-1) > 1e-9 {
		t.Errorf("Polarization = %v, want 1", stats.Polarization)
	}
	if stats.TamedSpread != 200 {
		t.Errorf("TamedSpread = %v, want 200", stats.TamedSpread)
	}

	// Counters reset and the next window starts at the flush tick.
	next := c.Flush(4, Population{})
	if next.WindowStartTick != 2 {
		t.Errorf("next window start = %d, want 2", next.WindowStartTick)
	}
	if next.Tamings != 0 || next.Collisions != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.TamedSpread != 0 {
		t.Errorf("TamedSpread with no tamed agents = %v, want 0", next.TamedSpread)
	}
}
