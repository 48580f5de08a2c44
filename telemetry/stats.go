package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Level           string  `csv:"level"`

	// Population at window end
	Tamed int `csv:"tamed"`
	Wild  int `csv:"wild"`

	// Events during window
	Tamings    int `csv:"tamings"`
	Releases   int `csv:"releases"`
	Collisions int `csv:"collisions"`
	Despawns   int `csv:"despawns"`

	// Speed distribution of non-player agents (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Flock order: 1 when every agent faces the same way, 0 when headings cancel
	Polarization float64 `csv:"polarization"`
	// Mean distance from tamed agents to the player
	TamedSpread float64 `csv:"tamed_spread"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution summarises a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeDistribution calculates mean, population std and percentiles.
func ComputeDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean: mean,
		Std:  std,
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// Polarization returns the length of the mean heading. Headings are assumed
// to be unit vectors.
func Polarization(headings []r2.Vec) float64 {
	if len(headings) == 0 {
		return 0
	}
	xs := make([]float64, len(headings))
	ys := make([]float64, len(headings))
	for i, h := range headings {
		xs[i], ys[i] = h.X, h.Y
	}
	n := float64(len(headings))
	return r2.Norm(r2.Vec{X: floats.Sum(xs) / n, Y: floats.Sum(ys) / n})
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("level", s.Level),
		slog.Int("tamed", s.Tamed),
		slog.Int("wild", s.Wild),
		slog.Int("tamings", s.Tamings),
		slog.Int("releases", s.Releases),
		slog.Int("collisions", s.Collisions),
		slog.Int("despawns", s.Despawns),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("polarization", s.Polarization),
		slog.Float64("tamed_spread", s.TamedSpread),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"level", s.Level,
		"tamed", s.Tamed,
		"wild", s.Wild,
		"tamings", s.Tamings,
		"releases", s.Releases,
		"collisions", s.Collisions,
		"despawns", s.Despawns,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"polarization", s.Polarization,
		"tamed_spread", s.TamedSpread,
	)
}
