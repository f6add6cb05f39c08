package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FieldStats summarises the swarm at the end of a window.
type FieldStats struct {
	Frame     int64 `csv:"frame"`
	Particles int   `csv:"particles"`

	// Per-particle speed |velocity.xy|
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Centroid of positions (not torus-aware)
	PosMeanX float64 `csv:"pos_mean_x"`
	PosMeanY float64 `csv:"pos_mean_y"`

	// Influence field occupancy
	InfluenceMean float64 `csv:"influence_mean"` // mean alpha
	InfluenceStd  float64 `csv:"influence_std"`  // high when particles clump
	Coverage      float64 `csv:"coverage"`       // fraction of texels with alpha > 0

	// Texels whose position or velocity was not finite
	NonFinite int `csv:"non_finite"`
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

// Distribution calculates population mean, std, and percentiles of values.
func Distribution(values []float64) (mean, std, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, std, Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// ComputeFieldStats reduces raw RGBA texel data of the position, velocity and
// influence images. positions and velocities must have the same length.
func ComputeFieldStats(frame int64, positions, velocities, influence []float32) FieldStats {
	n := len(positions) / 4
	fs := FieldStats{Frame: frame, Particles: n}

	speeds := make([]float64, 0, n)
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		px, py := float64(positions[i*4]), float64(positions[i*4+1])
		vx, vy := float64(velocities[i*4]), float64(velocities[i*4+1])
		if !finite(px) || !finite(py) || !finite(vx) || !finite(vy) {
			fs.NonFinite++
			continue
		}
		xs = append(xs, px)
		ys = append(ys, py)
		speeds = append(speeds, math.Hypot(vx, vy))
	}

	fs.SpeedMean, fs.SpeedStd, fs.SpeedP50, fs.SpeedP90 = Distribution(speeds)
	if len(speeds) > 0 {
		fs.SpeedMax = floats.Max(speeds)
		fs.PosMeanX = stat.Mean(xs, nil)
		fs.PosMeanY = stat.Mean(ys, nil)
	}

	texels := len(influence) / 4
	if texels > 0 {
		alpha := make([]float64, texels)
		covered := 0
		for i := range alpha {
			alpha[i] = float64(influence[i*4+3])
			if alpha[i] > 0 {
				covered++
			}
		}
		fs.InfluenceMean = floats.Sum(alpha) / float64(texels)
		_, fs.InfluenceStd = stat.PopMeanStdDev(alpha, nil)
		fs.Coverage = float64(covered) / float64(texels)
	}
	return fs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LogValue implements slog.LogValuer for structured logging.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("frame", s.Frame),
		slog.Int("particles", s.Particles),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("pos_mean_x", s.PosMeanX),
		slog.Float64("pos_mean_y", s.PosMeanY),
		slog.Float64("influence_mean", s.InfluenceMean),
		slog.Float64("influence_std", s.InfluenceStd),
		slog.Float64("coverage", s.Coverage),
		slog.Int("non_finite", s.NonFinite),
	)
}

// LogStats logs the field stats using slog.
func (s FieldStats) LogStats() {
	slog.Info("field",
		"frame", s.Frame,
		"particles", s.Particles,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"speed_max", s.SpeedMax,
		"coverage", s.Coverage,
		"non_finite", s.NonFinite,
	)
}
