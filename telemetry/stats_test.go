package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestDistribution(t *testing.T) {
	values := []float64{0.5, 0.1, 0.9, 0.3, 0.7, 0.2, 0.4, 0.6, 0.8, 1.0}
	mean, std, p50, p90 := Distribution(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	// Population std of 0.1..1.0
	if math.Abs(std-0.2872) > 0.001 {
		t.Errorf("std = %v, want ~0.287", std)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
	if values[0] != 0.5 {
		t.Error("Distribution must not reorder its input")
	}
}

func TestDistributionEmpty(t *testing.T) {
	mean, std, p50, p90 := Distribution(nil)
	if mean != 0 || std != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestComputeFieldStats(t *testing.T) {
	positions := []float32{
		0.25, 0.5, 0, 0,
		0.75, 0.5, 0, 0,
		0.5, 0.5, 0, 0,
	}
	velocities := []float32{
		3, 4, 0, 1,
		0, 0, 0, 1,
		float32(math.NaN()), 0, 0, 1,
	}
	influence := []float32{
		1, 0, 0, 0.5,
		0, 0, 0, 0,
		0, 1, 0, 1,
		0, 0, 0, 0,
	}

	fs := ComputeFieldStats(42, positions, velocities, influence)

	if fs.Frame != 42 || fs.Particles != 3 {
		t.Errorf("frame/particles = %d/%d", fs.Frame, fs.Particles)
	}
	if fs.NonFinite != 1 {
		t.Errorf("NonFinite = %d, want 1", fs.NonFinite)
	}
	if fs.SpeedMax != 5 || math.Abs(fs.SpeedMean-2.5) > 1e-9 {
		t.Errorf("speed max/mean = %v/%v, want 5/2.5", fs.SpeedMax, fs.SpeedMean)
	}
	if math.Abs(fs.PosMeanX-0.5) > 1e-9 || math.Abs(fs.PosMeanY-0.5) > 1e-9 {
		t.Errorf("centroid = (%v, %v), want (0.5, 0.5)", fs.PosMeanX, fs.PosMeanY)
	}
	if fs.Coverage != 0.5 || math.Abs(fs.InfluenceMean-0.375) > 1e-9 {
		t.Errorf("coverage/mean = %v/%v, want 0.5/0.375", fs.Coverage, fs.InfluenceMean)
	}
	if math.Abs(fs.InfluenceStd-math.Sqrt(0.171875)) > 1e-9 {
		t.Errorf("InfluenceStd = %v, want %v", fs.InfluenceStd, math.Sqrt(0.171875))
	}
}
