package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/influence/config"
	"github.com/pthm-cable/influence/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	if pv.Dim() != 12 {
		t.Fatalf("Dim() = %d, want 12", pv.Dim())
	}

	cfg := config.Default()
	raw := pv.ExtractFromConfig(cfg)
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}

	raw[0] = 5 // out of bounds, clamped on apply
	pv.ApplyToConfig(cfg, raw)
	if cfg.Relations[0] != 1 {
		t.Errorf("relations[0] = %v, want clamped 1", cfg.Relations[0])
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("applied config is invalid: %v", err)
	}
}

func windows(n int, speed, infMean, infStd float64) []telemetry.FieldStats {
	out := make([]telemetry.FieldStats, n)
	for i := range out {
		out[i] = telemetry.FieldStats{SpeedMean: speed, InfluenceMean: infMean, InfluenceStd: infStd}
	}
	return out
}

func TestComputeQuality(t *testing.T) {
	tests := []struct {
		name    string
		windows []telemetry.FieldStats
		min     float64
		max     float64
	}{
		{"too few windows", windows(2, targetSpeed, 1, 1), 0, 0},
		{"frozen and uniform", windows(6, 0, 1, 0), 0.19, 0.21},
		{"ideal", windows(6, targetSpeed, 1, 2), 0.99, 1},
		{"moving but uniform", windows(6, targetSpeed, 1, 0), 0.59, 0.61},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := computeQuality(tt.windows)
			if q < tt.min || q > tt.max {
				t.Errorf("computeQuality = %v, want in [%v, %v]", q, tt.min, tt.max)
			}
		})
	}

	t.Run("non-finite scores zero", func(t *testing.T) {
		w := windows(6, targetSpeed, 1, 2)
		w[4].NonFinite = 3
		if q := computeQuality(w); q != 0 {
			t.Errorf("computeQuality = %v, want 0", q)
		}
	})
}
