package main

import (
	"context"
	"math"
	"runtime"
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/influence/config"
	"github.com/pthm-cable/influence/game"
	"github.com/pthm-cable/influence/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	frames     int64
	window     int
	seeds      [][]float64 // position seeds, one run each
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, frames int64, window int, seeds [][]float64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		frames:     frames,
		window:     window,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated mean quality over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	qualities := make([]float64, len(fe.seeds))
	workers := max(1, runtime.GOMAXPROCS(0)/len(fe.seeds))

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s []float64) {
			defer wg.Done()
			qualities[idx] = computeQuality(fe.runSimulation(x, s, workers))
		}(i, seed)
	}
	wg.Wait()

	quality := stat.Mean(qualities, nil)
	fe.mu.Lock()
	fe.lastQuality = quality
	fe.mu.Unlock()

	return -quality
}

// runSimulation executes a single headless run and returns its stats windows.
// A run that fails to start or errors part way returns what it collected.
func (fe *FitnessEvaluator) runSimulation(x, seed []float64, workers int) []telemetry.FieldStats {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Seed.Position = seed
	cfg.Telemetry.LogEvery = fe.window
	if err := cfg.Validate(); err != nil {
		return nil
	}

	var windows []telemetry.FieldStats
	g, err := game.NewGameWithOptions(game.Options{
		Config:   cfg,
		Workers:  workers,
		Headless: true,
		StatsCallback: func(stats telemetry.FieldStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil
	}
	defer g.Unload()

	_ = g.RunHeadless(context.Background(), fe.frames)
	return windows
}

// copyConfig creates a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Relations = slices.Clone(fe.baseConfig.Relations)
	cfg.Seed.Position = slices.Clone(fe.baseConfig.Seed.Position)
	cfg.Seed.Velocity = slices.Clone(fe.baseConfig.Seed.Velocity)
	cfg.Seed.Color = slices.Clone(fe.baseConfig.Seed.Color)
	cfg.Seed.Palette = slices.Clone(fe.baseConfig.Seed.Palette)
	cfg.Control.Autoplay = true
	return &cfg
}

// Quality component weights.
const (
	qualityWeightMotion    = 0.40
	qualityWeightStructure = 0.40
	qualityWeightStability = 0.20

	qualityWarmupWindows = 2 // skip first N windows (warmup)

	// targetSpeed is the mean speed, in screen widths per frame, scored highest.
	targetSpeed = 0.002
)

// computeQuality scores a run in [0, 1]: particles keep moving at a moderate
// speed, gather into visible structure and do so steadily. Any non-finite
// state scores zero.
func computeQuality(windows []telemetry.FieldStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	speeds := make([]float64, 0, len(valid))
	var motionSum, structureSum float64
	for _, w := range valid {
		if w.NonFinite > 0 {
			return 0
		}
		speeds = append(speeds, w.SpeedMean)

		// 1. Motion: log-normal bump around the target speed
		if w.SpeedMean > 0 {
			logErr := math.Log(w.SpeedMean / targetSpeed)
			motionSum += math.Exp(-logErr * logErr / 2.0)
		}

		// 2. Structure: contrast of the influence field
		if w.InfluenceMean > 0 {
			structureSum += clamp01(w.InfluenceStd / w.InfluenceMean / 2.0)
		}
	}

	n := float64(len(valid))
	motionScore := motionSum / n
	structureScore := structureSum / n

	// 3. Stability: CV of the mean speed across windows
	stabilityScore := 0.0
	if len(speeds) >= 2 {
		c := cv(speeds)
		stabilityScore = math.Exp(-c * c)
	}

	quality := qualityWeightMotion*motionScore +
		qualityWeightStructure*structureScore +
		qualityWeightStability*stabilityScore

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
