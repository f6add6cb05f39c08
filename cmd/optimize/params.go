// Package main provides CMA-ES optimization for influence swarm parameters.
package main

import (
	"fmt"

	"github.com/pthm-cable/influence/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters: the nine
// relation coefficients followed by the splat shape and velocity smoothing.
func NewParamVector() *ParamVector {
	specs := make([]ParamSpec, 0, 12)
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			specs = append(specs, ParamSpec{
				Name: fmt.Sprintf("rel_%d%d", row, col),
				Path: fmt.Sprintf("relations[%d]", col*3+row),
				Min:  -1,
				Max:  1,
			})
		}
	}
	specs = append(specs,
		ParamSpec{Name: "size", Path: "sim.size", Min: 2, Max: 12},
		ParamSpec{Name: "spread", Path: "sim.spread", Min: 2, Max: 16},
		ParamSpec{Name: "smoothing", Path: "sim.smoothing", Min: 0.3, Max: 0.98},
	)
	return &ParamVector{Specs: specs}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into cfg. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Relations = make([]float64, 9)
	copy(cfg.Relations, clamped[:9])
	cfg.Sim.Size = clamped[9]
	cfg.Sim.Spread = clamped[10]
	cfg.Sim.Smoothing = clamped[11]
}

// ExtractFromConfig reads the current parameter values from cfg, clamped to bounds.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, 0, len(pv.Specs))
	v = append(v, cfg.Relations...)
	v = append(v, cfg.Sim.Size, cfg.Sim.Spread, cfg.Sim.Smoothing)
	return pv.Clamp(v)
}
