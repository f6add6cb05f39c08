package config

import (
	"github.com/pthm-cable/influence/gpu"
	"github.com/pthm-cable/influence/systems"
)

// Params is the per-kernel projection of a validated Config. Kernels only
// ever see these structs, never the config itself.
type Params struct {
	Store     systems.StoreSpec
	Influence systems.SplatParams
	Velocity  systems.VelocityParams
	Integrate systems.IntegrateParams
	Composite systems.CompositeParams

	PositionSeed gpu.Vec2
	VelocitySeed gpu.Vec2
	ColorSeed    gpu.Vec2
	ColorMode    systems.SeedMode
	Palette      []gpu.Vec4
}

// Params builds kernel parameters from the config. Validate must have
// succeeded first.
func (c *Config) Params() Params {
	d := c.Derived
	display := gpu.Vec2{X: float32(d.DisplayW), Y: float32(d.DisplayH)}
	iw, ih := systems.InfluenceSize(d.DisplayW, d.DisplayH, c.Sim.InfluenceScale)

	return Params{
		Store: systems.StoreSpec{
			N:               c.Sim.N,
			Width:           d.DisplayW,
			Height:          d.DisplayH,
			InfluenceScale:  c.Sim.InfluenceScale,
			InfluenceFormat: d.InfluenceFormat,
		},
		Influence: systems.SplatParams{
			Resolution:     gpu.Vec2{X: float32(iw), Y: float32(ih)},
			Size:           float32(c.Sim.Size),
			Spread:         float32(c.Sim.Spread),
			InfluenceScale: float32(c.Sim.InfluenceScale),
			AlphaScale:     float32(c.Sim.AlphaScale),
			Premultiplied:  c.Composite.Premultiplied,
			Blend:          d.SplatBlend,
		},
		Velocity: systems.VelocityParams{
			Resolution:    display,
			Size:          float32(c.Sim.Size),
			Spread:        float32(c.Sim.Spread),
			Probes:        c.Sim.Probes,
			RingFrequency: float32(c.Sim.RingFrequency),
			Relations:     d.Relations,
			Combine:       d.BiasCombine,
			Weight:        d.ProbeWeight,
			Mode:          d.VelocityMode,
			Smoothing:     float32(c.Sim.Smoothing),
			SpeedCap:      float32(c.Sim.SpeedCap),
			SelfRepulsion: float32(c.Sim.SelfRepulsion),
			PointerGain:   float32(c.Pointer.VelocityGain),
		},
		Integrate: systems.IntegrateParams{
			SpeedDivisor: float32(c.Sim.SpeedDivisor),
		},
		Composite: systems.CompositeParams{
			Decay:  float32(c.Composite.Decay),
			Trails: c.Composite.Trails,
			Debug:  c.Control.Debug,
			Overlay: systems.SplatParams{
				Resolution:     display,
				Size:           float32(c.Composite.Size),
				Spread:         1,
				InfluenceScale: 1,
				AlphaScale:     float32(c.Composite.AlphaScale),
				Premultiplied:  c.Composite.Premultiplied,
				Blend:          d.OverlayBlend,
				PointerRadius:  float32(c.Pointer.SplatRepulsion),
			},
		},
		PositionSeed: vec2(c.Seed.Position),
		VelocitySeed: vec2(c.Seed.Velocity),
		ColorSeed:    vec2(c.Seed.Color),
		ColorMode:    d.ColorMode,
		Palette:      d.Palette,
	}
}

func vec2(v []float64) gpu.Vec2 {
	if len(v) < 2 {
		return gpu.Vec2{}
	}
	return gpu.Vec2{X: float32(v[0]), Y: float32(v[1])}
}
