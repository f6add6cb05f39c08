// Package config provides configuration loading and access for the simulation.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	css "github.com/mazznoer/csscolorparser"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/influence/gpu"
	"github.com/pthm-cable/influence/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned for configuration values the simulation cannot run with.
var ErrInvalid = errors.New("invalid config")

// MaxRelationGain bounds the relation matrix's induced infinity norm. Past
// it a single probe's pull swamps the speed cap and the swarm shatters.
const MaxRelationGain = 8

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Sim       SimConfig       `yaml:"sim"`
	Seed      SeedConfig      `yaml:"seed"`
	Relations []float64       `yaml:"relations"`
	Composite CompositeConfig `yaml:"composite"`
	Pointer   PointerConfig   `yaml:"pointer"`
	Control   ControlConfig   `yaml:"control"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	TargetFPS  int     `yaml:"target_fps"`
	PixelRatio float64 `yaml:"pixel_ratio"`
}

// SimConfig holds the particle kernel parameters.
type SimConfig struct {
	N               int     `yaml:"n"`
	Size            float64 `yaml:"size"`
	Spread          float64 `yaml:"spread"`
	InfluenceScale  int     `yaml:"influence_scale"`
	AlphaScale      float64 `yaml:"alpha_scale"`
	Probes          int     `yaml:"probes"`
	RingFrequency   float64 `yaml:"ring_frequency"`
	SpeedDivisor    float64 `yaml:"speed_divisor"`
	VelocityMode    string  `yaml:"velocity_mode"`
	Smoothing       float64 `yaml:"smoothing"`
	ProbeWeight     string  `yaml:"probe_weight"`
	BiasCombine     string  `yaml:"bias_combine"`
	SpeedCap        float64 `yaml:"speed_cap"`
	SelfRepulsion   float64 `yaml:"self_repulsion"`
	InfluenceFormat string  `yaml:"influence_format"`
}

// SeedConfig holds the hash seeds used to initialise the state store.
type SeedConfig struct {
	Position  []float64 `yaml:"position"`
	Velocity  []float64 `yaml:"velocity"`
	Color     []float64 `yaml:"color"`
	ColorMode string    `yaml:"color_mode"`
	Palette   []string  `yaml:"palette"` // CSS colours
}

// CompositeConfig holds the visible-frame parameters.
type CompositeConfig struct {
	Size          float64 `yaml:"size"`
	AlphaScale    float64 `yaml:"alpha_scale"`
	Decay         float64 `yaml:"decay"`
	SplatBlend    string  `yaml:"splat_blend"`
	OverlayBlend  string  `yaml:"overlay_blend"`
	Premultiplied bool    `yaml:"premultiplied"`
	Trails        bool    `yaml:"trails"`
}

// PointerConfig holds pointer interaction parameters.
type PointerConfig struct {
	SplatRepulsion float64 `yaml:"splat_repulsion"`
	VelocityGain   float64 `yaml:"velocity_gain"`
}

// ControlConfig holds the initial run-control state.
type ControlConfig struct {
	Autoplay bool `yaml:"autoplay"`
	Debug    bool `yaml:"debug"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"`
	LogEvery   int `yaml:"log_every"`
}

// DerivedConfig holds values computed from the config after loading.
type DerivedConfig struct {
	DisplayW, DisplayH int // render resolution
	Relations          gpu.Mat3
	Palette            []gpu.Vec4
	VelocityMode       systems.VelocityMode
	ProbeWeight        systems.ProbeWeight
	BiasCombine        systems.BiasCombine
	ColorMode          systems.SeedMode
	InfluenceFormat    gpu.Format
	SplatBlend         gpu.BlendState
	OverlayBlend       gpu.BlendState
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Overrides are "section.key=value" strings applied on top. Must be called before Cfg().
func Init(path string, overrides ...string) error {
	cfg, err := Load(path, overrides...)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults,
// then applies overrides. If path is empty, only embedded defaults are used.
func Load(path string, overrides ...string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.ApplyOverrides(overrides...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides sets values by dotted path, e.g. "sim.n=64" or
// "relations=[1,0,0,0,1,0,0,0,1]". Values are parsed as YAML. Unknown keys
// are rejected. Derived values are not recomputed; call Validate afterwards.
func (c *Config) ApplyOverrides(overrides ...string) error {
	if len(overrides) == 0 {
		return nil
	}
	root := map[string]any{}
	for _, o := range overrides {
		key, raw, ok := strings.Cut(o, "=")
		if !ok || key == "" {
			return fmt.Errorf("%w: override %q is not key=value", ErrInvalid, o)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return fmt.Errorf("%w: override %q: %v", ErrInvalid, o, err)
		}

		parts := strings.Split(key, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}

	data, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("encoding overrides: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("%w: applying overrides: %v", ErrInvalid, err)
	}
	return nil
}

// Validate checks the config and computes derived values. Every problem is
// reported, joined into one error wrapping ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		bad("screen size %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.Screen.PixelRatio <= 0 {
		bad("screen.pixel_ratio must be positive, got %v", c.Screen.PixelRatio)
	}
	if c.Sim.N <= 0 {
		bad("sim.n must be positive, got %d", c.Sim.N)
	}
	if c.Sim.InfluenceScale <= 0 {
		bad("sim.influence_scale must be positive, got %d", c.Sim.InfluenceScale)
	}
	if c.Sim.Probes <= 0 {
		bad("sim.probes must be positive, got %d", c.Sim.Probes)
	}
	if c.Sim.Size <= 0 || c.Sim.Spread <= 0 {
		bad("sim.size and sim.spread must be positive, got %v and %v", c.Sim.Size, c.Sim.Spread)
	}
	if c.Composite.Size <= 0 {
		bad("composite.size must be positive, got %v", c.Composite.Size)
	}
	if c.Composite.Decay < 0 || c.Composite.Decay > 1 {
		bad("composite.decay must be in [0,1], got %v", c.Composite.Decay)
	}
	for name, v := range map[string][]float64{
		"seed.position": c.Seed.Position,
		"seed.velocity": c.Seed.Velocity,
		"seed.color":    c.Seed.Color,
	} {
		if len(v) != 2 {
			bad("%s needs 2 values, got %d", name, len(v))
		}
	}

	var err error
	d := &c.Derived
	if d.Relations, err = gpu.NewMat3(c.Relations); err != nil {
		bad("relations: %v", err)
	} else if g := d.Relations.Gain(); g > MaxRelationGain {
		bad("relations: gain %.3g exceeds %v", g, MaxRelationGain)
	}
	if d.VelocityMode, err = systems.ParseVelocityMode(c.Sim.VelocityMode); err != nil {
		bad("sim.velocity_mode: %v", err)
	}
	if d.ProbeWeight, err = systems.ParseProbeWeight(c.Sim.ProbeWeight); err != nil {
		bad("sim.probe_weight: %v", err)
	}
	if d.BiasCombine, err = systems.ParseBiasCombine(c.Sim.BiasCombine); err != nil {
		bad("sim.bias_combine: %v", err)
	}
	if d.ColorMode, err = systems.ParseSeedMode(c.Seed.ColorMode); err != nil {
		bad("seed.color_mode: %v", err)
	}
	if d.InfluenceFormat, err = gpu.ParseFormat(c.Sim.InfluenceFormat); err != nil {
		bad("sim.influence_format: %v", err)
	}
	if d.SplatBlend, err = gpu.ParseBlend(c.Composite.SplatBlend); err != nil {
		bad("composite.splat_blend: %v", err)
	}
	if d.OverlayBlend, err = gpu.ParseBlend(c.Composite.OverlayBlend); err != nil {
		bad("composite.overlay_blend: %v", err)
	}
	if d.Palette, err = ParsePalette(c.Seed.Palette); err != nil {
		bad("seed.palette: %v", err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DisplayW = max(int(math.Round(float64(c.Screen.Width)*c.Screen.PixelRatio)), 1)
	c.Derived.DisplayH = max(int(math.Round(float64(c.Screen.Height)*c.Screen.PixelRatio)), 1)
}

// ParsePalette parses CSS colour strings into opaque-alpha texel values.
// An empty list selects the default red/green/blue palette.
func ParsePalette(colors []string) ([]gpu.Vec4, error) {
	if len(colors) == 0 {
		return systems.DefaultPalette, nil
	}
	out := make([]gpu.Vec4, 0, len(colors))
	for _, s := range colors {
		c, err := css.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("colour %q: %w", s, err)
		}
		out = append(out, gpu.Vec4{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: float32(c.A)})
	}
	return out, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
