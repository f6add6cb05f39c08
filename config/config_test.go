package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/influence/gpu"
	"github.com/pthm-cable/influence/systems"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	if cfg.Sim.N != 200 || cfg.Sim.Size != 5 || cfg.Sim.Spread != 9 || cfg.Sim.InfluenceScale != 2 {
		t.Errorf("unexpected sim defaults: %+v", cfg.Sim)
	}
	if cfg.Derived.Relations[0] != float32(-0.546) || cfg.Derived.Relations[8] != float32(-0.532) {
		t.Errorf("relations not loaded in order: %v", cfg.Derived.Relations)
	}
	want := []gpu.Vec4{{R: 1, A: 1}, {G: 1, A: 1}, {B: 1, A: 1}}
	for i, c := range cfg.Derived.Palette {
		if c != want[i] {
			t.Errorf("palette[%d] = %+v, want %+v", i, c, want[i])
		}
	}
	if cfg.Derived.DisplayW != cfg.Screen.Width || cfg.Derived.DisplayH != cfg.Screen.Height {
		t.Errorf("display %dx%d should match the screen at pixel ratio 1", cfg.Derived.DisplayW, cfg.Derived.DisplayH)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.yaml")
	data := []byte("sim:\n  n: 32\ncomposite:\n  decay: 0.5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sim.N != 32 || cfg.Composite.Decay != 0.5 {
		t.Errorf("user values not applied: n=%d decay=%v", cfg.Sim.N, cfg.Composite.Decay)
	}
	if cfg.Sim.Spread != 9 {
		t.Errorf("unset value lost its default: spread=%v", cfg.Sim.Spread)
	}
}

func TestOverrides(t *testing.T) {
	tests := []struct {
		name      string
		overrides []string
		check     func(*Config) bool
		wantErr   bool
	}{
		{
			name:      "int",
			overrides: []string{"sim.n=16"},
			check:     func(c *Config) bool { return c.Sim.N == 16 },
		},
		{
			name:      "string and bool",
			overrides: []string{"sim.velocity_mode=normalize", "control.debug=true"},
			check: func(c *Config) bool {
				return c.Derived.VelocityMode == systems.VelocityNormalize && c.Control.Debug
			},
		},
		{
			name:      "list",
			overrides: []string{"relations=[1,0,0,0,1,0,0,0,1]"},
			check:     func(c *Config) bool { return c.Derived.Relations == gpu.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1} },
		},
		{
			name:      "siblings survive",
			overrides: []string{"sim.size=3"},
			check:     func(c *Config) bool { return c.Sim.Size == 3 && c.Sim.Probes == 50 },
		},
		{name: "unknown key", overrides: []string{"sim.bogus=1"}, wantErr: true},
		{name: "missing value", overrides: []string{"sim.n"}, wantErr: true},
		{name: "invalid n", overrides: []string{"sim.n=0"}, wantErr: true},
		{name: "unknown mode", overrides: []string{"sim.velocity_mode=teleport"}, wantErr: true},
		{name: "bad palette", overrides: []string{"seed.palette=[notacolour]"}, wantErr: true},
		{name: "short relations", overrides: []string{"relations=[1,2,3]"}, wantErr: true},
		{
			name:      "relations within gain",
			overrides: []string{"relations=[1,1,1,1,1,1,1,1,1]"},
			check:     func(c *Config) bool { return c.Derived.Relations.Gain() == 3 },
		},
		{name: "relations gain too high", overrides: []string{"relations=[3,0,0,3,0,0,3,0,0]"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("", tt.overrides...)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("error %v does not wrap ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !tt.check(cfg) {
				t.Error("override not applied")
			}
		})
	}
}

func TestParams(t *testing.T) {
	cfg, err := Load("", "screen.width=400", "screen.height=200", "screen.pixel_ratio=2")
	if err != nil {
		t.Fatal(err)
	}
	p := cfg.Params()

	if p.Store.Width != 800 || p.Store.Height != 400 {
		t.Errorf("store size %dx%d, want 800x400", p.Store.Width, p.Store.Height)
	}
	if p.Influence.Resolution != (gpu.Vec2{X: 400, Y: 200}) {
		t.Errorf("influence splats sized against %v, want the influence field", p.Influence.Resolution)
	}
	if p.Velocity.Resolution != (gpu.Vec2{X: 800, Y: 400}) {
		t.Errorf("velocity resolution %v, want the display", p.Velocity.Resolution)
	}
	o := p.Composite.Overlay
	if o.Spread != 1 || o.InfluenceScale != 1 || o.AlphaScale != 5 {
		t.Errorf("overlay params %+v", o)
	}
	if p.ColorSeed != (gpu.Vec2{X: 5, Y: 7}) || p.VelocitySeed != (gpu.Vec2{X: 2, Y: 1}) {
		t.Errorf("seeds %v %v", p.ColorSeed, p.VelocitySeed)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("", "sim.n=7", "composite.trails=false")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Sim.N != 7 || back.Composite.Trails {
		t.Errorf("written config did not reload: n=%d trails=%v", back.Sim.N, back.Composite.Trails)
	}
}
