// Package game drives the particle pipeline one frame at a time.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/influence/config"
	"github.com/pthm-cable/influence/gpu"
	"github.com/pthm-cable/influence/renderer"
	"github.com/pthm-cable/influence/systems"
	"github.com/pthm-cable/influence/telemetry"
	"github.com/pthm-cable/influence/ui"
)

// Options configures a Game.
type Options struct {
	Config      *config.Config // nil uses config.Cfg()
	Device      gpu.Device     // nil creates a software device owned by the game
	Workers     int            // software device workers, <= 0 means GOMAXPROCS
	LogStats    bool
	OutputDir   string
	SnapshotDir string
	Headless    bool

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.FieldStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg     *config.Config
	params  config.Params
	pending *config.Params // applied at the next frame boundary

	dev        gpu.Device
	ownsDevice bool
	store      *systems.Store

	// Ping-pong index: Positions[current] and Velocities[current] are read
	// this frame, the other pair is written.
	current  int
	frame    int64
	controls Controls
	pointer  systems.Pointer

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.FieldStats)

	// Presentation, nil when headless
	presenter     *renderer.Presenter
	hud           *ui.HUD
	perfPanel     *ui.PerfPanel
	controlsPanel *ui.ControlsPanel
	perfVisible   bool
	tickOpen      bool
}

// NewGameWithOptions allocates the state store and seeds it. Allocation and
// capability failures are returned; the caller treats them as fatal.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	dev := opts.Device
	ownsDevice := dev == nil
	if ownsDevice {
		dev = gpu.NewSoftware(opts.Workers)
	}

	g := &Game{
		cfg:              cfg,
		params:           cfg.Params(),
		dev:              dev,
		ownsDevice:       ownsDevice,
		controls:         NewControls(cfg.Control.Autoplay, cfg.Control.Debug),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		statsCallback:    opts.StatsCallback,
	}

	if err := checkCapabilities(dev.Capabilities()); err != nil {
		g.Unload()
		return nil, err
	}
	if err := g.allocate(g.params.Store); err != nil {
		g.Unload()
		return nil, err
	}

	if err := g.seed(); err != nil {
		g.Unload()
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.Unload()
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		g.Unload()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	if !opts.Headless {
		g.presenter = renderer.NewPresenter(g.store.Surface)
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(10, 80, 240)
		g.controlsPanel = ui.NewControlsPanel(int32(cfg.Screen.Width)-230, 10, 220)
	}

	slog.Info("simulation ready",
		"particles", g.store.Particles(),
		"display", fmt.Sprintf("%dx%d", cfg.Derived.DisplayW, cfg.Derived.DisplayH),
		"influence", fmt.Sprintf("%dx%d", g.store.Influence.Width(), g.store.Influence.Height()),
		"relation_gain", g.params.Velocity.Relations.Gain(),
	)
	return g, nil
}

// checkCapabilities rejects devices the pipeline cannot run on.
func checkCapabilities(c gpu.Capabilities) error {
	if !c.FloatTextures {
		return fmt.Errorf("%w: float textures are required for positions and velocities", gpu.ErrUnsupported)
	}
	if !c.InstancedArrays {
		return fmt.Errorf("%w: instanced drawing is required for splats", gpu.ErrUnsupported)
	}
	return nil
}

// allocate replaces the state store. Contents are undefined until seeded.
func (g *Game) allocate(spec systems.StoreSpec) error {
	s, err := systems.NewStore(g.dev, spec)
	if err != nil {
		return err
	}
	g.store = s
	g.current = 0
	if g.presenter != nil {
		g.presenter.Resize(s.Surface)
	}
	return nil
}

// seed fills the current buffers from the configured hash seeds and zeroes
// everything else.
func (g *Game) seed() error {
	p := g.params
	s := g.store
	cur := s.Current(g.current)

	if err := systems.Seed(g.dev, cur.Position, p.PositionSeed, systems.SeedUniform, nil); err != nil {
		return err
	}
	if err := systems.Seed(g.dev, cur.Velocity, p.VelocitySeed, systems.SeedUniform, nil); err != nil {
		return err
	}
	if err := systems.Seed(g.dev, s.Colors, p.ColorSeed, p.ColorMode, p.Palette); err != nil {
		return err
	}

	next := s.Next(g.current)
	systems.Fill(g.dev, next.Position, gpu.Transparent)
	systems.Fill(g.dev, next.Velocity, gpu.Transparent)
	systems.ResetInfluence(g.dev, s)
	g.dev.Clear(s.Previous, gpu.Transparent)
	return g.present()
}

// present composites the current positions without advancing or swapping,
// so a paused start or a reseed still shows the swarm.
func (g *Game) present() error {
	s := g.store
	cur := s.Current(g.current)

	systems.ResetInfluence(g.dev, s)
	if err := systems.Splat(g.dev, s.Influence, cur.Position, s.Colors, g.params.Influence); err != nil {
		return err
	}
	cp := g.params.Composite
	cp.Debug = g.controls.Debug
	cp.Overlay.Pointer = g.pointer
	return systems.Composite(g.dev, s, cur.Position, cp)
}

// Step applies input and, unless paused, runs exactly one frame. It reports
// whether a frame ran. On error the ping-pong index is left unflipped.
func (g *Game) Step(in Input) (bool, error) {
	ran, err := g.beginFrame(in)
	if ran {
		g.perfCollector.EndTick()
	}
	if err != nil || !ran {
		return false, err
	}
	g.flushTelemetry()
	return true, nil
}

// beginFrame runs the frame passes with the perf tick left open for
// presentation timing.
func (g *Game) beginFrame(in Input) (bool, error) {
	if err := g.applyPending(); err != nil {
		return false, err
	}

	g.controls.Apply(in)
	g.pointer = in.Pointer
	if !g.controls.RenderNext {
		return false, nil
	}

	g.perfCollector.StartTick()
	if err := g.advance(); err != nil {
		return true, fmt.Errorf("frame %d: %w", g.frame, err)
	}
	g.controls.FrameDone()
	return true, nil
}

// advance runs one frame: clear, splat, velocity, integrate, composite, then
// swap. Each pass reads only the previous pass's output.
func (g *Game) advance() error {
	p := g.params
	s := g.store
	cur, next := s.Current(g.current), s.Next(g.current)
	n := s.Particles()

	g.perfCollector.StartPass(telemetry.PhaseClear, s.Influence.Width()*s.Influence.Height())
	systems.ResetInfluence(g.dev, s)

	g.perfCollector.StartPass(telemetry.PhaseSplat, n)
	if err := systems.Splat(g.dev, s.Influence, cur.Position, s.Colors, p.Influence); err != nil {
		return err
	}

	g.perfCollector.StartPass(telemetry.PhaseVelocity, n)
	vp := p.Velocity
	vp.Pointer = g.pointer
	in := systems.VelocityInputs{
		Positions:   cur.Position,
		OldVelocity: cur.Velocity,
		Colors:      s.Colors,
		Influence:   s.Influence,
	}
	if err := systems.UpdateVelocity(g.dev, next.Velocity, in, vp); err != nil {
		return err
	}

	g.perfCollector.StartPass(telemetry.PhaseIntegrate, n)
	if err := systems.Integrate(g.dev, next.Position, cur.Position, next.Velocity, p.Integrate); err != nil {
		return err
	}

	g.perfCollector.StartPass(telemetry.PhaseComposite, s.Surface.Width()*s.Surface.Height())
	cp := p.Composite
	cp.Debug = g.controls.Debug
	cp.Overlay.Pointer = g.pointer
	if err := systems.Composite(g.dev, s, next.Position, cp); err != nil {
		return err
	}

	g.current ^= 1
	g.frame++
	return nil
}

// SetParams queues kernel parameters for the next frame boundary. A changed
// store spec reallocates and reseeds every image.
func (g *Game) SetParams(p config.Params) {
	g.pending = &p
}

// SetConfig validates cfg and queues its parameters.
func (g *Game) SetConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg
	g.SetParams(cfg.Params())
	return nil
}

func (g *Game) applyPending() error {
	if g.pending == nil {
		return nil
	}
	p := *g.pending
	g.pending = nil

	realloc := p.Store != g.params.Store
	if p.Velocity.Relations.IsZero() && !g.params.Velocity.Relations.IsZero() {
		slog.Warn("relation matrix is zero, particles feel no colour force")
	}
	g.params = p
	if !realloc {
		return nil
	}
	return g.reset()
}

// Reallocate changes the grid side. Every image is reallocated and reseeded;
// the frame counter keeps running.
func (g *Game) Reallocate(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: grid side must be positive, got %d", config.ErrInvalid, n)
	}
	g.params.Store.N = n
	g.cfg.Sim.N = n
	return g.reset()
}

// Reseed refills the current buffers from the configured seeds.
func (g *Game) Reseed() error {
	return g.seed()
}

func (g *Game) reset() error {
	if err := g.allocate(g.params.Store); err != nil {
		return err
	}
	if err := g.seed(); err != nil {
		return err
	}
	slog.Info("store reallocated", "n", g.params.Store.N, "frame", g.frame)
	return nil
}

// Frame returns the number of frames run.
func (g *Game) Frame() int64 {
	return g.frame
}

// Controls returns the current run-control state.
func (g *Game) Controls() Controls {
	return g.controls
}

// Store returns the state store.
func (g *Game) Store() *systems.Store {
	return g.store
}

// Current returns the buffers holding the latest positions and velocities.
func (g *Game) Current() systems.Buffers {
	return g.store.Current(g.current)
}

// Surface returns the most recently composited frame.
func (g *Game) Surface() *gpu.Texture {
	return g.store.Surface
}

// Unload releases resources and closes output files.
func (g *Game) Unload() {
	if g.presenter != nil {
		g.presenter.Unload()
		g.presenter = nil
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output files", "error", err)
	}
	g.outputManager = nil
	if g.ownsDevice && g.dev != nil {
		g.dev.Close()
		g.dev = nil
	}
}
