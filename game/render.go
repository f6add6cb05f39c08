package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/influence/renderer"
	"github.com/pthm-cable/influence/systems"
	"github.com/pthm-cable/influence/telemetry"
	"github.com/pthm-cable/influence/ui"
)

const controlsLegend = "space: step | p: play/pause | d: influence view | tab: panel | f: perf"

// Update captures window input and runs the simulation frame, leaving its
// perf tick open until Draw has presented it.
func (g *Game) Update() error {
	if rl.IsWindowResized() {
		g.controlsPanel.SetPosition(int32(rl.GetScreenWidth())-230, 10)
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controlsPanel.Toggle()
	}
	in := captureInput()
	m := rl.GetMousePosition()
	if g.controlsPanel.Contains(m.X, m.Y) {
		in.Pointer.Pressed = false
	}

	ran, err := g.beginFrame(in)
	g.tickOpen = ran
	return err
}

// Draw presents the latest surface with the HUD and panels on top.
func (g *Game) Draw() {
	if g.tickOpen {
		g.perfCollector.StartPhase(telemetry.PhasePresent)
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	g.presenter.Draw(g.store.Surface)

	c := g.controls
	g.hud.Draw(ui.HUDData{
		Title:     "Influence",
		Frame:     g.frame,
		Particles: g.store.Particles(),
		FPS:       rl.GetFPS(),
		Autoplay:  c.Autoplay,
		Debug:     c.Debug,
		Species:   g.speciesColors(),
	})
	if g.showPerf() {
		stats := g.perfCollector.Stats()
		g.perfPanel.Draw(ui.PerfPanelData{
			AvgFrame: stats.AvgTickDuration,
			PhasePct: stats.PhasePct,
			Phases:   telemetry.Phases,
		})
	}
	g.hud.DrawControls(int32(rl.GetScreenHeight()), controlsLegend)

	changed, act := g.controlsPanel.Draw(g.cfg, c.Autoplay, c.Debug)
	rl.EndDrawing()

	g.perfCollector.RecordFrame()
	if g.tickOpen {
		g.perfCollector.EndTick()
		g.tickOpen = false
		g.flushTelemetry()
	}

	g.applyPanel(changed, act)
}

// applyPanel feeds panel edits and buttons back into the simulation. Slider
// edits take effect at the next frame boundary.
func (g *Game) applyPanel(changed bool, act ui.PanelActions) {
	if changed {
		if err := g.SetConfig(g.cfg); err != nil {
			slog.Warn("rejected panel edit", "error", err)
		}
	}
	g.controls.Apply(Input{
		StepPressed:     act.Step,
		AutoplayPressed: act.ToggleAutoplay,
		DebugPressed:    act.ToggleDebug,
	})
	if act.Reseed {
		if err := g.Reseed(); err != nil {
			slog.Error("reseed failed", "error", err)
		}
	}
}

func (g *Game) showPerf() bool {
	if rl.IsKeyPressed(rl.KeyF) {
		g.perfVisible = !g.perfVisible
	}
	return g.perfVisible
}

// speciesColors returns the palette as display colours for the HUD legend.
func (g *Game) speciesColors() []rl.Color {
	if g.params.ColorMode != systems.SeedSpecies {
		return nil
	}
	out := make([]rl.Color, len(g.params.Palette))
	for i, c := range g.params.Palette {
		out[i] = rl.NewColor(renderer.To8(c.R), renderer.To8(c.G), renderer.To8(c.B), 255)
	}
	return out
}
