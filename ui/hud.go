package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Frame     int64
	Particles int
	FPS       int32
	Autoplay  bool
	Debug     bool
	Species   []rl.Color // empty when colours are not species-seeded
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Frame: %d | Particles: %d | FPS: %d", data.Frame, data.Particles, data.FPS),
		10, 35, 16, rl.LightGray,
	)

	status := "Running"
	if !data.Autoplay {
		status = "PAUSED (space = step)"
	}
	if data.Debug {
		status += " | influence view"
	}
	rl.DrawText(status, 10, 55, 16, rl.Yellow)

	y := int32(80)
	for i, c := range data.Species {
		y = h.renderer.DrawColorSwatch(10, y, fmt.Sprintf("Species %d", i), c)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	AvgFrame time.Duration
	PhasePct map[string]float64
	Phases   []string // display order
}

// PerfPanel renders the per-phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData) {
	r := p.renderer
	padding := r.Theme.Padding
	height := padding*2 + r.Theme.LineHeight*2 + int32(len(data.Phases))*(r.Theme.LineHeight+2)
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := r.DrawSectionHeader(x, p.y+padding, "Frame Phases")
	y = r.DrawLabelValue(x, y, "Frame", data.AvgFrame.Round(time.Microsecond).String())

	for _, name := range data.Phases {
		y = r.DrawPercentBar(x, y, name, data.PhasePct[name], 40, p.width-padding*2)
	}
}
