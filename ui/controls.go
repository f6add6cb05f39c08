package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/influence/config"
)

// PanelActions are the button presses of one frame.
type PanelActions struct {
	Step           bool
	ToggleAutoplay bool
	ToggleDebug    bool
	Reseed         bool
}

// ControlsPanel renders the live parameter panel. Sliders write straight
// into the config they are drawn from.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a window point is over the visible panel, so the
// pointer does not steer particles while dragging a slider.
func (c *ControlsPanel) Contains(x, y float32) bool {
	if !c.visible {
		return false
	}
	return x >= float32(c.x) && x < float32(c.x+c.width) &&
		y >= float32(c.y) && y < float32(c.y+c.height)
}

// Draw renders the panel bound to cfg. changed reports slider edits; the
// caller revalidates and applies cfg at the next frame boundary.
func (c *ControlsPanel) Draw(cfg *config.Config, autoplay, debug bool) (changed bool, act PanelActions) {
	if !c.visible {
		return false, act
	}

	r := c.renderer
	padding := float32(r.Theme.Padding)
	r.DrawPanel(c.x, c.y, c.width, c.height)

	x := float32(c.x) + padding
	y := float32(c.y) + padding
	w := float32(c.width) - padding*2

	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Influence"))
	changed = c.slider(x, &y, w, "size", &cfg.Sim.Size, 1, 20) || changed
	changed = c.slider(x, &y, w, "spread", &cfg.Sim.Spread, 1, 20) || changed
	changed = c.slider(x, &y, w, "alpha scale", &cfg.Sim.AlphaScale, 0.1, 10) || changed

	y += 4
	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Composite"))
	changed = c.slider(x, &y, w, "decay", &cfg.Composite.Decay, 0, 1) || changed
	changed = c.slider(x, &y, w, "overlay size", &cfg.Composite.Size, 1, 20) || changed
	changed = c.slider(x, &y, w, "overlay alpha", &cfg.Composite.AlphaScale, 0.1, 10) || changed

	y += 4
	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Relations"))
	if len(cfg.Relations) == 9 {
		cell := (w - 8) / 3
		// Columns of the matrix are drawn as columns of sliders.
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				v := &cfg.Relations[col*3+row]
				bounds := rl.Rectangle{X: x + float32(col)*(cell+4), Y: y, Width: cell, Height: 14}
				nv := gui.SliderBar(bounds, "", "", float32(*v), -1, 1)
				if nv != float32(*v) {
					*v = float64(nv)
					changed = true
				}
			}
			y += 18
		}
	}

	y += 8
	bw := (w - 10) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 24}, toggleText(autoplay, "Pause", "Play")) {
		act.ToggleAutoplay = true
	}
	if gui.Button(rl.Rectangle{X: x + bw + 10, Y: y, Width: bw, Height: 24}, "Step") {
		act.Step = true
	}
	y += 30
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 24}, toggleText(debug, "Composite", "Influence")) {
		act.ToggleDebug = true
	}
	if gui.Button(rl.Rectangle{X: x + bw + 10, Y: y, Width: bw, Height: 24}, "Reseed") {
		act.Reseed = true
	}
	y += 30

	c.height = int32(y+padding) - c.y
	return changed, act
}

// slider draws a labelled slider for v and reports whether it moved.
func (c *ControlsPanel) slider(x float32, y *float32, w float32, label string, v *float64, lo, hi float32) bool {
	theme := c.renderer.Theme
	rl.DrawText(label, int32(x), int32(*y), theme.FontSize, theme.LabelColor)
	*y += 14

	bounds := rl.Rectangle{X: x, Y: *y, Width: w - 50, Height: 14}
	nv := gui.SliderBar(bounds, "", "", float32(*v), lo, hi)
	rl.DrawText(fmt.Sprintf("%.3g", *v), int32(x+w-45), int32(*y), theme.FontSize, theme.ValueColor)
	*y += 20

	if nv == float32(*v) {
		return false
	}
	*v = float64(nv)
	return true
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
