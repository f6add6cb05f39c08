package systems

import (
	"fmt"

	"github.com/pthm-cable/influence/gpu"
)

// debugInset is the fraction of the screen the position buffer occupies in
// the debug view, anchored bottom-left.
const debugInset = 0.125

// Composite renders the visible frame into s.Surface from the new positions.
//
// The presented surface is discarded on swap, so the frame starts blank; the
// fade pass adds decay*previous onto it, the overlay splats the particles on
// top, and the result becomes next frame's previous image.
func Composite(dev gpu.Device, s *Store, positions *gpu.Texture, p CompositeParams) error {
	dev.Clear(s.Surface, gpu.Transparent)

	if p.Debug {
		return drawDebug(dev, s, positions)
	}

	if p.Trails {
		if err := dev.AddScaled(s.Surface, s.Previous, p.Decay); err != nil {
			return fmt.Errorf("composite fade: %w", err)
		}
	}
	if err := Splat(dev, s.Surface, positions, s.Colors, p.Overlay); err != nil {
		return fmt.Errorf("composite overlay: %w", err)
	}
	if err := dev.Copy(s.Previous, s.Surface); err != nil {
		return fmt.Errorf("composite store previous: %w", err)
	}
	return nil
}

// drawDebug shows the raw influence field stretched over the screen with the
// position buffer drawn as a small inset.
func drawDebug(dev gpu.Device, s *Store, positions *gpu.Texture) error {
	w, h := float32(s.Surface.Width()), float32(s.Surface.Height())
	err := dev.Fullscreen(s.Surface, []*gpu.Texture{s.Influence, positions}, func(x, y int) gpu.Vec4 {
		uv := gpu.Vec2{X: (float32(x) + 0.5) / w, Y: (float32(y) + 0.5) / h}
		if uv.X < debugInset && uv.Y < debugInset {
			p := positions.Sample(uv.Scale(1 / debugInset))
			return gpu.Vec4{R: p.R, G: p.G, B: p.B, A: 1}
		}
		c := s.Influence.Sample(uv)
		return gpu.Vec4{R: c.R, G: c.G, B: c.B, A: 1}
	})
	if err != nil {
		return fmt.Errorf("composite debug view: %w", err)
	}
	return nil
}
