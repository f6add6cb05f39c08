package systems

import (
	"fmt"

	"github.com/pthm-cable/influence/gpu"
)

// splatShader draws one radially faded quad per particle.
type splatShader struct {
	n         int
	positions *gpu.Texture
	colors    *gpu.Texture
	half      gpu.Vec2
	fadeScale float32 // alphaScale / (influenceScale * spread * size)
	premult   bool
	pointer   Pointer
	radius    float32
}

func newSplatShader(n int, positions, colors *gpu.Texture, p SplatParams) *splatShader {
	extent := p.Size * p.Spread
	return &splatShader{
		n:         n,
		positions: positions,
		colors:    colors,
		half:      gpu.Vec2{X: extent / p.Resolution.X, Y: extent / p.Resolution.Y},
		fadeScale: p.AlphaScale / (p.InfluenceScale * p.Spread * p.Size),
		premult:   p.Premultiplied,
		pointer:   p.Pointer,
		radius:    p.PointerRadius,
	}
}

// Vertex places particle i's quad at its position in clip space. The varying
// carries the particle colour and, in alpha, its pointer-dimmed intensity.
func (s *splatShader) Vertex(i int) (gpu.Vec2, gpu.Vec2, gpu.Vec4, bool) {
	x, y := i%s.n, i/s.n
	pos := s.positions.At(x, y).XY()
	if !pos.Finite() {
		return gpu.Vec2{}, gpu.Vec2{}, gpu.Vec4{}, false
	}
	c := s.colors.At(x, y)

	intensity := float32(1)
	if s.pointer.Pressed && s.radius > 0 {
		d := torusDelta(pos, s.pointer.Pos).Len()
		intensity = clamp01(d / s.radius)
	}

	center := gpu.Vec2{X: pos.X*2 - 1, Y: pos.Y*2 - 1}
	return center, s.half, gpu.Vec4{R: c.R, G: c.G, B: c.B, A: intensity}, true
}

// Fragment computes the radial falloff; uv spans [-1,1]² so dist is in [0, √2].
func (s *splatShader) Fragment(v gpu.Vec4, uv gpu.Vec2) gpu.Vec4 {
	dist := uv.Len()
	fade := clamp01((1-dist)*s.fadeScale) * v.A
	if s.premult {
		return gpu.Vec4{R: v.R * fade, G: v.G * fade, B: v.B * fade, A: fade}
	}
	return gpu.Vec4{R: v.R, G: v.G, B: v.B, A: fade}
}

// Splat accumulates one splat per particle into target. The caller clears
// target beforehand when a fresh field is wanted; Splat only blends on top.
func Splat(dev gpu.Device, target, positions, colors *gpu.Texture, p SplatParams) error {
	n := positions.Width()
	shader := newSplatShader(n, positions, colors, p)
	err := dev.DrawInstanced(target, []*gpu.Texture{positions, colors}, p.Blend, n*positions.Height(), shader)
	if err != nil {
		return fmt.Errorf("splat into %s: %w", target.Name(), err)
	}
	return nil
}

// ResetInfluence clears the influence field to transparent black.
func ResetInfluence(dev gpu.Device, s *Store) {
	dev.Clear(s.Influence, gpu.Transparent)
}
