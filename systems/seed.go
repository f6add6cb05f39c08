package systems

import (
	"fmt"

	"github.com/pthm-cable/influence/gpu"
)

// SeedMode selects how hashed values are shaped for a target image.
type SeedMode uint8

const (
	// SeedUniform writes Hash4 directly; used for position and velocity,
	// and for colour in the plain "hash colours" setup.
	SeedUniform SeedMode = iota
	// SeedNormalized divides the hashed rgb by its own length.
	SeedNormalized
	// SeedSpecies picks one palette entry per particle with roughly equal odds.
	SeedSpecies
)

// ParseSeedMode maps a config name to a SeedMode.
func ParseSeedMode(name string) (SeedMode, error) {
	switch name {
	case "uniform", "hash":
		return SeedUniform, nil
	case "normalized":
		return SeedNormalized, nil
	case "species":
		return SeedSpecies, nil
	}
	return 0, fmt.Errorf("unknown seed mode %q", name)
}

// DefaultPalette is pure red, green and blue.
var DefaultPalette = []gpu.Vec4{
	{R: 1, A: 1},
	{G: 1, A: 1},
	{B: 1, A: 1},
}

// Seed fills target from the hash of each texel's clip-space coordinate plus
// seed. Output is a pure function of (target size, seed, mode, palette).
func Seed(dev gpu.Device, target *gpu.Texture, seed gpu.Vec2, mode SeedMode, palette []gpu.Vec4) error {
	if mode == SeedSpecies && len(palette) == 0 {
		palette = DefaultPalette
	}
	w, h := float32(target.Width()), float32(target.Height())

	err := dev.Fullscreen(target, nil, func(x, y int) gpu.Vec4 {
		switch mode {
		case SeedSpecies:
			r := Hash(fragCoord(x, y).Add(seed))
			idx := int(r * float64(len(palette)))
			if idx >= len(palette) {
				idx = len(palette) - 1
			}
			return palette[idx]
		case SeedNormalized:
			pos := gpu.Vec2{X: (float32(x)+0.5)/w*2 - 1, Y: (float32(y)+0.5)/h*2 - 1}
			c := Hash4(pos, seed).RGB()
			c = c.Scale(1 / max(c.Len(), epsilon))
			return gpu.Vec4{R: c.X, G: c.Y, B: c.Z, A: 1}
		default:
			pos := gpu.Vec2{X: (float32(x)+0.5)/w*2 - 1, Y: (float32(y)+0.5)/h*2 - 1}
			return Hash4(pos, seed)
		}
	})
	if err != nil {
		return fmt.Errorf("seeding %s: %w", target.Name(), err)
	}
	return nil
}

// Fill writes the same value into every texel of target.
func Fill(dev gpu.Device, target *gpu.Texture, v gpu.Vec4) {
	dev.Clear(target, v)
}
