package systems

import (
	"math"

	"github.com/pthm-cable/influence/gpu"
)

// Hash constants of the classic shader one-liner
// fract(sin(dot(co, vec2(12.9898, 78.233))) * 43758.5453).
const (
	hashKX    = 12.9898
	hashKY    = 78.233
	hashScale = 43758.5453
)

// Hash returns a pseudo-random value in [0, 1) for a 2D coordinate. It is a
// pure function: the same input always yields the same output, which is
// what makes seeding reproducible.
func Hash(co gpu.Vec2) float64 {
	d := float64(co.X)*hashKX + float64(co.Y)*hashKY
	return fract(math.Sin(d) * hashScale)
}

// Hash4 draws four decorrelated values for p offset by seed:
// (h(p+s), h(2p+s), h(3p+s), h(4p+s)).
func Hash4(p, seed gpu.Vec2) gpu.Vec4 {
	return gpu.Vec4{
		R: unit32(Hash(p.Add(seed))),
		G: unit32(Hash(p.Scale(2).Add(seed))),
		B: unit32(Hash(p.Scale(3).Add(seed))),
		A: unit32(Hash(p.Scale(4).Add(seed))),
	}
}

// unit32 narrows a [0, 1) value to float32 without rounding up to 1.
func unit32(h float64) float32 {
	f := float32(h)
	if f >= 1 {
		return math.Nextafter32(1, 0)
	}
	return f
}
