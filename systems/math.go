package systems

import (
	"math"

	"github.com/pthm-cable/influence/gpu"
)

// epsilon floors every length used as a divisor.
const epsilon = 1e-6

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range. NaN maps to 0.
func clamp01(v float32) float32 {
	if v != v {
		return 0
	}
	return clampFloat(v, 0, 1)
}

// fract returns x - floor(x), the GLSL fract.
func fract(x float64) float64 {
	return x - math.Floor(x)
}

// wrap01 maps v onto the unit torus, returning a value in [0, 1).
// Rounding can push v - floor(v) up to exactly 1 in float32; that folds to 0.
func wrap01(v float32) float32 {
	r := v - float32(math.Floor(float64(v)))
	if r >= 1 || r < 0 || r != r {
		return 0
	}
	return r
}

// wrapVec wraps both components onto the unit torus.
func wrapVec(p gpu.Vec2) gpu.Vec2 {
	return gpu.Vec2{X: wrap01(p.X), Y: wrap01(p.Y)}
}

// torusDelta returns the shortest displacement from a to b on the unit torus.
func torusDelta(a, b gpu.Vec2) gpu.Vec2 {
	d := b.Sub(a)
	d.X -= float32(math.Round(float64(d.X)))
	d.Y -= float32(math.Round(float64(d.Y)))
	return d
}

// fragCoord returns the GL fragment coordinate of texel (x, y).
func fragCoord(x, y int) gpu.Vec2 {
	return gpu.Vec2{X: float32(x) + 0.5, Y: float32(y) + 0.5}
}

func finite32(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
