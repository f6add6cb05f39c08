package systems

import (
	"fmt"

	"github.com/pthm-cable/influence/gpu"
)

// Integrate writes (position + velocity/divisor) mod 1 into target.
// Channels z and w of the position are carried through unchanged.
func Integrate(dev gpu.Device, target, positions, velocity *gpu.Texture, p IntegrateParams) error {
	err := dev.Fullscreen(target, []*gpu.Texture{positions, velocity}, func(x, y int) gpu.Vec4 {
		pos := positions.At(x, y)
		next := IntegratePoint(pos.XY(), velocity.At(x, y).XY(), p.SpeedDivisor)
		return gpu.Vec4{R: next.X, G: next.Y, B: pos.B, A: pos.A}
	})
	if err != nil {
		return fmt.Errorf("integrate into %s: %w", target.Name(), err)
	}
	return nil
}

// IntegratePoint advances one position by one explicit Euler step on the unit
// torus. A divisor <= 0 is treated as 1. If the step is not finite the
// position is kept.
func IntegratePoint(pos, vel gpu.Vec2, divisor float32) gpu.Vec2 {
	if divisor <= 0 {
		divisor = 1
	}
	sum := pos.Add(vel.Scale(1 / divisor))
	out := pos
	if finite32(sum.X) {
		out.X = sum.X
	}
	if finite32(sum.Y) {
		out.Y = sum.Y
	}
	return wrapVec(out)
}
