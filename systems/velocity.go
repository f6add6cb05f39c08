package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/influence/gpu"
)

// probeEpsilon keeps the cosine weight finite at the ring centre.
const probeEpsilon = 0.01

// VelocityInputs are the textures read by the velocity pass. None of them may
// be the pass target.
type VelocityInputs struct {
	Positions   *gpu.Texture
	OldVelocity *gpu.Texture
	Colors      *gpu.Texture
	Influence   *gpu.Texture
}

// ringResult is the outcome of sweeping the probe ring in one direction.
type ringResult struct {
	avg       gpu.Vec2
	best      gpu.Vec2 // probe direction with the largest |there|
	bestThere float32
}

// UpdateVelocity writes one new velocity per particle into target.
func UpdateVelocity(dev gpu.Device, target *gpu.Texture, in VelocityInputs, p VelocityParams) error {
	inputs := []*gpu.Texture{in.Positions, in.OldVelocity, in.Colors, in.Influence}
	err := dev.Fullscreen(target, inputs, func(x, y int) gpu.Vec4 {
		v := ParticleVelocity(in, p, x, y)
		return gpu.Vec4{R: v.X, G: v.Y, B: 0, A: 1}
	})
	if err != nil {
		return fmt.Errorf("velocity update into %s: %w", target.Name(), err)
	}
	return nil
}

// ParticleVelocity evaluates the velocity kernel for the particle at texel
// (x, y). The result is always finite.
func ParticleVelocity(in VelocityInputs, p VelocityParams, x, y int) gpu.Vec2 {
	pos := in.Positions.At(x, y).XY()
	color := in.Colors.At(x, y).RGB()
	old := in.OldVelocity.At(x, y).XY()
	if !pos.Finite() {
		return gpu.Vec2{}
	}

	fc := fragCoord(x, y)
	jitter1 := float32(Hash(fc))
	jitter2 := float32(Hash(fc.Scale(1.1)))

	back := sweepRing(in.Influence, p, pos, color, jitter1, jitter2, -1)
	fwd := sweepRing(in.Influence, p, pos, color, jitter1, jitter2, 1)
	avg := back.avg.Add(fwd.avg)

	var self float32
	if p.Mode == VelocitySelfRepel {
		self = in.Influence.Sample(pos).RGB().Sum() / 3
	}
	next := finishVelocity(p, old, avg, strongest(back, fwd), self)

	if p.Pointer.Pressed && p.PointerGain != 0 {
		d := torusDelta(pos, p.Pointer.Pos)
		next = next.Add(d.Scale(p.PointerGain / (d.Dot(d) + epsilon)))
	}

	if !next.Finite() {
		return gpu.Vec2{}
	}
	return next
}

// strongest returns the probe direction with the largest |there| over both
// sweeps. Ties keep the backward sweep.
func strongest(back, fwd ringResult) gpu.Vec2 {
	if abs32(fwd.bestThere) > abs32(back.bestThere) {
		return fwd.best
	}
	return back.best
}

// finishVelocity turns the probe average into the new velocity according to
// p.Mode. self is the mean influence under the particle, used by
// VelocitySelfRepel.
func finishVelocity(p VelocityParams, old, avg, best gpu.Vec2, self float32) gpu.Vec2 {
	switch p.Mode {
	case VelocityReplace:
		return avg
	case VelocityNormalize:
		l := avg.Len()
		if l < epsilon || !finite32(l) {
			return gpu.Vec2{}
		}
		return avg.Scale(1 / l / max(p.SpeedCap, epsilon))
	case VelocitySelfRepel:
		return avg.Sub(best.Scale(self * p.SelfRepulsion))
	default:
		return old.Scale(p.Smoothing).Add(avg.Scale(1 - p.Smoothing))
	}
}

// sweepRing samples the influence field along the probe ring. sign mirrors
// the ring so the two sweeps together cover both sides of the particle.
func sweepRing(influence *gpu.Texture, p VelocityParams, pos gpu.Vec2, color gpu.Vec3, j1, j2, sign float32) ringResult {
	var r ringResult
	k := max(p.Probes, 1)
	kf := float32(k)
	extent := p.Size * p.Spread
	step := gpu.Vec2{X: extent / p.Resolution.X, Y: extent / p.Resolution.Y}.Scale(sign)

	for i := 0; i < k; i++ {
		fi := float32(i)
		dist := fi / kf
		angle := float64(fi * 2 * math.Pi / kf * p.RingFrequency)
		dir := gpu.Vec2{
			X: float32(math.Sin(angle + float64(j1))),
			Y: float32(math.Cos(angle + float64(j2))),
		}.Mul(step)

		sample := influence.Sample(wrapVec(pos.Add(dir.Scale(dist)))).RGB()

		var combined gpu.Vec3
		if p.Combine == CombineProduct {
			combined = sample.Mul(color)
		} else {
			combined = sample.Sub(color)
		}
		bias := p.Relations.MulVec(combined)
		there := probeWeight(p.Weight, bias, dist)

		r.avg = r.avg.Add(dir.Scale(there / kf))
		if abs32(there) > abs32(r.bestThere) {
			r.bestThere = there
			r.best = dir
		}
	}
	return r
}

// probeWeight reduces a biased sample to a signed scalar pull.
func probeWeight(w ProbeWeight, bias gpu.Vec3, dist float32) float32 {
	switch w {
	case WeightSquared:
		return bias.Sum() * dist * dist
	case WeightSum:
		return bias.Sum()
	default:
		c := float32(math.Cos(float64(dist) * 0.5 * math.Pi))
		return bias.Len() * -c / (dist + probeEpsilon)
	}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
