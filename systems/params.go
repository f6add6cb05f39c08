package systems

import (
	"fmt"

	"github.com/pthm-cable/influence/gpu"
)

// Pointer is the externally captured pointer state in normalized [0,1]²
// screen space (y up).
type Pointer struct {
	Pos     gpu.Vec2
	Pressed bool
}

// VelocityMode selects how the probe average becomes the new velocity.
type VelocityMode uint8

const (
	// VelocitySmooth blends old and new: old*s + avg*(1-s).
	VelocitySmooth VelocityMode = iota
	// VelocityReplace uses the probe average directly.
	VelocityReplace
	// VelocityNormalize uses the direction of the average divided by a speed cap.
	VelocityNormalize
	// VelocitySelfRepel subtracts the local self-influence along the strongest probe.
	VelocitySelfRepel
)

var velocityModeNames = map[string]VelocityMode{
	"smooth":     VelocitySmooth,
	"replace":    VelocityReplace,
	"normalize":  VelocityNormalize,
	"self_repel": VelocitySelfRepel,
}

// ParseVelocityMode maps a config name to a VelocityMode.
func ParseVelocityMode(name string) (VelocityMode, error) {
	if m, ok := velocityModeNames[name]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown velocity mode %q", name)
}

func (m VelocityMode) String() string {
	for name, v := range velocityModeNames {
		if v == m {
			return name
		}
	}
	return fmt.Sprintf("VelocityMode(%d)", uint8(m))
}

// BiasCombine selects how a sampled influence colour meets the particle colour
// before the relation matrix is applied.
type BiasCombine uint8

const (
	// CombineDifference uses influence - colour.
	CombineDifference BiasCombine = iota
	// CombineProduct uses influence ⊙ colour.
	CombineProduct
)

// ParseBiasCombine maps a config name to a BiasCombine.
func ParseBiasCombine(name string) (BiasCombine, error) {
	switch name {
	case "difference":
		return CombineDifference, nil
	case "product":
		return CombineProduct, nil
	}
	return 0, fmt.Errorf("unknown bias combine %q", name)
}

// ProbeWeight selects how a biased sample reduces to the scalar pull of one probe.
type ProbeWeight uint8

const (
	// WeightCosine: |bias| * -cos(dist*π/2) / (dist + 0.01).
	WeightCosine ProbeWeight = iota
	// WeightSquared: sum(bias) * dist².
	WeightSquared
	// WeightSum: sum(bias).
	WeightSum
)

// ParseProbeWeight maps a config name to a ProbeWeight.
func ParseProbeWeight(name string) (ProbeWeight, error) {
	switch name {
	case "cosine":
		return WeightCosine, nil
	case "squared":
		return WeightSquared, nil
	case "sum":
		return WeightSum, nil
	}
	return 0, fmt.Errorf("unknown probe weight %q", name)
}

// SplatParams configures one influence-splat pass.
type SplatParams struct {
	Resolution     gpu.Vec2 // pixels the quad size is expressed against
	Size           float32
	Spread         float32
	InfluenceScale float32
	AlphaScale     float32
	Premultiplied  bool
	Blend          gpu.BlendState

	// Splats within PointerRadius of a pressed pointer are dimmed. 0 disables.
	Pointer       Pointer
	PointerRadius float32
}

// VelocityParams configures the velocity-update pass.
type VelocityParams struct {
	Resolution    gpu.Vec2 // display resolution in pixels
	Size          float32
	Spread        float32
	Probes        int
	RingFrequency float32
	Relations     gpu.Mat3
	Combine       BiasCombine
	Weight        ProbeWeight
	Mode          VelocityMode
	Smoothing     float32 // weight of the old velocity in VelocitySmooth
	SpeedCap      float32 // divisor in VelocityNormalize
	SelfRepulsion float32 // gain in VelocitySelfRepel

	Pointer     Pointer
	PointerGain float32 // >0 attracts, <0 repels
}

// IntegrateParams configures the position-integration pass.
type IntegrateParams struct {
	SpeedDivisor float32
}

// CompositeParams configures the compositor.
type CompositeParams struct {
	Decay   float32
	Trails  bool
	Debug   bool
	Overlay SplatParams
}
