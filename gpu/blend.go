package gpu

import "fmt"

// Factor is a fixed-function blend factor. The blend equation is always add.
type Factor uint8

const (
	FactorZero Factor = iota
	FactorOne
	FactorSrcAlpha
	FactorOneMinusSrcAlpha
	FactorDstAlpha
	FactorOneMinusDstAlpha
	FactorDstColor
	FactorOneMinusDstColor
)

// BlendState describes how a fragment output is combined with the target:
//
//	out.rgb = src.rgb*SrcRGB + dst.rgb*DstRGB
//	out.a   = src.a*SrcAlpha + dst.a*DstAlpha
//
// A disabled state replaces the destination.
type BlendState struct {
	Enabled  bool
	SrcRGB   Factor
	SrcAlpha Factor
	DstRGB   Factor
	DstAlpha Factor
}

var (
	// BlendReplace writes the fragment unchanged.
	BlendReplace = BlendState{}

	// BlendAccumulate is the influence accumulation state.
	BlendAccumulate = BlendState{true, FactorSrcAlpha, FactorOne, FactorDstAlpha, FactorOne}

	// BlendAccumulateScreen accumulates while darkening already bright texels.
	BlendAccumulateScreen = BlendState{true, FactorSrcAlpha, FactorOne, FactorOneMinusDstColor, FactorOne}

	// BlendOverlay lightens new splats into the faded trail.
	BlendOverlay = BlendState{true, FactorSrcAlpha, FactorSrcAlpha, FactorDstAlpha, FactorOneMinusSrcAlpha}

	// BlendOverlayOver is classic "over" compositing of unmultiplied colour.
	BlendOverlayOver = BlendState{true, FactorSrcAlpha, FactorSrcAlpha, FactorOneMinusSrcAlpha, FactorOneMinusSrcAlpha}
)

// ParseBlend maps a config name to one of the predefined blend states.
func ParseBlend(name string) (BlendState, error) {
	switch name {
	case "replace":
		return BlendReplace, nil
	case "accumulate":
		return BlendAccumulate, nil
	case "screen":
		return BlendAccumulateScreen, nil
	case "overlay":
		return BlendOverlay, nil
	case "over":
		return BlendOverlayOver, nil
	}
	return BlendState{}, fmt.Errorf("%w: blend mode %q", ErrUnsupported, name)
}

// Apply blends src onto dst.
func (b BlendState) Apply(src, dst Vec4) Vec4 {
	if !b.Enabled {
		return src
	}
	return Vec4{
		src.R*factor(b.SrcRGB, src, dst, dst.R) + dst.R*factor(b.DstRGB, src, dst, dst.R),
		src.G*factor(b.SrcRGB, src, dst, dst.G) + dst.G*factor(b.DstRGB, src, dst, dst.G),
		src.B*factor(b.SrcRGB, src, dst, dst.B) + dst.B*factor(b.DstRGB, src, dst, dst.B),
		src.A*factor(b.SrcAlpha, src, dst, dst.A) + dst.A*factor(b.DstAlpha, src, dst, dst.A),
	}
}

// factor evaluates f for one channel; dstC is the destination value of that
// channel, used by the per-channel colour factors.
func factor(f Factor, src, dst Vec4, dstC float32) float32 {
	switch f {
	case FactorOne:
		return 1
	case FactorSrcAlpha:
		return src.A
	case FactorOneMinusSrcAlpha:
		return 1 - src.A
	case FactorDstAlpha:
		return dst.A
	case FactorOneMinusDstAlpha:
		return 1 - dst.A
	case FactorDstColor:
		return dstC
	case FactorOneMinusDstColor:
		return 1 - dstC
	default:
		return 0
	}
}
