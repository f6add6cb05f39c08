package gpu

import (
	"fmt"
	"math"
)

// Format is the storage format of a texture.
type Format uint8

const (
	// FormatRGBA8 stores unsigned normalized bytes: writes clamp to [0,1]
	// and quantize to 1/255 steps.
	FormatRGBA8 Format = iota
	// FormatRGBA32F stores full float32 values.
	FormatRGBA32F
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatRGBA32F:
		return "rgba32f"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// ParseFormat maps a config name to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "rgba8", "unorm8", "":
		return FormatRGBA8, nil
	case "rgba32f", "float":
		return FormatRGBA32F, nil
	}
	return 0, fmt.Errorf("%w: texture format %q", ErrUnsupported, name)
}

// Filter is the sampling filter of a texture.
type Filter uint8

const (
	FilterNearest Filter = iota
	FilterLinear
)

// Texture is a 2D RGBA image owned by a Device. Row 0 is the bottom row,
// matching clip space where y=-1 is the bottom edge.
type Texture struct {
	name   string
	width  int
	height int
	format Format
	filter Filter
	pix    []float32 // RGBA interleaved, row-major
}

func newTexture(name string, w, h int, format Format, filter Filter) *Texture {
	return &Texture{
		name:   name,
		width:  w,
		height: h,
		format: format,
		filter: filter,
		pix:    make([]float32, w*h*4),
	}
}

// Name returns the debug name given at allocation.
func (t *Texture) Name() string { return t.name }

// Width returns the width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the height in texels.
func (t *Texture) Height() int { return t.height }

// Format returns the storage format.
func (t *Texture) Format() Format { return t.format }

// Filter returns the sampling filter.
func (t *Texture) Filter() Filter { return t.filter }

// At fetches the texel at integer coordinates, clamped to the edge.
func (t *Texture) At(x, y int) Vec4 {
	if x < 0 {
		x = 0
	} else if x >= t.width {
		x = t.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.height {
		y = t.height - 1
	}
	i := (y*t.width + x) * 4
	return Vec4{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

// Sample reads the texture at normalized coordinates using its filter and
// clamp-to-edge addressing. Texel centres sit at (i+0.5)/size.
func (t *Texture) Sample(uv Vec2) Vec4 {
	fx := uv.X * float32(t.width)
	fy := uv.Y * float32(t.height)
	if t.filter == FilterNearest {
		return t.At(int(floor32(fx)), int(floor32(fy)))
	}

	fx -= 0.5
	fy -= 0.5
	x0f := floor32(fx)
	y0f := floor32(fy)
	tx := fx - x0f
	ty := fy - y0f
	x0, y0 := int(x0f), int(y0f)

	v00 := t.At(x0, y0)
	v10 := t.At(x0+1, y0)
	v01 := t.At(x0, y0+1)
	v11 := t.At(x0+1, y0+1)

	return Vec4{
		bilerp(v00.R, v10.R, v01.R, v11.R, tx, ty),
		bilerp(v00.G, v10.G, v01.G, v11.G, tx, ty),
		bilerp(v00.B, v10.B, v01.B, v11.B, tx, ty),
		bilerp(v00.A, v10.A, v01.A, v11.A, tx, ty),
	}
}

// ReadPixels returns a copy of the raw RGBA data. It exists for tests,
// telemetry and presentation; the simulation itself never reads back.
func (t *Texture) ReadPixels() []float32 {
	out := make([]float32, len(t.pix))
	copy(out, t.pix)
	return out
}

// store writes v at (x, y) through the texture format.
func (t *Texture) store(x, y int, v Vec4) {
	i := (y*t.width + x) * 4
	if t.format == FormatRGBA8 {
		t.pix[i] = unorm8(v.R)
		t.pix[i+1] = unorm8(v.G)
		t.pix[i+2] = unorm8(v.B)
		t.pix[i+3] = unorm8(v.A)
		return
	}
	t.pix[i] = v.R
	t.pix[i+1] = v.G
	t.pix[i+2] = v.B
	t.pix[i+3] = v.A
}

// encodeRows re-applies the format to rows [y0, y1) after a bulk write.
func (t *Texture) encodeRows(y0, y1 int) {
	if t.format != FormatRGBA8 {
		return
	}
	s := t.pix[y0*t.width*4 : y1*t.width*4]
	for i, v := range s {
		s[i] = unorm8(v)
	}
}

func (t *Texture) sameSize(o *Texture) bool {
	return t.width == o.width && t.height == o.height
}

func unorm8(v float32) float32 {
	return float32(math.Round(float64(clamp01(v))*255)) / 255
}

func floor32(f float32) float32 {
	return float32(math.Floor(float64(f)))
}

func bilerp(v00, v10, v01, v11, tx, ty float32) float32 {
	a := v00 + (v10-v00)*tx
	b := v01 + (v11-v01)*tx
	return a + (b-a)*ty
}
