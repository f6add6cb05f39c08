package gpu

import (
	"errors"
	"math"
	"testing"
)

func newTestTexture(t *testing.T, d Device, w, h int, f Format) *Texture {
	t.Helper()
	tex, err := d.NewTexture("test", w, h, f, FilterNearest)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	return tex
}

func TestRGBA8QuantizesAndClamps(t *testing.T) {
	d := NewSoftware(1)
	defer d.Close()
	tex := newTestTexture(t, d, 2, 2, FormatRGBA8)

	err := d.Fullscreen(tex, nil, func(x, y int) Vec4 {
		return Vec4{-0.5, 0.5, 2, float32(math.NaN())}
	})
	if err != nil {
		t.Fatal(err)
	}
	got := tex.At(1, 1)
	if got.R != 0 || got.B != 1 || got.A != 0 {
		t.Errorf("clamp: got %+v", got)
	}
	if want := float32(128) / 255; got.G != want {
		t.Errorf("quantize: got %v, want %v", got.G, want)
	}
}

func TestSampleLinearInterpolates(t *testing.T) {
	d := NewSoftware(1)
	defer d.Close()
	tex, err := d.NewTexture("lin", 2, 1, FormatRGBA32F, FilterLinear)
	if err != nil {
		t.Fatal(err)
	}
	_ = d.Fullscreen(tex, nil, func(x, y int) Vec4 { return Vec4{R: float32(x)} })

	tests := []struct {
		u    float32
		want float32
	}{
		{0.25, 0},  // centre of texel 0
		{0.5, 0.5}, // halfway between centres
		{0.75, 1},  // centre of texel 1
		{0.0, 0},   // clamped to edge
		{1.0, 1},
	}
	for _, tt := range tests {
		got := tex.Sample(Vec2{tt.u, 0.5}).R
		if math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("Sample(%v) = %v, want %v", tt.u, got, tt.want)
		}
	}
}

func TestBlendTable(t *testing.T) {
	src := Vec4{1, 0.5, 0, 0.5}
	dst := Vec4{0.2, 0.4, 0.6, 0.8}

	tests := []struct {
		name  string
		blend BlendState
		want  Vec4
	}{
		{"replace", BlendReplace, src},
		{"accumulate", BlendAccumulate, Vec4{
			1*0.5 + 0.2*0.8, 0.5*0.5 + 0.4*0.8, 0 + 0.6*0.8, 0.5 + 0.8,
		}},
		{"screen", BlendAccumulateScreen, Vec4{
			0.5 + 0.2*0.8, 0.25 + 0.4*0.6, 0 + 0.6*0.4, 0.5 + 0.8,
		}},
		{"overlay", BlendOverlay, Vec4{
			0.5 + 0.2*0.8, 0.25 + 0.4*0.8, 0.6 * 0.8, 0.25 + 0.8*0.5,
		}},
		{"over", BlendOverlayOver, Vec4{
			0.5 + 0.2*0.5, 0.25 + 0.4*0.5, 0.6 * 0.5, 0.25 + 0.8*0.5,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.blend.Apply(src, dst)
			if !approxVec4(got, tt.want, 1e-6) {
				t.Errorf("Apply = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseBlendUnknown(t *testing.T) {
	if _, err := ParseBlend("multiply"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestFeedbackLoopRejected(t *testing.T) {
	d := NewSoftware(1)
	defer d.Close()
	tex := newTestTexture(t, d, 4, 4, FormatRGBA32F)

	err := d.Fullscreen(tex, []*Texture{tex}, func(x, y int) Vec4 { return Vec4{} })
	if !errors.Is(err, ErrFeedbackLoop) {
		t.Errorf("Fullscreen: expected ErrFeedbackLoop, got %v", err)
	}
	if err := d.Copy(tex, tex); !errors.Is(err, ErrFeedbackLoop) {
		t.Errorf("Copy: expected ErrFeedbackLoop, got %v", err)
	}
	if err := d.AddScaled(tex, tex, 1); !errors.Is(err, ErrFeedbackLoop) {
		t.Errorf("AddScaled: expected ErrFeedbackLoop, got %v", err)
	}
}

func TestCapabilitiesEnforced(t *testing.T) {
	d := NewSoftwareWithCapabilities(1, Capabilities{InstancedArrays: true})
	defer d.Close()

	if _, err := d.NewTexture("pos", 4, 4, FormatRGBA32F, FilterNearest); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for float texture, got %v", err)
	}
	if _, err := d.NewTexture("pos", 0, 4, FormatRGBA8, FilterNearest); err == nil {
		t.Error("expected error for zero width")
	}
}

type squareShader struct {
	centers []Vec2
	half    Vec2
}

func (s squareShader) Vertex(i int) (Vec2, Vec2, Vec4, bool) {
	return s.centers[i], s.half, Vec4{R: float32(i + 1)}, true
}

func (s squareShader) Fragment(v Vec4, uv Vec2) Vec4 {
	return Vec4{v.R, uv.X, uv.Y, 1}
}

func TestDrawInstancedCoverage(t *testing.T) {
	d := NewSoftware(1)
	defer d.Close()
	tex := newTestTexture(t, d, 8, 8, FormatRGBA32F)

	// Half extent 0.25 in clip space covers 2 pixels either side of centre.
	shader := squareShader{centers: []Vec2{{0, 0}}, half: Vec2{0.25, 0.25}}
	if err := d.DrawInstanced(tex, nil, BlendReplace, 1, shader); err != nil {
		t.Fatal(err)
	}

	covered := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if tex.At(x, y).A > 0 {
				covered++
				if x < 3 || x > 4 || y < 3 || y > 4 {
					t.Errorf("pixel (%d,%d) covered outside quad", x, y)
				}
			}
		}
	}
	if covered != 4 {
		t.Errorf("covered %d pixels, want 4", covered)
	}
	uv := tex.At(3, 3)
	if math.Abs(float64(uv.G+0.5)) > 1e-6 || math.Abs(float64(uv.B+0.5)) > 1e-6 {
		t.Errorf("quad-local uv at (3,3) = (%v,%v), want (-0.5,-0.5)", uv.G, uv.B)
	}
}

func TestDrawInstancedOrderIsDeterministic(t *testing.T) {
	centers := make([]Vec2, 300)
	for i := range centers {
		centers[i] = Vec2{float32(i%17)/8 - 1, float32(i%23)/11 - 1}
	}
	shader := squareShader{centers: centers, half: Vec2{0.3, 0.3}}

	render := func(workers int) []float32 {
		d := NewSoftware(workers)
		defer d.Close()
		tex := newTestTexture(t, d, 64, 64, FormatRGBA32F)
		if err := d.DrawInstanced(tex, nil, BlendAccumulate, len(centers), shader); err != nil {
			t.Fatal(err)
		}
		return tex.ReadPixels()
	}

	serial := render(1)
	parallel := render(4)
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("texel value %d differs: serial %v, parallel %v", i, serial[i], parallel[i])
		}
	}
}

func TestAddScaledAndCopy(t *testing.T) {
	d := NewSoftware(2)
	defer d.Close()
	src := newTestTexture(t, d, 4, 4, FormatRGBA32F)
	dst := newTestTexture(t, d, 4, 4, FormatRGBA32F)
	d.Clear(src, Vec4{1, 2, 3, 4})
	d.Clear(dst, Vec4{1, 1, 1, 1})

	if err := d.AddScaled(dst, src, 0.5); err != nil {
		t.Fatal(err)
	}
	if got, want := dst.At(2, 2), (Vec4{1.5, 2, 2.5, 3}); got != want {
		t.Errorf("AddScaled = %+v, want %+v", got, want)
	}

	other := newTestTexture(t, d, 2, 2, FormatRGBA32F)
	if err := d.Copy(other, src); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}
	if err := d.Copy(dst, src); err != nil {
		t.Fatal(err)
	}
	if dst.At(0, 0) != src.At(0, 0) {
		t.Error("copy did not transfer texels")
	}
}

func TestMat3ColumnMajor(t *testing.T) {
	m, err := NewMat3([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	if err != nil {
		t.Fatal(err)
	}
	got := m.MulVec(Vec3{1, 0, 0})
	if got != (Vec3{1, 2, 3}) {
		t.Errorf("first column = %+v, want {1 2 3}", got)
	}
	if m.IsZero() {
		t.Error("non-zero matrix reported zero")
	}
	// Rows are (1,4,7), (2,5,8), (3,6,9).
	if g := m.Gain(); g != 18 {
		t.Errorf("Gain() = %v, want 18", g)
	}
	var zero Mat3
	if !zero.IsZero() {
		t.Error("zero matrix not reported zero")
	}
	if _, err := NewMat3([]float64{1, 2}); err == nil {
		t.Error("expected error for short coefficient list")
	}
}

func approxVec4(a, b Vec4, eps float64) bool {
	return math.Abs(float64(a.R-b.R)) < eps && math.Abs(float64(a.G-b.G)) < eps &&
		math.Abs(float64(a.B-b.B)) < eps && math.Abs(float64(a.A-b.A)) < eps
}
