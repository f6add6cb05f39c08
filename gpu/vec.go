package gpu

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Vec2 is a two-component float vector (GLSL vec2).
type Vec2 struct {
	X, Y float32
}

// Add returns a+b.
func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }

// Sub returns a-b.
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

// Scale returns a*k.
func (a Vec2) Scale(k float32) Vec2 { return Vec2{a.X * k, a.Y * k} }

// Mul returns the componentwise product.
func (a Vec2) Mul(b Vec2) Vec2 { return Vec2{a.X * b.X, a.Y * b.Y} }

// Dot returns the dot product.
func (a Vec2) Dot(b Vec2) float32 { return a.X*b.X + a.Y*b.Y }

// Len returns the euclidean length.
func (a Vec2) Len() float32 {
	return float32(math.Sqrt(float64(a.X*a.X + a.Y*a.Y)))
}

// Finite reports whether both components are finite.
func (a Vec2) Finite() bool {
	return finite(a.X) && finite(a.Y)
}

// Vec3 is a three-component float vector, used for colours.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns a+b.
func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub returns a-b.
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Mul returns the componentwise product.
func (a Vec3) Mul(b Vec3) Vec3 { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }

// Scale returns a*k.
func (a Vec3) Scale(k float32) Vec3 { return Vec3{a.X * k, a.Y * k, a.Z * k} }

// Sum returns the sum of the components.
func (a Vec3) Sum() float32 { return a.X + a.Y + a.Z }

// Len returns the euclidean length.
func (a Vec3) Len() float32 {
	return float32(math.Sqrt(float64(a.X*a.X + a.Y*a.Y + a.Z*a.Z)))
}

// Vec4 is an RGBA texel value. The first two channels double as XY for
// position and velocity images.
type Vec4 struct {
	R, G, B, A float32
}

// XY returns the first two channels.
func (v Vec4) XY() Vec2 { return Vec2{v.R, v.G} }

// RGB returns the colour channels.
func (v Vec4) RGB() Vec3 { return Vec3{v.R, v.G, v.B} }

// Add returns v+o.
func (v Vec4) Add(o Vec4) Vec4 { return Vec4{v.R + o.R, v.G + o.G, v.B + o.B, v.A + o.A} }

// Scale returns v*k.
func (v Vec4) Scale(k float32) Vec4 { return Vec4{v.R * k, v.G * k, v.B * k, v.A * k} }

// Transparent is fully transparent black.
var Transparent = Vec4{}

// Mat3 is a 3x3 matrix stored column-major, matching a GLSL mat3 uniform
// uploaded from a flat array of nine floats.
type Mat3 [9]float32

// NewMat3 builds a matrix from nine column-major coefficients.
func NewMat3(coeffs []float64) (Mat3, error) {
	var m Mat3
	if len(coeffs) != 9 {
		return m, fmt.Errorf("mat3: need 9 coefficients, got %d", len(coeffs))
	}
	for i, c := range coeffs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return m, fmt.Errorf("mat3: coefficient %d is not finite", i)
		}
		m[i] = float32(c)
	}
	return m, nil
}

// MulVec returns m*v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// Dense returns the matrix as a row-major gonum matrix.
func (m Mat3) Dense() *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			d.Set(row, col, float64(m[col*3+row]))
		}
	}
	return d
}

// Gain returns the induced infinity norm (maximum absolute row sum): the
// largest bias component a colour contrast of at most 1 per channel can
// produce.
func (m Mat3) Gain() float64 {
	return mat.Norm(m.Dense(), math.Inf(1))
}

// IsZero reports whether every coefficient is zero.
func (m Mat3) IsZero() bool {
	return mat.Norm(m.Dense(), 1) == 0
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

func clamp01(f float32) float32 {
	if f != f || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
