package gpu

import (
	"testing"

	"gonum.org/v1/gonum/blas/blas32"
)

// fadeSize is one RGBA frame at the default display size.
const fadeSize = 960 * 640 * 4

func fadeData() (dst, src []float32) {
	dst = make([]float32, fadeSize)
	src = make([]float32, fadeSize)
	for i := range src {
		src[i] = float32(i%255) / 255
	}
	return dst, src
}

// Benchmark the trail fade with a scalar loop
func BenchmarkFadeScalar(b *testing.B) {
	dst, src := fadeData()
	k := float32(0.85)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for i := range dst {
			dst[i] += k * src[i]
		}
	}
}

// Benchmark the trail fade with blas32
func BenchmarkFadeBLAS(b *testing.B) {
	dst, src := fadeData()
	k := float32(0.85)

	vs := blas32.Vector{N: fadeSize, Inc: 1, Data: src}
	vd := blas32.Vector{N: fadeSize, Inc: 1, Data: dst}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		blas32.Axpy(k, vs, vd) // dst += k*src
	}
}

// Benchmark the device pass, banded over the worker pool
func BenchmarkAddScaled(b *testing.B) {
	d := NewSoftware(0)
	defer d.Close()

	dst, _ := d.NewTexture("surface", 960, 640, FormatRGBA32F, FilterNearest)
	src, _ := d.NewTexture("previous", 960, 640, FormatRGBA32F, FilterNearest)
	d.Clear(src, Vec4{R: 0.5, G: 0.25, B: 0.125, A: 1})

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if err := d.AddScaled(dst, src, 0.85); err != nil {
			b.Fatal(err)
		}
	}
}
