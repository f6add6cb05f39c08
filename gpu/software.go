package gpu

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas32"
)

// Software is a CPU Device. Every pass is split into row bands executed on a
// persistent worker pool. Not safe for concurrent use by multiple goroutines.
type Software struct {
	caps  Capabilities
	pool  *workerPool
	quads []quad // scratch for DrawInstanced
}

// quad is one rasterization-ready instance.
type quad struct {
	center, half Vec2
	varying      Vec4
	x0, x1       int // covered pixel columns [x0, x1)
	y0, y1       int // covered pixel rows [y0, y1)
}

// NewSoftware creates a software device with the given worker count
// (<= 0 means GOMAXPROCS). It supports every capability.
func NewSoftware(workers int) *Software {
	return NewSoftwareWithCapabilities(workers, Capabilities{
		InstancedArrays: true,
		FloatTextures:   true,
		FloatLinear:     true,
		BlendMinMax:     true,
		FloatBlend:      true,
	})
}

// NewSoftwareWithCapabilities creates a software device that reports, and
// enforces, a restricted capability set.
func NewSoftwareWithCapabilities(workers int, caps Capabilities) *Software {
	return &Software{caps: caps, pool: newWorkerPool(workers)}
}

// Capabilities returns the device feature set.
func (d *Software) Capabilities() Capabilities { return d.caps }

// NewTexture allocates a texture.
func (d *Software) NewTexture(name string, width, height int, format Format, filter Filter) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("allocating %s: invalid size %dx%d", name, width, height)
	}
	switch format {
	case FormatRGBA8:
	case FormatRGBA32F:
		if !d.caps.FloatTextures {
			return nil, fmt.Errorf("allocating %s: %w: float textures", name, ErrUnsupported)
		}
		if filter == FilterLinear && !d.caps.FloatLinear {
			return nil, fmt.Errorf("allocating %s: %w: linear filtering on float textures", name, ErrUnsupported)
		}
	default:
		return nil, fmt.Errorf("allocating %s: %w: %s", name, ErrUnsupported, format)
	}
	return newTexture(name, width, height, format, filter), nil
}

// Clear fills target with c.
func (d *Software) Clear(target *Texture, c Vec4) {
	d.pool.run(target.height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < target.width; x++ {
				target.store(x, y, c)
			}
		}
	})
}

// Fullscreen runs frag once per texel of target.
func (d *Software) Fullscreen(target *Texture, inputs []*Texture, frag FragmentFunc) error {
	if err := checkBindings(target, inputs); err != nil {
		return err
	}
	d.pool.run(target.height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < target.width; x++ {
				target.store(x, y, frag(x, y))
			}
		}
	})
	return nil
}

// DrawInstanced rasterizes count quads into target. Per pixel, instances are
// blended in index order, like primitive order on a GPU.
func (d *Software) DrawInstanced(target *Texture, inputs []*Texture, blend BlendState, count int, shader InstanceShader) error {
	if err := checkBindings(target, inputs); err != nil {
		return err
	}
	if count > 0 && !d.caps.InstancedArrays {
		return fmt.Errorf("instanced draw: %w", ErrUnsupported)
	}
	if blend.Enabled && target.format == FormatRGBA32F && !d.caps.FloatBlend {
		return fmt.Errorf("blending into %s: %w: float blend", target.name, ErrUnsupported)
	}

	if cap(d.quads) < count {
		d.quads = make([]quad, count)
	}
	quads := d.quads[:count]

	w, h := float32(target.width), float32(target.height)
	d.pool.run(count, func(i0, i1 int) {
		for i := i0; i < i1; i++ {
			q := &quads[i]
			center, half, varying, ok := shader.Vertex(i)
			if !ok || !(half.X > 0) || !(half.Y > 0) || !center.Finite() {
				q.x0, q.x1 = 0, 0
				continue
			}
			q.center, q.half, q.varying = center, half, varying
			q.x0, q.x1 = coverage(center.X-half.X, center.X+half.X, w, target.width)
			q.y0, q.y1 = coverage(center.Y-half.Y, center.Y+half.Y, h, target.height)
		}
	})

	d.pool.run(target.height, func(y0, y1 int) {
		for i := range quads {
			q := &quads[i]
			if q.x0 >= q.x1 {
				continue
			}
			ry0, ry1 := max(q.y0, y0), min(q.y1, y1)
			for y := ry0; y < ry1; y++ {
				cy := (float32(y)+0.5)/h*2 - 1
				v := (cy - q.center.Y) / q.half.Y
				for x := q.x0; x < q.x1; x++ {
					cx := (float32(x)+0.5)/w*2 - 1
					u := (cx - q.center.X) / q.half.X
					src := shader.Fragment(q.varying, Vec2{u, v})
					target.store(x, y, blend.Apply(src, target.At(x, y)))
				}
			}
		}
	})
	return nil
}

// coverage returns the half-open pixel range whose centres fall inside the
// clip-space span [lo, hi], clipped to [0, size).
func coverage(lo, hi, extent float32, size int) (int, int) {
	p0 := math.Ceil(float64((lo+1)/2*extent - 0.5))
	p1 := math.Floor(float64((hi+1)/2*extent-0.5)) + 1
	if p0 < 0 {
		p0 = 0
	}
	if p1 > float64(size) {
		p1 = float64(size)
	}
	if p1 <= p0 {
		return 0, 0
	}
	return int(p0), int(p1)
}

// AddScaled performs dst += k*src with the add equation and no blend factors.
func (d *Software) AddScaled(dst, src *Texture, k float32) error {
	if err := checkBindings(dst, []*Texture{src}); err != nil {
		return err
	}
	if !dst.sameSize(src) {
		return fmt.Errorf("%w: %s %dx%d, %s %dx%d", ErrSizeMismatch,
			dst.name, dst.width, dst.height, src.name, src.width, src.height)
	}
	stride := dst.width * 4
	d.pool.run(dst.height, func(y0, y1 int) {
		n := (y1 - y0) * stride
		x := blas32.Vector{N: n, Inc: 1, Data: src.pix[y0*stride : y1*stride]}
		y := blas32.Vector{N: n, Inc: 1, Data: dst.pix[y0*stride : y1*stride]}
		blas32.Axpy(k, x, y)
		dst.encodeRows(y0, y1)
	})
	return nil
}

// Copy copies src into dst, converting through dst's format.
func (d *Software) Copy(dst, src *Texture) error {
	if dst == src {
		return fmt.Errorf("%w: %s", ErrFeedbackLoop, dst.name)
	}
	if !dst.sameSize(src) {
		return fmt.Errorf("%w: %s %dx%d, %s %dx%d", ErrSizeMismatch,
			dst.name, dst.width, dst.height, src.name, src.width, src.height)
	}
	copy(dst.pix, src.pix)
	dst.encodeRows(0, dst.height)
	return nil
}

// Close stops the worker pool.
func (d *Software) Close() {
	d.pool.stop()
}
