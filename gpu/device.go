// Package gpu defines the device abstraction the particle pipeline runs on:
// textures that never leave the device, data-parallel fullscreen passes,
// instanced quad draws with fixed-function blending, clears and copies.
package gpu

import (
	"errors"
	"fmt"
)

var (
	// ErrFeedbackLoop is returned when a pass binds its target as an input.
	ErrFeedbackLoop = errors.New("gpu: texture bound as both input and target")
	// ErrUnsupported is returned for formats or features the device lacks.
	ErrUnsupported = errors.New("gpu: unsupported")
	// ErrSizeMismatch is returned when a copy or add spans textures of different sizes.
	ErrSizeMismatch = errors.New("gpu: texture size mismatch")
)

// Capabilities lists the optional device features the pipeline depends on.
type Capabilities struct {
	InstancedArrays bool
	FloatTextures   bool
	FloatLinear     bool
	BlendMinMax     bool
	FloatBlend      bool
}

// FragmentFunc shades one texel of a fullscreen pass. x and y are integer
// texel coordinates; the GL fragment coordinate is (x+0.5, y+0.5).
type FragmentFunc func(x, y int) Vec4

// InstanceShader is the vertex/fragment pair of an instanced quad draw.
// Every instance expands a unit square (corners at ±1) around a clip-space
// centre.
type InstanceShader interface {
	// Vertex returns the clip-space centre and half extent of instance i and
	// a varying handed to each of its fragments. ok=false culls the instance.
	Vertex(i int) (center, half Vec2, varying Vec4, ok bool)
	// Fragment shades one covered pixel; uv is the quad-local position in [-1,1]².
	Fragment(varying Vec4, uv Vec2) Vec4
}

// Device is the rendering collaborator. Implementations are driven from a
// single goroutine; parallelism lives inside each pass.
type Device interface {
	Capabilities() Capabilities
	NewTexture(name string, width, height int, format Format, filter Filter) (*Texture, error)
	Clear(target *Texture, c Vec4)
	Fullscreen(target *Texture, inputs []*Texture, frag FragmentFunc) error
	DrawInstanced(target *Texture, inputs []*Texture, blend BlendState, count int, shader InstanceShader) error
	AddScaled(dst, src *Texture, k float32) error
	Copy(dst, src *Texture) error
	Close()
}

func checkBindings(target *Texture, inputs []*Texture) error {
	for _, in := range inputs {
		if in == target {
			return fmt.Errorf("%w: %s", ErrFeedbackLoop, target.name)
		}
	}
	return nil
}
