package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/influence/gpu"
)

// StoreSpec sizes every image of the state store.
type StoreSpec struct {
	N               int // grid side; N² particles
	Width, Height   int // display resolution
	InfluenceScale  int // influence field = display / scale
	InfluenceFormat gpu.Format
}

// Store holds all simulation images. Position and velocity are double
// buffered; which of the pair is current is decided by the frame driver's
// ping-pong index, never by the store itself.
type Store struct {
	N          int
	Positions  [2]*gpu.Texture
	Velocities [2]*gpu.Texture
	Colors     *gpu.Texture
	Influence  *gpu.Texture
	Previous   *gpu.Texture
	Surface    *gpu.Texture
}

// Buffers is the position/velocity pair a pass reads or writes.
type Buffers struct {
	Position *gpu.Texture
	Velocity *gpu.Texture
}

// NewStore allocates every image. Any failure is fatal for startup.
func NewStore(dev gpu.Device, spec StoreSpec) (*Store, error) {
	if spec.N <= 0 {
		return nil, fmt.Errorf("store: grid side must be positive, got %d", spec.N)
	}
	if spec.InfluenceScale <= 0 {
		return nil, fmt.Errorf("store: influence scale must be positive, got %d", spec.InfluenceScale)
	}

	s := &Store{N: spec.N}
	var err error
	alloc := func(name string, w, h int, f gpu.Format, filter gpu.Filter) *gpu.Texture {
		if err != nil {
			return nil
		}
		var t *gpu.Texture
		t, err = dev.NewTexture(name, w, h, f, filter)
		return t
	}

	n := spec.N
	s.Positions[0] = alloc("position_a", n, n, gpu.FormatRGBA32F, gpu.FilterNearest)
	s.Positions[1] = alloc("position_b", n, n, gpu.FormatRGBA32F, gpu.FilterNearest)
	s.Velocities[0] = alloc("velocity_a", n, n, gpu.FormatRGBA32F, gpu.FilterNearest)
	s.Velocities[1] = alloc("velocity_b", n, n, gpu.FormatRGBA32F, gpu.FilterNearest)
	s.Colors = alloc("colors", n, n, gpu.FormatRGBA8, gpu.FilterNearest)

	iw, ih := InfluenceSize(spec.Width, spec.Height, spec.InfluenceScale)
	s.Influence = alloc("influence", iw, ih, spec.InfluenceFormat, gpu.FilterLinear)
	s.Previous = alloc("previous", spec.Width, spec.Height, gpu.FormatRGBA8, gpu.FilterLinear)
	s.Surface = alloc("surface", spec.Width, spec.Height, gpu.FormatRGBA8, gpu.FilterLinear)

	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return s, nil
}

// InfluenceSize returns the influence field resolution for a display size.
func InfluenceSize(width, height, scale int) (int, int) {
	w := int(math.Round(float64(width) / float64(scale)))
	h := int(math.Round(float64(height) / float64(scale)))
	return max(w, 1), max(h, 1)
}

// Particles returns the particle count N².
func (s *Store) Particles() int {
	return s.N * s.N
}

// Current returns the buffers read this frame for ping-pong index idx.
func (s *Store) Current(idx int) Buffers {
	return Buffers{Position: s.Positions[idx&1], Velocity: s.Velocities[idx&1]}
}

// Next returns the buffers written this frame for ping-pong index idx.
func (s *Store) Next(idx int) Buffers {
	return Buffers{Position: s.Positions[(idx&1)^1], Velocity: s.Velocities[(idx&1)^1]}
}
